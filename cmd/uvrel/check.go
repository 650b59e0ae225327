package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bmatcuk/libuv-sys/reconcile"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Detect the next untracked libuv release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			next, err := app.engine.Detect(cmd.Context())
			if errors.Is(err, reconcile.ErrNoNewVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "up to date")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), next.VString())
			return nil
		},
	}
}
