package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Tag, ship, and record the prepared release",
		Long:  "Publish tags the release commit on the current branch, pushes tags, uploads the crate to the registry, and creates the hosted release record. Reruns are safe: existing tags are tolerated.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			result, err := app.engine.Publish(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", result.ReleaseTag)
			return nil
		},
	}

	cmd.Flags().Bool("skip-registry", false, "Skip the registry upload (tag and record only)")
	return cmd
}
