package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPrepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare <upstream-ref>",
		Short: "Stage a downstream release for an upstream version",
		Long:  "Prepare checks the release lineage for the given upstream version (a tag name or full ref), checks out the release branch, rewrites the version files, and pushes a single release commit. Tags are created later by publish.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			result, err := app.engine.Prepare(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if app.cfg.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(),
					"would release %s on branch %s (tracking libuv %s)\n",
					result.Release, result.Branch, result.Target.VString())
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"staged %s on branch %s (commit %s)\n",
				result.Release, result.Branch, result.Commit)
			return nil
		},
	}
}
