package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	artifactsLimit  int
	artifactsShow   string
	artifactsDelete string
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List saved generated code",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		store, err := a.artifactStore()
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("artifact storage is disabled (storage.enabled: false)")
		}

		out := cmd.OutOrStdout()
		if artifactsDelete != "" {
			if err := store.Delete(cmd.Context(), artifactsDelete); err != nil {
				return err
			}
			printStatus(out, "✓", "Deleted "+artifactsDelete, okColor)
			return nil
		}
		if artifactsShow != "" {
			art, code, err := store.Load(cmd.Context(), artifactsShow)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Path:"), art.Path)
			if art.Task != "" {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Task:"), art.Task)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, code)
			return nil
		}

		list, err := store.List(cmd.Context(), artifactsLimit)
		if err != nil {
			return err
		}
		renderArtifacts(out, list)
		return nil
	},
}

func init() {
	artifactsCmd.Flags().IntVarP(&artifactsLimit, "limit", "n", 20, "Maximum number of artifacts to list (0 for all)")
	artifactsCmd.Flags().StringVar(&artifactsShow, "show", "", "Print the code of the artifact with this ID")
	artifactsCmd.Flags().StringVar(&artifactsDelete, "delete", "", "Delete the artifact with this ID")
}
