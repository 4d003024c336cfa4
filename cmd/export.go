package cmd

import (
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the static data file for the frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		path := exportOut
		if path == "" {
			path = cfg.Export.Path
		}

		exp, err := a.exporter(cmd.Context())
		if err != nil {
			return err
		}
		snap, err := exp.WriteFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		logger.Info("export done", "path", path, "articles", len(snap.Articles))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: export.path)")
	rootCmd.AddCommand(exportCmd)
}
