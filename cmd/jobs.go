package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var trendDays []int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch all configured sources once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.ingest.Run(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize pending articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.summarizer.SummarizeArticles(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"summarized": n})
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Generate trend summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		days := trendDays
		if len(days) == 0 {
			days = cfg.Cron.TrendDays
		}
		return a.scheduler.RunTrendsFor(cmd.Context(), days)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest, summarize, build trends and export once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.scheduler.RunAll(cmd.Context()); err != nil {
			// 趋势失败不影响导出
			logger.Error("pipeline finished with errors", "error", err)
		}

		if cfg.Export.Path == "" {
			return nil
		}
		exp, err := a.exporter(cmd.Context())
		if err != nil {
			return err
		}
		_, err = exp.WriteFile(cmd.Context(), cfg.Export.Path)
		return err
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	trendsCmd.Flags().IntSliceVar(&trendDays, "days", nil, "window sizes in days (default: cron.trend_days)")
	rootCmd.AddCommand(ingestCmd, summarizeCmd, trendsCmd, runCmd)
}
