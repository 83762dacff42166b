package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/report"
	"feedlog-mcp/internal/stats"
)

var (
	reportDays int
	reportOut  string
	reportOpen bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an HTML feeding report",
	Long:  `Computes the feeding statistics over the requested window and writes a standalone HTML report with charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		p := prefs.Get()

		var active *feed.Entry
		if state, ok := tracker.Active(); ok && state.History != nil {
			entry := state.History.Current
			active = &entry
		}

		data, err := report.Build(context.Background(), store.Entries(), active, report.Options{
			BabyName:   p.BabyName,
			AgeDays:    p.AgeDays(now),
			WindowDays: reportDays,
		}, stats.NewCalendar(time.Local), now)
		if err != nil {
			return err
		}

		out := reportOut
		if out == "" {
			out = filepath.Join(cfg.DataPath, "feeding-report.html")
		}
		if err := report.Write(out, data, reportOpen); err != nil {
			return err
		}
		log.Info().Str("path", out).Int("days", data.WindowDays).Msg("Report generated")
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "window size in days")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output path (default: <data dir>/feeding-report.html)")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "open the report in the default browser")
	rootCmd.AddCommand(reportCmd)
}
