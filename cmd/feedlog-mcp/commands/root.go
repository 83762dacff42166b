package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"feedlog-mcp/internal/config"
	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/feedlog"
	"feedlog-mcp/internal/logging"
	"feedlog-mcp/internal/mcp"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	store   *feedlog.Store
	prefs   *feedlog.PrefsStore
	tracker *feedlog.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "feedlog-mcp",
	Short: "feedlog-mcp is a breastfeeding-tracker MCP server",
	Long: `An MCP server that tracks breastfeeding sessions (start, pause, switch
sides, stop) and answers statistical questions about the feed log: durations,
intervals, feeds per day, totals, pacing, and next-feed estimates.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		store = feedlog.NewStore(cfg.FeedLogPath)
		if err := store.Load(); err != nil {
			log.Fatal().Err(err).Msg("Failed to load feed log")
		}

		prefs = feedlog.NewPrefsStore(cfg.PrefsPath)
		prefs.Load()
		prefs.Seed(func(p *feedlog.Preferences) {
			if p.BabyName == "" {
				p.BabyName = cfg.BabyName
			}
			if p.BabyBirthDate == nil {
				p.BabyBirthDate = cfg.BabyBirthDate
			}
			if p.DeviceName == "" {
				p.DeviceName = cfg.DeviceName
			}
		})

		snapshot := feedlog.NewSnapshotStore(cfg.SnapshotPath)
		tracker = feedlog.NewTracker(store, snapshot, prefs.Get().DeviceName, feed.SystemClock{})
		tracker.Restore()

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Int("entries", store.Count()).
			Msg("feedlog-mcp starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := mcp.NewServer(store, prefs, tracker, feed.SystemClock{}, Version)
		return server.Run(ctx)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
