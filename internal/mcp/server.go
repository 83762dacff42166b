package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/feedlog"
	"feedlog-mcp/internal/stats"
)

// Server exposes the feeding statistics and the active-feed state machine
// as MCP tools over stdio.
type Server struct {
	store   *feedlog.Store
	prefs   *feedlog.PrefsStore
	tracker *feedlog.Tracker
	clock   feed.Clock
	cal     stats.Calendar

	version string
}

// NewServer creates a new MCP server over the given stores.
func NewServer(store *feedlog.Store, prefs *feedlog.PrefsStore, tracker *feedlog.Tracker, clock feed.Clock, version string) *Server {
	return &Server{
		store:   store,
		prefs:   prefs,
		tracker: tracker,
		clock:   clock,
		cal:     stats.NewCalendar(time.Local),
		version: version,
	}
}

// Run serves the MCP protocol over stdio until the context is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	impl := &mcp.Implementation{Name: "feedlog-mcp", Version: s.version}
	server := mcp.NewServer(impl, nil)

	s.registerStatsTools(server)
	s.registerSessionTools(server)

	log.Info().Str("version", s.version).Msg("MCP server starting stdio loop")
	return server.Run(ctx, &mcp.StdioTransport{})
}

// windowFor resolves the analysis window for a stats call: explicit args win,
// then the configured history window preference, then seven days.
func (s *Server) windowFor(args WindowArgs) stats.TimeWindow {
	if args.Hours > 0 {
		return stats.Hours(args.Hours)
	}
	if args.Days > 0 {
		return stats.Days(args.Days)
	}
	if days := s.prefs.Get().HistoryDaysBack; days > 0 {
		return stats.Days(days)
	}
	return stats.Days(7)
}

// ageDays resolves the baby's age from preferences at the given instant.
func (s *Server) ageDays(now time.Time) *int {
	return s.prefs.Get().AgeDays(now)
}

// activeEntry returns the in-progress session entry, when one exists.
func (s *Server) activeEntry() *feed.Entry {
	state, ok := s.tracker.Active()
	if !ok || state.History == nil {
		return nil
	}
	entry := state.History.Current
	return &entry
}
