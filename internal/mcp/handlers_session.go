package mcp

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"feedlog-mcp/internal/feed"
	"feedlog-mcp/internal/feedlog"
)

// activeFeedResult is the wire view of the active-feed state machine.
type activeFeedResult struct {
	Active       bool         `json:"active"`
	Phase        string       `json:"phase"`
	Breast       feed.Breast  `json:"breast,omitempty"`
	LastBreast   *feed.Breast `json:"lastBreast,omitempty"`
	Start        time.Time    `json:"start,omitzero"`
	Elapsed      float64      `json:"elapsed,omitempty"`
	ClosedUnits  int          `json:"closedUnits,omitempty"`
	Cues         []feed.Cue   `json:"cues,omitempty"`
	GapSinceLast *float64     `json:"gapSinceLast,omitempty"`
}

func (s *Server) stateResult(state feed.ActiveState, active bool) activeFeedResult {
	out := activeFeedResult{Active: active, Phase: state.Phase.String()}
	if !active || state.History == nil {
		return out
	}

	entry := state.History.Current
	out.Breast = state.BreastInfo.Current
	out.LastBreast = state.BreastInfo.Last
	out.Start = entry.Start
	out.ClosedUnits = len(entry.Units)
	if len(entry.Cues) > 0 {
		out.Cues = entry.Cues
	}

	now := s.clock.Now()
	out.Elapsed = entry.EffectiveDuration().Seconds()
	if state.Phase == feed.PhaseFeeding {
		out.Elapsed += now.Sub(state.UpdatedAt).Seconds()
	}
	if gap, ok := state.History.GapSinceLast(); ok {
		secs := gap.Seconds()
		out.GapSinceLast = &secs
	}
	return out
}

type sideArgs struct {
	Side string `json:"side"`
}

type optionalSideArgs struct {
	Side string `json:"side,omitempty"`
}

func (s *Server) handleStartFeed(ctx context.Context, req *mcp.CallToolRequest, args sideArgs) (*mcp.CallToolResult, activeFeedResult, error) {
	side, err := feed.ParseBreast(args.Side)
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	state, err := s.tracker.Start(side)
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	return nil, s.stateResult(state, true), nil
}

func (s *Server) handlePauseFeed(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, activeFeedResult, error) {
	state, err := s.tracker.Pause()
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	return nil, s.stateResult(state, true), nil
}

func (s *Server) handleResumeFeed(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, activeFeedResult, error) {
	state, err := s.tracker.Resume()
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	return nil, s.stateResult(state, true), nil
}

func (s *Server) handleSwitchBreast(ctx context.Context, req *mcp.CallToolRequest, args optionalSideArgs) (*mcp.CallToolResult, activeFeedResult, error) {
	var side feed.Breast
	if args.Side == "" {
		state, active := s.tracker.Active()
		if !active {
			return nil, activeFeedResult{}, feedlog.ErrNoActiveFeed
		}
		side = state.BreastInfo.Current.Opposite()
	} else {
		parsed, err := feed.ParseBreast(args.Side)
		if err != nil {
			return nil, activeFeedResult{}, err
		}
		side = parsed
	}

	state, err := s.tracker.Switch(side)
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	return nil, s.stateResult(state, true), nil
}

type cueArgs struct {
	Cue string `json:"cue"`
}

func (s *Server) handleLogCue(ctx context.Context, req *mcp.CallToolRequest, args cueArgs) (*mcp.CallToolResult, activeFeedResult, error) {
	cue, err := feed.ParseCue(args.Cue)
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	state, err := s.tracker.AddCue(cue)
	if err != nil {
		return nil, activeFeedResult{}, err
	}
	return nil, s.stateResult(state, true), nil
}

// completedFeedResult summarizes a finished session.
type completedFeedResult struct {
	ID       string      `json:"id"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Duration float64     `json:"duration"`
	Units    int         `json:"units"`
	Breast   feed.Breast `json:"breast"`
}

func (s *Server) handleStopFeed(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, completedFeedResult, error) {
	done, err := s.tracker.Stop()
	if err != nil {
		return nil, completedFeedResult{}, err
	}
	out := completedFeedResult{
		ID:       done.ID.String(),
		Start:    done.Start,
		Duration: done.EffectiveDuration().Seconds(),
		Units:    len(done.Units),
		Breast:   done.Breast,
	}
	if done.End != nil {
		out.End = *done.End
	}
	return nil, out, nil
}

func (s *Server) handleGetActiveFeed(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, activeFeedResult, error) {
	state, active := s.tracker.Active()
	return nil, s.stateResult(state, active), nil
}

// --- list_feeds ---

type listFeedsArgs struct {
	Days int `json:"days,omitempty"`
}

type feedListItem struct {
	ID        string      `json:"id"`
	Start     time.Time   `json:"start"`
	End       *time.Time  `json:"end,omitempty"`
	Duration  float64     `json:"duration"`
	Breast    feed.Breast `json:"breast"`
	Units     int         `json:"units"`
	Completed bool        `json:"completed"`
}

type listFeedsResult struct {
	Feeds []feedListItem `json:"feeds"`
}

func (s *Server) handleListFeeds(ctx context.Context, req *mcp.CallToolRequest, args listFeedsArgs) (*mcp.CallToolResult, listFeedsResult, error) {
	days := args.Days
	if days <= 0 {
		days = 7
	}
	cutoff := s.cal.AddDays(s.cal.StartOfDay(s.clock.Now()), -(days - 1))

	var out listFeedsResult
	for _, e := range s.tracker.EntriesWithActive() {
		if e.Start.Before(cutoff) {
			continue
		}
		out.Feeds = append(out.Feeds, feedListItem{
			ID:        e.ID.String(),
			Start:     e.Start,
			End:       e.End,
			Duration:  e.EffectiveDuration().Seconds(),
			Breast:    e.Breast,
			Units:     len(e.Units),
			Completed: e.Completed(),
		})
	}
	return nil, out, nil
}

func (s *Server) registerSessionTools(server *mcp.Server) {
	sideSchema := &jsonschema.Schema{Type: "string", Enum: []any{"left", "right"}, Description: "Which breast."}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_feed",
		Description: "Start a new feeding session on the given side. Fails if a session is already in progress.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"side": sideSchema},
			Required:   []string{"side"},
		},
	}, s.handleStartFeed)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pause_feed",
		Description: "Pause the running session, closing the current breast unit.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handlePauseFeed)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_feed",
		Description: "Resume a paused session on the same side.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleResumeFeed)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "switch_breast",
		Description: "Continue the active session on the other side (or an explicit side). The unit on the current side is closed first.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"side": sideSchema},
		},
	}, s.handleSwitchBreast)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_cue",
		Description: "Attach a hunger cue observation to the active session.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"cue": {Type: "string", Enum: []any{"rooting", "sucking_fists", "crying", "head_turning", "hand_to_mouth"}, Description: "Observed cue."},
			},
			Required: []string{"cue"},
		},
	}, s.handleLogCue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stop_feed",
		Description: "Stop the active session, record it in the feed log, and return the finished entry.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleStopFeed)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_feeds",
		Description: "List recent feeds in chronological order, including the in-progress session.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"days": {Type: "integer", Description: "How many days back to list (default 7)."},
			},
		},
	}, s.handleListFeeds)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_active_feed",
		Description: "Return the state of the in-progress session, if any, including elapsed feeding time and the gap since the previous feed.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleGetActiveFeed)
}
