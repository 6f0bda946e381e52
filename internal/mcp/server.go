package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer,
// or uuid.Nil when there is none. The remote HTTPClient ignores it: the
// REST API identifies the caller itself.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// defaultTargetRPE applies when a tool call or program gives no target.
func New(ds DataSource, defaultTargetRPE float64, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftCoach strength coaching server. Estimate one-rep maxes, autoregulate next-session weights from RPE, and review strength and volume progress. Training data is scoped to the authenticated user. RPE is on the 0-10 scale; weights are kilograms."),
	)

	h := &handlers{ds: ds, targetRPE: defaultTargetRPE, log: log}

	// Calculators
	s.AddTools(
		server.ServerTool{Tool: toolEstimateE1RM, Handler: h.estimateE1RM},
		server.ServerTool{Tool: toolSuggestNextWeight, Handler: h.suggestNextWeight},
		server.ServerTool{Tool: toolDailyPerformance, Handler: h.dailyPerformance},
		server.ServerTool{Tool: toolRPEFeedback, Handler: h.rpeFeedback},
		server.ServerTool{Tool: toolVolumeLoad, Handler: h.volumeLoad},
		server.ServerTool{Tool: toolWeightRange, Handler: h.weightRange},
	)

	// Training log
	s.AddTools(
		server.ServerTool{Tool: toolStrengthProgress, Handler: h.strengthProgress},
		server.ServerTool{Tool: toolVolumeProgress, Handler: h.volumeProgress},
		server.ServerTool{Tool: toolExerciseSummary, Handler: h.exerciseSummary},
		server.ServerTool{Tool: toolNextSessionAdvice, Handler: h.nextSessionAdvice},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRPEScale, Handler: h.rpeScale},
		server.ServerResource{Resource: resTrainingStats, Handler: h.trainingStats},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. userID returns the caller
// resolved by the HTTP layer's identity middleware.
func NewHTTPHandler(s *server.MCPServer, userID func(r *http.Request) uuid.UUID) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithUserID(ctx, userID(r))
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds        DataSource
	targetRPE float64
	log       *slog.Logger
}

// --- Resource definitions ---

var resRPEScale = mcp.NewResource(
	"liftcoach://rpe_scale",
	"RPE Scale",
	mcp.WithResourceDescription("RPE bands, highest first, with the feedback given for each"),
	mcp.WithMIMEType("application/json"),
)

var resTrainingStats = mcp.NewResource(
	"liftcoach://training_stats",
	"Training Stats",
	mcp.WithResourceDescription("Workout, set and recorded-max counts plus per-exercise set totals for the user"),
	mcp.WithMIMEType("application/json"),
)
