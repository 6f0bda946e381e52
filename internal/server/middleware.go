package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"tailscale.com/client/tailscale/apitype"

	"github.com/claude/liftcoach/internal/storage"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userInfoKey
)

// UserInfo describes the caller of a request.
type UserInfo struct {
	UserID      uuid.UUID `json:"user_id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
}

// WhoIsClient resolves a tailnet peer address to its owner. Satisfied by the
// tsnet local client.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// UserResolver maps a Tailscale login to the persistence service's user ID.
type UserResolver interface {
	UserIDByLogin(ctx context.Context, login string) (uuid.UUID, error)
}

// APIKeyAuth returns middleware that validates the X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, `{"error":"missing API key"}`, http.StatusUnauthorized)
				return
			}
			if key != apiKey {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DevIdentity returns middleware that acts as userID on every request, for
// local development without Tailscale.
func DevIdentity(userID uuid.UUID) func(http.Handler) http.Handler {
	info := UserInfo{UserID: userID, Login: "local", DisplayName: "Local Dev User"}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), info)))
		})
	}
}

// TailscaleIdentity returns middleware that identifies the caller with a
// WhoIs lookup and maps their login to a user ID. Unknown peers get 401,
// peers without an account 403.
func TailscaleIdentity(wc WhoIsClient, users UserResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := wc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who.UserProfile == nil {
				log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet peer"})
				return
			}
			login := who.UserProfile.LoginName

			id, err := users.UserIDByLogin(r.Context(), login)
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "no account for " + login})
				return
			}
			if err != nil {
				log.Error("resolving user", "login", login, "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolving user failed"})
				return
			}

			info := UserInfo{UserID: id, Login: login, DisplayName: who.UserProfile.DisplayName}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), info)))
		})
	}
}

func withUser(ctx context.Context, info UserInfo) context.Context {
	ctx = context.WithValue(ctx, userIDKey, info.UserID)
	return context.WithValue(ctx, userInfoKey, info)
}

// UserID returns the user resolved by the identity middleware, or uuid.Nil.
// The MCP HTTP transport uses it to scope tool calls.
func UserID(r *http.Request) uuid.UUID {
	return userIDFromContext(r)
}

// userIDFromContext returns the caller's user ID, or uuid.Nil when no
// identity middleware ran.
func userIDFromContext(r *http.Request) uuid.UUID {
	if id, ok := r.Context().Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// userInfoFromContext returns the caller's identity, falling back to the
// local dev user description.
func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return UserInfo{Login: "local", DisplayName: "Local Dev User"}
}

// mustUserID writes 401 and reports false when the request carries no user.
func mustUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id := userIDFromContext(r)
	if id == uuid.Nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no user identity"})
		return uuid.Nil, false
	}
	return id, true
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming responses (MCP) through the logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
