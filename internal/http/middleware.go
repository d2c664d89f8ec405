package httpx

// Package httpx is the HTTP surface of the portal: the session
// exchange endpoint, the auth API, the session gate middleware, and
// minimal page handlers behind the gate.

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
)

const signInPath = "/auth/sign-in"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// pathClass is the gate's verdict for a request path.
type pathClass int

const (
	classPublic pathClass = iota
	classProtected
	classAuthOnly
)

var protectedPrefixes = []string{"/profile", "/admin", "/my-activities"}

var authOnlyPaths = []string{"/auth/sign-in", "/auth/sign-up"}

// classifyPath sorts a path into protected, auth-only, or public.
// Everything not explicitly listed is public, including /, /events,
// /clubs, /api/* and /static/*.
func classifyPath(path string) pathClass {
	for _, p := range authOnlyPaths {
		if path == p {
			return classAuthOnly
		}
	}
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return classProtected
		}
	}
	return classPublic
}

// GateConfig configures the session gate.
type GateConfig struct {
	Cookies CookieConfig
	// Verify, when set, enables strict mode: the artifact is validated
	// against the verifier on every gated request instead of a pure
	// presence check. Invalid artifacts are cleared and treated as
	// absent.
	Verify func(ctx context.Context, artifact string) (domainauth.Principal, error)
	Logger *slog.Logger
}

// SessionGate redirects unauthenticated requests away from protected
// pages and signed-in users away from the auth pages. Presence of the
// session cookie is the default signal; strict mode verifies it.
func SessionGate(cfg GateConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := classifyPath(r.URL.Path)
			if class == classPublic {
				next.ServeHTTP(w, r)
				return
			}

			artifact := sessionArtifact(r, cfg.Cookies.Name)
			authenticated := artifact != ""

			if authenticated && cfg.Verify != nil {
				principal, err := cfg.Verify(r.Context(), artifact)
				if err != nil {
					logger.DebugContext(r.Context(), "session artifact rejected at the gate", "error", err)
					ClearSessionCookie(w, cfg.Cookies)
					authenticated = false
				} else {
					r = r.WithContext(SetPrincipalInContext(r.Context(), principal))
				}
			}

			switch class {
			case classProtected:
				if !authenticated {
					redirectToSignIn(w, r)
					return
				}
			case classAuthOnly:
				if authenticated {
					http.Redirect(w, r, "/", http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// redirectToSignIn sends the visitor to the sign-in page, preserving
// where they were headed in the redirect query parameter.
func redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, signInPath+"?redirect="+url.QueryEscape(target), http.StatusSeeOther)
}
