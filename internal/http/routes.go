package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth     *service.Auth
	Sessions *service.Sessions
	Cookies  CookieConfig
	// EdgeVerify enables the gate's strict mode: session artifacts are
	// validated on every gated request instead of a presence check.
	EdgeVerify bool
	Logger     *slog.Logger
}

// NewRouter creates and configures the HTTP handler chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	sessionHandlers := &SessionHandlers{
		Sessions: services.Sessions,
		Cookies:  services.Cookies,
		Logger:   logger,
	}
	mux.Handle("POST /api/auth/session", http.HandlerFunc(sessionHandlers.Exchange))
	mux.Handle("DELETE /api/auth/session", http.HandlerFunc(sessionHandlers.Teardown))

	if services.Auth != nil {
		authHandlers := &AuthHandlers{
			Svc:      services.Auth,
			Sessions: services.Sessions,
			Cookies:  services.Cookies,
			Logger:   logger,
		}
		mux.Handle("POST /api/auth/sign-in", http.HandlerFunc(authHandlers.SignIn))
		mux.Handle("POST /api/auth/sign-up", http.HandlerFunc(authHandlers.SignUp))
		mux.Handle("POST /api/auth/sign-out", http.HandlerFunc(authHandlers.SignOut))
		mux.Handle("POST /api/auth/reset-password", http.HandlerFunc(authHandlers.ResetPassword))
		mux.Handle("POST /api/auth/verification-email", http.HandlerFunc(authHandlers.SendVerification))
		mux.Handle("GET /api/auth/profile", http.HandlerFunc(authHandlers.Profile))
		mux.Handle("PATCH /api/auth/profile", http.HandlerFunc(authHandlers.UpdateProfile))
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.Handle("GET /{$}", http.HandlerFunc(homePage))
	mux.Handle("GET /auth/sign-in", http.HandlerFunc(signInPage))
	mux.Handle("GET /auth/sign-up", http.HandlerFunc(signUpPage))
	mux.Handle("GET /profile", http.HandlerFunc(profilePage))
	mux.Handle("GET /my-activities", http.HandlerFunc(myActivitiesPage))
	mux.Handle("GET /admin", http.HandlerFunc(adminPage))
	mux.Handle("GET /admin/", http.HandlerFunc(adminPage))

	gateCfg := GateConfig{Cookies: services.Cookies, Logger: logger}
	if services.EdgeVerify && services.Sessions != nil {
		gateCfg.Verify = func(ctx context.Context, artifact string) (domainauth.Principal, error) {
			return services.Sessions.Check(ctx, artifact)
		}
	}

	var handler http.Handler = mux
	handler = SessionGate(gateCfg)(handler)
	handler = Recover(logger)(handler)
	handler = Logging(logger)(handler)
	return handler
}
