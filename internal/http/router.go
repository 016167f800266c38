package http

import (
	"crypto/rsa"
	"log/slog"
	"net/http"

	"github.com/sopatech/rolegate/internal/assignments"
	authmw "github.com/sopatech/rolegate/internal/auth"
	"github.com/sopatech/rolegate/internal/roles"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func NewRouter(logger *slog.Logger, assignmentsH *assignments.Handler, enforcer *Enforcer, metricsHandler http.Handler, jwtPublicKey *rsa.PublicKey) http.Handler {
	mux := http.NewServeMux()

	wrap := func(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
		return chain(h, append([]func(http.Handler) http.Handler{
			Recoverer(logger),
			RealIP,
			RequestID,
			RequestLogger(logger),
		}, mws...)...)
	}

	auth := authmw.Authenticate(jwtPublicKey)
	manageUsers := enforcer.RequirePlatformPermission(roles.PermUsersManage)
	manageEventUsers := enforcer.RequirePermission(roles.PermUsersManage)

	// Public
	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.Handle("GET /metrics", metricsHandler)

	// Catalog and self-service
	mux.Handle("GET /v1/catalog/platform-roles", wrap(http.HandlerFunc(assignmentsH.PlatformRoles), auth))
	mux.Handle("GET /v1/catalog/event-roles", wrap(http.HandlerFunc(assignmentsH.EventRoles), auth))
	mux.Handle("GET /v1/me/access", wrap(http.HandlerFunc(assignmentsH.MyAccess), auth))
	mux.Handle("GET /v1/me/check", wrap(http.HandlerFunc(assignmentsH.MyCheck), auth))
	mux.Handle("POST /v1/impersonation/{principalId}", wrap(http.HandlerFunc(assignmentsH.Impersonate), auth))
	for _, p := range roles.AllPlatforms() {
		mux.Handle("GET /v1/platforms/"+string(p)+"/roles", wrap(assignmentsH.PlatformDirectory(p), auth, enforcer.RequirePlatform(p)))
	}

	// Administration. Create authorizes against the role being granted.
	mux.Handle("POST /v1/assignments", wrap(http.HandlerFunc(assignmentsH.Create), auth))
	mux.Handle("GET /v1/principals/{principalId}/assignments", wrap(http.HandlerFunc(assignmentsH.ListPrincipal), auth, manageUsers))
	mux.Handle("PATCH /v1/principals/{principalId}/assignments/{assignmentId}", wrap(http.HandlerFunc(assignmentsH.Update), auth, manageUsers))
	mux.Handle("DELETE /v1/principals/{principalId}/assignments/{assignmentId}", wrap(http.HandlerFunc(assignmentsH.Delete), auth, manageUsers))
	mux.Handle("GET /v1/events/{eventId}/assignments", wrap(http.HandlerFunc(assignmentsH.ListEvent), auth, manageEventUsers))

	return otelhttp.NewHandler(mux, "http.server")
}
