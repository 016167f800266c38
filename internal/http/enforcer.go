package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sopatech/rolegate/internal/assignments"
	authmw "github.com/sopatech/rolegate/internal/auth"
	"github.com/sopatech/rolegate/internal/authz"
	"github.com/sopatech/rolegate/internal/metrics"
	"github.com/sopatech/rolegate/internal/roles"
)

// RoleSource loads what a principal currently holds. assignments.Service implements it.
type RoleSource interface {
	Subject(ctx context.Context, principalID, eventID, correlationID string) (authz.Subject, error)
}

// Enforcer turns authorization checks into route middleware. It must run after
// Authenticate. Every failure is a refusal: a check that errors never reaches the handler.
type Enforcer struct {
	authorizer *authz.Authorizer
	source     RoleSource
	recorder   *metrics.DecisionRecorder
	logger     *slog.Logger
}

func NewEnforcer(authorizer *authz.Authorizer, source RoleSource, recorder *metrics.DecisionRecorder, logger *slog.Logger) *Enforcer {
	return &Enforcer{authorizer: authorizer, source: source, recorder: recorder, logger: logger}
}

// eventScope is the event a request acts on: the {eventId} path segment, else the
// event_id query parameter.
func eventScope(r *http.Request) string {
	if id := r.PathValue("eventId"); id != "" {
		return id
	}
	return r.URL.Query().Get("event_id")
}

// RequirePermission admits principals holding perm through their platform roles or
// their event roles for the request's event.
func (e *Enforcer) RequirePermission(perm roles.Permission) func(http.Handler) http.Handler {
	return e.require(string(perm), eventScope, func(s authz.Subject) (bool, error) {
		return e.authorizer.HasPermission(s, perm)
	})
}

// RequirePlatformPermission is RequirePermission with event roles ignored. Use it
// where the request has no event of its own, so a caller cannot pick one.
func (e *Enforcer) RequirePlatformPermission(perm roles.Permission) func(http.Handler) http.Handler {
	noEvent := func(*http.Request) string { return "" }
	return e.require(string(perm), noEvent, func(s authz.Subject) (bool, error) {
		return e.authorizer.HasPermission(s, perm)
	})
}

// RequirePlatform admits principals who can use platform, through a platform role
// or an event role for the request's event.
func (e *Enforcer) RequirePlatform(platform roles.Platform) func(http.Handler) http.Handler {
	return e.require("platform:"+string(platform), eventScope, func(s authz.Subject) (bool, error) {
		ok, err := e.authorizer.CanAccessPlatform(s.PlatformRoles, platform)
		if err != nil || ok {
			return ok, err
		}
		for _, r := range s.EventRoles {
			ok, err := e.authorizer.HasEventRolePlatformAccess(r, platform)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	})
}

func (e *Enforcer) require(check string, scope func(*http.Request) string, allowed func(authz.Subject) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID := authmw.PrincipalIDFromContext(r.Context())
			if principalID == "" {
				e.recorder.RecordDecision(check, metrics.OutcomeUnauthenticated)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			eventID := scope(r)
			correlationID := r.Header.Get(assignments.RequestIDHeader)
			attrs := []any{
				slog.String("check", check),
				slog.String("principal_id", principalID),
				slog.String("event_id", eventID),
				slog.String("correlation_id", correlationID),
			}

			s, err := e.source.Subject(r.Context(), principalID, eventID, correlationID)
			var ok bool
			if err == nil {
				ok, err = allowed(s)
			}
			if err != nil {
				e.recorder.RecordDecision(check, metrics.OutcomeError)
				e.logger.ErrorContext(r.Context(), "authorization check failed",
					append(attrs, slog.Bool("unknown_role", errors.Is(err, roles.ErrUnknownRole)), slog.Any("err", err))...)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !ok {
				e.recorder.RecordDecision(check, metrics.OutcomeDenied)
				e.logger.WarnContext(r.Context(), "access denied", attrs...)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			e.recorder.RecordDecision(check, metrics.OutcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}
