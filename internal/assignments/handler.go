package assignments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sopatech/rolegate/internal/auth"
	"github.com/sopatech/rolegate/internal/authz"
	"github.com/sopatech/rolegate/internal/metrics"
	"github.com/sopatech/rolegate/internal/roles"
)

// RequestIDHeader carries the correlation id; request middleware fills it in when absent.
const RequestIDHeader = "X-Request-ID"

type Handler struct {
	svc        Service
	authorizer *authz.Authorizer
	recorder   *metrics.DecisionRecorder
	logger     *slog.Logger
}

func NewHandler(svc Service, authorizer *authz.Authorizer, recorder *metrics.DecisionRecorder, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, authorizer: authorizer, recorder: recorder, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors for admin operations. Unknown roles here come
// from the request body, so they are the caller's mistake.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *authz.AssignmentError
	switch {
	case errors.As(err, &ae):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": ae.Error(), "code": ae.Code()})
	case errors.Is(err, roles.ErrUnknownRole), errors.Is(err, ErrPrincipalRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAssignmentNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrAssignmentRevoked):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.ErrorContext(r.Context(), "assignment operation failed", slog.String("path", r.URL.Path), slog.Any("err", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// subject loads the caller's roles. A failure (storage, or a stored role the
// catalog no longer knows) is an internal error and the request is refused.
func (h *Handler) subject(w http.ResponseWriter, r *http.Request, eventID string) (authz.Subject, bool) {
	principalID := auth.PrincipalIDFromContext(r.Context())
	if principalID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return authz.Subject{}, false
	}
	s, err := h.svc.Subject(r.Context(), principalID, eventID, r.Header.Get(RequestIDHeader))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load principal roles",
			slog.String("principal_id", principalID),
			slog.String("correlation_id", r.Header.Get(RequestIDHeader)),
			slog.Bool("unknown_role", errors.Is(err, roles.ErrUnknownRole)),
			slog.Any("err", err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return authz.Subject{}, false
	}
	return s, true
}

type createRequest struct {
	PrincipalID    string     `json:"principal_id"`
	PrincipalEmail string     `json:"principal_email"`
	RoleCode       string     `json:"role_code"`
	EventID        string     `json:"event_id"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// Create grants a role. The caller needs users:manage: from their platform roles
// for a platform role, or from platform or event roles for the target event when
// granting an event role. The role must also be within the caller's reach (see
// authz.Authorizer.CanGrant).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID := auth.PrincipalIDFromContext(r.Context())
	if actorID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	ref, err := h.authorizer.Catalog().ParseRole(body.RoleCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scope := ""
	if ref.IsEvent() {
		scope = body.EventID
	}

	actor, ok := h.subject(w, r, scope)
	if !ok {
		return
	}
	d, err := h.authorizer.Decide(actor, roles.PermUsersManage)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "authorize grant", slog.String("principal_id", actorID), slog.Any("err", err))
		h.recorder.RecordDecision(string(roles.PermUsersManage), metrics.OutcomeError)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if d.Allowed {
		d.Allowed, err = h.authorizer.CanGrant(actor, ref)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "authorize grant", slog.String("principal_id", actorID), slog.Any("err", err))
			h.recorder.RecordDecision(string(roles.PermUsersManage), metrics.OutcomeError)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if !d.Allowed {
		h.recorder.RecordDecision(string(roles.PermUsersManage), metrics.OutcomeDenied)
		h.logger.WarnContext(r.Context(), "grant denied",
			slog.String("principal_id", actorID),
			slog.String("role_code", ref.String()),
			slog.String("event_id", scope),
			slog.String("correlation_id", d.CorrelationID),
		)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	h.recorder.RecordDecision(string(roles.PermUsersManage), metrics.OutcomeAllowed)

	rec, err := h.svc.Grant(r.Context(), GrantRequest{
		PrincipalID:    body.PrincipalID,
		PrincipalEmail: body.PrincipalEmail,
		RoleCode:       body.RoleCode,
		EventID:        body.EventID,
		ExpiresAt:      body.ExpiresAt,
		GrantedBy:      actorID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "assignment granted",
		slog.String("principal_id", rec.PrincipalID),
		slog.String("assignment_id", rec.ID),
		slog.String("role_code", rec.RoleCode),
		slog.String("event_id", rec.EventID),
		slog.String("actor_id", actorID),
		slog.String("actor_email", auth.EmailFromContext(r.Context())),
		slog.String("correlation_id", d.CorrelationID),
	)
	writeJSON(w, http.StatusCreated, rec)
}

// ListPrincipal returns a principal's assignment history.
func (h *Handler) ListPrincipal(w http.ResponseWriter, r *http.Request) {
	principalID := r.PathValue("principalId")
	list, err := h.svc.List(r.Context(), principalID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// ListEvent returns every event-role assignment for an event.
func (h *Handler) ListEvent(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListEvent(r.Context(), r.PathValue("eventId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// Update sets expires_at; null or absent clears it.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	rec, err := h.svc.Extend(r.Context(), r.PathValue("principalId"), r.PathValue("assignmentId"), body.ExpiresAt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete revokes the assignment. The row is kept for audit.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := auth.PrincipalIDFromContext(r.Context())
	if _, err := h.svc.Revoke(r.Context(), r.PathValue("principalId"), r.PathValue("assignmentId"), actorID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
