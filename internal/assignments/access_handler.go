package assignments

import (
	"log/slog"
	"net/http"

	"github.com/sopatech/rolegate/internal/auth"
	"github.com/sopatech/rolegate/internal/authz"
	"github.com/sopatech/rolegate/internal/metrics"
	"github.com/sopatech/rolegate/internal/roles"
)

type platformRoleView struct {
	Code                            string             `json:"code"`
	Name                            string             `json:"name"`
	Description                     string             `json:"description,omitempty"`
	Platform                        roles.Platform     `json:"platform"`
	Level                           roles.Level        `json:"level"`
	InheritsFrom                    []string           `json:"inherits_from"`
	RequiresEmailDomain             string             `json:"requires_email_domain,omitempty"`
	CanImpersonate                  bool               `json:"can_impersonate"`
	RequiresPermissionToImpersonate bool               `json:"requires_permission_to_impersonate"`
	Permissions                     []roles.Permission `json:"permissions"`
}

type eventRoleView struct {
	Code           string             `json:"code"`
	Rank           int                `json:"rank"`
	PlatformAccess []roles.Platform   `json:"platform_access"`
	Permissions    []roles.Permission `json:"permissions"`
}

func platformRoleViewOf(c *roles.Catalog, role roles.PlatformRole) (platformRoleView, error) {
	md, err := c.PlatformRole(role)
	if err != nil {
		return platformRoleView{}, err
	}
	inherits := make([]string, len(md.InheritsFrom))
	for i, p := range md.InheritsFrom {
		inherits[i] = p.String()
	}
	return platformRoleView{
		Code:                            role.String(),
		Name:                            md.DisplayName,
		Description:                     md.Description,
		Platform:                        md.Platform,
		Level:                           md.Level,
		InheritsFrom:                    inherits,
		RequiresEmailDomain:             md.RequiresEmailDomain,
		CanImpersonate:                  md.CanImpersonate,
		RequiresPermissionToImpersonate: md.RequiresPermissionToImpersonate,
		Permissions:                     md.Permissions.Sorted(),
	}, nil
}

func eventRoleViewOf(c *roles.Catalog, role roles.EventRole) (eventRoleView, error) {
	md, err := c.EventRole(role)
	if err != nil {
		return eventRoleView{}, err
	}
	return eventRoleView{
		Code:           string(role),
		Rank:           md.Rank,
		PlatformAccess: md.PlatformAccess,
		Permissions:    md.Permissions.Sorted(),
	}, nil
}

// PlatformRoles lists the platform role catalog for role pickers.
func (h *Handler) PlatformRoles(w http.ResponseWriter, r *http.Request) {
	c := h.authorizer.Catalog()
	out := make([]platformRoleView, 0, len(c.PlatformRoles()))
	for _, role := range c.PlatformRoles() {
		v, err := platformRoleViewOf(c, role)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"platform_roles": out})
}

func (h *Handler) EventRoles(w http.ResponseWriter, r *http.Request) {
	c := h.authorizer.Catalog()
	out := make([]eventRoleView, 0, len(c.EventRoles()))
	for _, role := range c.EventRoles() {
		v, err := eventRoleViewOf(c, role)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_roles": out})
}

// PlatformDirectory serves one platform's slice of the catalog: its own roles and
// the event roles that open it. Mount it behind a platform access check.
func (h *Handler) PlatformDirectory(platform roles.Platform) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := h.authorizer.Catalog()
		platformRoles := []platformRoleView{}
		for _, role := range c.PlatformRoles() {
			if role.Platform != platform {
				continue
			}
			v, err := platformRoleViewOf(c, role)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			platformRoles = append(platformRoles, v)
		}
		eventRoles := []eventRoleView{}
		for _, role := range c.EventRoles() {
			ok, err := c.PlatformHasAccess(role, platform)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			if !ok {
				continue
			}
			v, err := eventRoleViewOf(c, role)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			eventRoles = append(eventRoles, v)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"platform":       platform,
			"platform_roles": platformRoles,
			"event_roles":    eventRoles,
		})
	}
}

type accessView struct {
	PrincipalID       string               `json:"principal_id"`
	EventID           string               `json:"event_id,omitempty"`
	Level             string               `json:"level,omitempty"`
	PlatformRoles     []roles.PlatformRole `json:"platform_roles"`
	EventRoles        []roles.EventRole    `json:"event_roles"`
	Platforms         []roles.Platform     `json:"platforms"`
	DominantEventRank int                  `json:"dominant_event_rank"`
	Universal         bool                 `json:"universal"`
	Permissions       []roles.Permission   `json:"permissions"`
	Impersonation     authz.Impersonation  `json:"impersonation"`
}

// MyAccess summarises what the caller holds, for navigation and UI guards.
func (h *Handler) MyAccess(w http.ResponseWriter, r *http.Request) {
	s, ok := h.subject(w, r, r.URL.Query().Get("event_id"))
	if !ok {
		return
	}
	view, err := h.access(auth.PrincipalIDFromContext(r.Context()), s)
	if err != nil {
		h.failCheck(w, r, "access summary", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) access(principalID string, s authz.Subject) (accessView, error) {
	z := h.authorizer
	view := accessView{
		PrincipalID:   principalID,
		EventID:       s.EventID,
		PlatformRoles: append([]roles.PlatformRole{}, s.PlatformRoles...),
		EventRoles:    append([]roles.EventRole{}, s.EventRoles...),
		Platforms:     []roles.Platform{},
	}

	level, err := z.EffectiveLevel(s.PlatformRoles)
	if err != nil {
		return accessView{}, err
	}
	if level > 0 {
		view.Level = level.String()
	}

	viaEvent, err := z.EventPlatforms(s.EventRoles)
	if err != nil {
		return accessView{}, err
	}
	for _, p := range roles.AllPlatforms() {
		ok, err := z.CanAccessPlatform(s.PlatformRoles, p)
		if err != nil {
			return accessView{}, err
		}
		for _, e := range viaEvent {
			ok = ok || e == p
		}
		if ok {
			view.Platforms = append(view.Platforms, p)
		}
	}

	if view.DominantEventRank, err = z.Aggregator().DominantEventRank(s.EventRoles); err != nil {
		return accessView{}, err
	}
	perms, err := z.Aggregator().Permissions(s.PlatformRoles, s.EventRoles)
	if err != nil {
		return accessView{}, err
	}
	view.Universal = perms.IsUniversal()
	view.Permissions = perms.Sorted()

	if view.Impersonation, err = z.ResolveImpersonation(s); err != nil {
		return accessView{}, err
	}
	return view, nil
}

// MyCheck answers one permission question with the explained Decision.
func (h *Handler) MyCheck(w http.ResponseWriter, r *http.Request) {
	perm := roles.Permission(r.URL.Query().Get("permission"))
	if perm == "" {
		http.Error(w, "permission required", http.StatusBadRequest)
		return
	}
	s, ok := h.subject(w, r, r.URL.Query().Get("event_id"))
	if !ok {
		return
	}
	d, err := h.authorizer.Decide(s, perm)
	if err != nil {
		h.failCheck(w, r, "decide", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Impersonate reports whether the caller may impersonate the target. It does not
// mint a session; that belongs to the session service.
func (h *Handler) Impersonate(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("principalId")
	actorID := auth.PrincipalIDFromContext(r.Context())
	if actorID != "" && target == actorID {
		http.Error(w, "cannot impersonate yourself", http.StatusBadRequest)
		return
	}
	s, ok := h.subject(w, r, "")
	if !ok {
		return
	}
	state, err := h.authorizer.ResolveImpersonation(s)
	if err != nil {
		h.failCheck(w, r, "impersonation", err)
		return
	}
	h.recorder.RecordImpersonation(state.String())
	h.logger.InfoContext(r.Context(), "impersonation check",
		slog.String("principal_id", actorID),
		slog.String("target_id", target),
		slog.String("outcome", state.String()),
		slog.String("correlation_id", s.CorrelationID),
	)

	status := http.StatusOK
	if state == authz.ImpersonationDenied {
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]any{
		"principal_id":  actorID,
		"target_id":     target,
		"impersonation": state,
	})
}

// failCheck refuses a request whose check errored. It never answers 200.
func (h *Handler) failCheck(w http.ResponseWriter, r *http.Request, what string, err error) {
	h.recorder.RecordDecision(what, metrics.OutcomeError)
	h.logger.ErrorContext(r.Context(), "authorization check failed",
		slog.String("check", what),
		slog.String("principal_id", auth.PrincipalIDFromContext(r.Context())),
		slog.String("correlation_id", r.Header.Get(RequestIDHeader)),
		slog.Any("err", err),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
