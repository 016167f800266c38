package authz

import (
	"fmt"

	"github.com/sopatech/rolegate/internal/roles"
)

// Subject is what a principal holds for one check. Callers build it from
// non-expired assignments, usually with HeldFor.
type Subject struct {
	PlatformRoles []roles.PlatformRole
	EventRoles    []roles.EventRole
	EventID       string
	// CorrelationID is carried into Decision for the caller's logs and is otherwise unused.
	CorrelationID string
}

// Decision is an explained permission check.
type Decision struct {
	Allowed       bool             `json:"allowed"`
	Permission    roles.Permission `json:"permission"`
	EventID       string           `json:"event_id,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	Universal     bool             `json:"universal,omitempty"`
	GrantedBy     []string         `json:"granted_by,omitempty"`
}

// Impersonation is the outcome of an impersonation check. PendingGrant means the
// role may impersonate only after a separate explicit grant is confirmed; treat it
// as a refusal until then.
type Impersonation int

const (
	ImpersonationDenied Impersonation = iota
	ImpersonationPendingGrant
	ImpersonationAllowed
)

func (i Impersonation) String() string {
	switch i {
	case ImpersonationDenied:
		return "denied"
	case ImpersonationPendingGrant:
		return "pending_grant"
	case ImpersonationAllowed:
		return "allowed"
	}
	return fmt.Sprintf("Impersonation(%d)", int(i))
}

func (i Impersonation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Authorizer is the decision API used by request middleware and UI guards. It
// holds no per-request state and is safe for concurrent use.
type Authorizer struct {
	catalog    *roles.Catalog
	aggregator *Aggregator
}

func NewAuthorizer(catalog *roles.Catalog) *Authorizer {
	return &Authorizer{catalog: catalog, aggregator: NewAggregator(catalog)}
}

func (z *Authorizer) Catalog() *roles.Catalog { return z.catalog }

func (z *Authorizer) Aggregator() *Aggregator { return z.aggregator }

// CanAccessPlatform reports whether any held role is privileged or belongs to platform.
func (z *Authorizer) CanAccessPlatform(held []roles.PlatformRole, platform roles.Platform) (bool, error) {
	allowed := false
	for _, r := range held {
		if _, err := z.catalog.PlatformRole(r); err != nil {
			return false, err
		}
		if z.catalog.IsPrivileged(r) || r.Platform == platform {
			allowed = true
		}
	}
	return allowed, nil
}

func (z *Authorizer) HasEventRolePlatformAccess(role roles.EventRole, platform roles.Platform) (bool, error) {
	return z.catalog.PlatformHasAccess(role, platform)
}

// EventPlatforms is every platform reachable through held, in display order.
func (z *Authorizer) EventPlatforms(held []roles.EventRole) ([]roles.Platform, error) {
	reach := make(map[roles.Platform]bool)
	for _, r := range held {
		access, err := z.catalog.PlatformAccess(r)
		if err != nil {
			return nil, err
		}
		for _, p := range access {
			reach[p] = true
		}
	}
	var out []roles.Platform
	for _, p := range roles.AllPlatforms() {
		if reach[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (z *Authorizer) HasPermission(s Subject, perm roles.Permission) (bool, error) {
	return z.aggregator.HasPermission(s.PlatformRoles, s.EventRoles, perm)
}

// Decide is HasPermission plus the detail an audit log needs.
func (z *Authorizer) Decide(s Subject, perm roles.Permission) (Decision, error) {
	set, err := z.aggregator.Permissions(s.PlatformRoles, s.EventRoles)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		Allowed:       set.Has(perm),
		Permission:    perm,
		EventID:       s.EventID,
		CorrelationID: s.CorrelationID,
		Universal:     set.IsUniversal(),
	}
	if d.Allowed {
		d.GrantedBy, err = z.aggregator.GrantingRoles(s.PlatformRoles, s.EventRoles, perm)
		if err != nil {
			return Decision{}, err
		}
	}
	return d, nil
}

// CanImpersonate reports what role alone allows.
func (z *Authorizer) CanImpersonate(role roles.PlatformRole) (Impersonation, error) {
	md, err := z.catalog.PlatformRole(role)
	if err != nil {
		return ImpersonationDenied, err
	}
	switch {
	case !md.CanImpersonate:
		return ImpersonationDenied, nil
	case md.RequiresPermissionToImpersonate:
		return ImpersonationPendingGrant, nil
	}
	return ImpersonationAllowed, nil
}

// CanImpersonateAny returns the most permissive outcome across held.
func (z *Authorizer) CanImpersonateAny(held []roles.PlatformRole) (Impersonation, error) {
	best := ImpersonationDenied
	for _, r := range held {
		i, err := z.CanImpersonate(r)
		if err != nil {
			return ImpersonationDenied, err
		}
		if i > best {
			best = i
		}
	}
	return best, nil
}

// ResolveImpersonation settles a pending grant. The grant must be listed in the
// tables of a held platform role or one it inherits; the privileged universal set
// does not count, otherwise every pending privileged role would settle itself.
func (z *Authorizer) ResolveImpersonation(s Subject) (Impersonation, error) {
	state, err := z.CanImpersonateAny(s.PlatformRoles)
	if err != nil || state != ImpersonationPendingGrant {
		return state, err
	}
	listed, err := z.aggregator.listedPlatformPermissions(s.PlatformRoles)
	if err != nil {
		return ImpersonationDenied, err
	}
	if listed.Has(roles.PermImpersonationGrant) {
		return ImpersonationAllowed, nil
	}
	return ImpersonationPendingGrant, nil
}

// EffectiveLevel is the highest level among held, or 0 when nothing is held.
func (z *Authorizer) EffectiveLevel(held []roles.PlatformRole) (roles.Level, error) {
	var best roles.Level
	for _, r := range held {
		md, err := z.catalog.PlatformRole(r)
		if err != nil {
			return 0, err
		}
		if md.Level > best {
			best = md.Level
		}
	}
	return best, nil
}
