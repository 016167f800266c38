package authz

import (
	"sort"

	"github.com/sopatech/rolegate/internal/roles"
)

// Aggregator unions permissions across held roles. It is a pure function of the
// roles it is given: callers filter out expired assignments first.
type Aggregator struct {
	catalog *roles.Catalog
}

func NewAggregator(catalog *roles.Catalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

// PlatformPermissions returns the union of permissions granted by held and every
// role they inherit. Holding any privileged role yields the universal set. Every
// held role is checked against the catalog first, so an unknown code fails the
// call even when a privileged role is also held.
func (a *Aggregator) PlatformPermissions(held []roles.PlatformRole) (roles.PermissionSet, error) {
	privileged := false
	for _, r := range held {
		if _, err := a.catalog.PlatformRole(r); err != nil {
			return roles.PermissionSet{}, err
		}
		if a.catalog.IsPrivileged(r) {
			privileged = true
		}
	}
	if privileged {
		return roles.AllPermissions(), nil
	}
	return a.listedPlatformPermissions(held)
}

// listedPlatformPermissions is the union of what the held roles and their ancestors
// list in the catalog, ignoring the privileged short-circuit.
func (a *Aggregator) listedPlatformPermissions(held []roles.PlatformRole) (roles.PermissionSet, error) {
	var out roles.PermissionSet
	for _, r := range held {
		closure, err := a.closure(r)
		if err != nil {
			return roles.PermissionSet{}, err
		}
		for _, c := range closure {
			perms, err := a.catalog.PlatformPermissions(c)
			if err != nil {
				return roles.PermissionSet{}, err
			}
			out = out.Union(perms)
		}
	}
	return out, nil
}

// closure is {role} plus everything it inherits.
func (a *Aggregator) closure(role roles.PlatformRole) ([]roles.PlatformRole, error) {
	inh, err := a.catalog.InheritedRoles(role)
	if err != nil {
		return nil, err
	}
	return append([]roles.PlatformRole{role}, inh...), nil
}

// EventPermissions is the union of the permissions of each held event role.
// Event roles do not inherit from one another.
func (a *Aggregator) EventPermissions(held []roles.EventRole) (roles.PermissionSet, error) {
	var out roles.PermissionSet
	for _, r := range held {
		perms, err := a.catalog.EventPermissions(r)
		if err != nil {
			return roles.PermissionSet{}, err
		}
		out = out.Union(perms)
	}
	return out, nil
}

// DominantEventRank is the highest rank among held, or 0 when nothing is held.
// It is for display only and never gates a permission.
func (a *Aggregator) DominantEventRank(held []roles.EventRole) (int, error) {
	best := 0
	for _, r := range held {
		rank, err := a.catalog.HierarchyRank(r)
		if err != nil {
			return 0, err
		}
		if rank > best {
			best = rank
		}
	}
	return best, nil
}

// Permissions is the combined platform and event permission set.
func (a *Aggregator) Permissions(platform []roles.PlatformRole, event []roles.EventRole) (roles.PermissionSet, error) {
	pp, err := a.PlatformPermissions(platform)
	if err != nil {
		return roles.PermissionSet{}, err
	}
	ep, err := a.EventPermissions(event)
	if err != nil {
		return roles.PermissionSet{}, err
	}
	return pp.Union(ep), nil
}

func (a *Aggregator) HasPermission(platform []roles.PlatformRole, event []roles.EventRole, perm roles.Permission) (bool, error) {
	set, err := a.Permissions(platform, event)
	if err != nil {
		return false, err
	}
	return set.Has(perm), nil
}

// GrantingRoles lists the held role codes that each grant perm on their own,
// sorted. It explains a decision for audit logs; it never changes one.
func (a *Aggregator) GrantingRoles(platform []roles.PlatformRole, event []roles.EventRole, perm roles.Permission) ([]string, error) {
	seen := make(map[string]bool)
	for _, r := range platform {
		if a.catalog.IsPrivileged(r) {
			if _, err := a.catalog.PlatformRole(r); err != nil {
				return nil, err
			}
			seen[r.String()] = true
			continue
		}
		set, err := a.listedPlatformPermissions([]roles.PlatformRole{r})
		if err != nil {
			return nil, err
		}
		if set.Has(perm) {
			seen[r.String()] = true
		}
	}
	for _, r := range event {
		set, err := a.catalog.EventPermissions(r)
		if err != nil {
			return nil, err
		}
		if set.Has(perm) {
			seen[string(r)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}
