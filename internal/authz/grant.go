package authz

import "github.com/sopatech/rolegate/internal/roles"

// CanGrant reports whether actor may hand target to someone else. It only limits
// reach; the caller still checks users:manage.
//
// Privileged holders may grant anything. Otherwise privileged roles are out of
// reach, a platform role needs a held role on the same platform at the same level
// or above, and an event role needs an event role for that event ranked at least as
// high, or an admin-level platform role.
func (z *Authorizer) CanGrant(actor Subject, target roles.RoleRef) (bool, error) {
	best := make(map[roles.Platform]roles.Level)
	privileged := false
	for _, r := range actor.PlatformRoles {
		md, err := z.catalog.PlatformRole(r)
		if err != nil {
			return false, err
		}
		if z.catalog.IsPrivileged(r) {
			privileged = true
		}
		if md.Level > best[r.Platform] {
			best[r.Platform] = md.Level
		}
	}
	if privileged {
		return true, nil
	}

	if !target.IsEvent() {
		if z.catalog.IsPrivileged(target.Platform) {
			return false, nil
		}
		md, err := z.catalog.PlatformRole(target.Platform)
		if err != nil {
			return false, err
		}
		return best[target.Platform] >= md.Level, nil
	}

	for _, l := range best {
		if l >= roles.LevelAdmin {
			return true, nil
		}
	}
	want, err := z.catalog.HierarchyRank(target.Event)
	if err != nil {
		return false, err
	}
	have, err := z.aggregator.DominantEventRank(actor.EventRoles)
	if err != nil {
		return false, err
	}
	return have >= want, nil
}
