package roles

// HierarchyRank is the seniority of an event role. Used for display and
// tie-breaking only; event roles never inherit from each other.
func (c *Catalog) HierarchyRank(role EventRole) (int, error) {
	md, ok := c.event[role]
	if !ok {
		return 0, &UnknownRoleError{Code: string(role)}
	}
	return md.Rank, nil
}

// PlatformAccess lists the platforms a holder of role may reach.
func (c *Catalog) PlatformAccess(role EventRole) ([]Platform, error) {
	md, ok := c.event[role]
	if !ok {
		return nil, &UnknownRoleError{Code: string(role)}
	}
	return append([]Platform(nil), md.PlatformAccess...), nil
}

// EventPermissions returns the permissions attached to role.
func (c *Catalog) EventPermissions(role EventRole) (PermissionSet, error) {
	md, ok := c.event[role]
	if !ok {
		return PermissionSet{}, &UnknownRoleError{Code: string(role)}
	}
	return md.Permissions, nil
}

// PlatformHasAccess reports whether role's platform access set contains platform.
func (c *Catalog) PlatformHasAccess(role EventRole, platform Platform) (bool, error) {
	md, ok := c.event[role]
	if !ok {
		return false, &UnknownRoleError{Code: string(role)}
	}
	for _, p := range md.PlatformAccess {
		if p == platform {
			return true, nil
		}
	}
	return false, nil
}

// PlatformPermissions returns the permissions listed for role alone, without inheritance.
func (c *Catalog) PlatformPermissions(role PlatformRole) (PermissionSet, error) {
	md, ok := c.platform[role]
	if !ok {
		return PermissionSet{}, &UnknownRoleError{Code: role.String()}
	}
	return md.Permissions, nil
}
