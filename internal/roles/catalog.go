package roles

import (
	"sort"
	"strings"
)

// Definition is the raw, serialisable form of a catalog. The event tables are kept
// separate (as they are in the product code) so that NewCatalog can check each of
// them is total over EventRoles.
type Definition struct {
	PlatformRoles           map[string]PlatformRoleDef `yaml:"platform_roles"`
	PlatformRolePermissions map[string][]Permission    `yaml:"platform_role_permissions"`

	EventRoles              []EventRole                `yaml:"event_roles"`
	EventRoleHierarchy      map[EventRole]int          `yaml:"event_role_hierarchy"`
	EventRolePlatformAccess map[EventRole][]Platform   `yaml:"event_role_platform_access"`
	EventRolePermissions    map[EventRole][]Permission `yaml:"event_role_permissions"`
}

// PlatformRoleDef is one platform role entry of a Definition, keyed by its stored code.
type PlatformRoleDef struct {
	DisplayName                     string   `yaml:"name"`
	Description                     string   `yaml:"description,omitempty"`
	Platform                        Platform `yaml:"platform"`
	Level                           Level    `yaml:"level"`
	InheritsFrom                    []string `yaml:"inherits_from,omitempty"`
	RequiresEmailDomain             string   `yaml:"requires_email_domain,omitempty"`
	CanImpersonate                  bool     `yaml:"can_impersonate,omitempty"`
	RequiresPermissionToImpersonate bool     `yaml:"requires_permission_to_impersonate,omitempty"`
}

// PlatformRoleMetadata is the immutable catalog entry for a platform role.
type PlatformRoleMetadata struct {
	Role                            PlatformRole
	DisplayName                     string
	Description                     string
	Platform                        Platform
	Level                           Level
	InheritsFrom                    []PlatformRole
	RequiresEmailDomain             string
	CanImpersonate                  bool
	RequiresPermissionToImpersonate bool
	// Permissions are the ones listed for this role alone, without inheritance.
	Permissions PermissionSet
}

// EventRoleMetadata is the immutable catalog entry for an event role.
type EventRoleMetadata struct {
	Role           EventRole
	Rank           int
	PlatformAccess []Platform
	Permissions    PermissionSet
}

// Catalog is the validated, read-only role registry. Build it once at startup with
// NewCatalog and share the pointer; nothing mutates it afterwards, so it is safe
// for concurrent use without locking.
type Catalog struct {
	platform  map[PlatformRole]PlatformRoleMetadata
	inherited map[PlatformRole][]PlatformRole
	event     map[EventRole]EventRoleMetadata

	platformOrder []PlatformRole
	eventOrder    []EventRole
}

// NewCatalog validates def and builds a Catalog. Any integrity problem (dangling
// or cross-platform inheritance, cycles, incomplete event tables) is returned as a
// *ConfigurationError and the catalog must not be used.
func NewCatalog(def Definition) (*Catalog, error) {
	var bad problems
	c := &Catalog{
		platform: make(map[PlatformRole]PlatformRoleMetadata, len(def.PlatformRoles)),
		event:    make(map[EventRole]EventRoleMetadata, len(def.EventRoles)),
	}

	for code, rd := range def.PlatformRoles {
		role, err := ParsePlatformRole(code)
		if err != nil {
			bad.addf("platform role %q: %v", code, err)
			continue
		}
		if role.String() != code {
			bad.addf("platform role %q: code must be upper case", code)
			continue
		}
		if _, err := ParsePlatform(string(rd.Platform)); err != nil {
			bad.addf("platform role %s: %v", code, err)
			continue
		}
		if rd.Platform != role.Platform {
			bad.addf("platform role %s: declared platform %s does not match code", code, rd.Platform)
			continue
		}
		if _, ok := levelNames[rd.Level]; !ok {
			bad.addf("platform role %s: missing or unknown level", code)
		}
		perms, ok := def.PlatformRolePermissions[code]
		if !ok {
			bad.addf("platform role %s: no permission entry", code)
		}
		domain := strings.ToLower(strings.TrimSpace(rd.RequiresEmailDomain))
		if domain != "" && !strings.HasPrefix(domain, "@") {
			bad.addf("platform role %s: email domain %q must start with @", code, rd.RequiresEmailDomain)
		}
		if rd.RequiresPermissionToImpersonate && !rd.CanImpersonate {
			bad.addf("platform role %s: requires permission to impersonate but cannot impersonate", code)
		}
		c.platform[role] = PlatformRoleMetadata{
			Role:                            role,
			DisplayName:                     rd.DisplayName,
			Description:                     rd.Description,
			Platform:                        role.Platform,
			Level:                           rd.Level,
			RequiresEmailDomain:             domain,
			CanImpersonate:                  rd.CanImpersonate,
			RequiresPermissionToImpersonate: rd.RequiresPermissionToImpersonate,
			Permissions:                     NewPermissionSet(perms...),
		}
		c.platformOrder = append(c.platformOrder, role)
	}
	for code := range def.PlatformRolePermissions {
		if _, ok := def.PlatformRoles[code]; !ok {
			bad.addf("permission entry for undefined platform role %s", code)
		}
	}

	// Edges are resolved in a second pass so a role may inherit from one declared later.
	for code, rd := range def.PlatformRoles {
		role, err := ParsePlatformRole(code)
		if err != nil {
			continue
		}
		md, ok := c.platform[role]
		if !ok {
			continue
		}
		for _, parentCode := range rd.InheritsFrom {
			parent, err := ParsePlatformRole(parentCode)
			if err != nil {
				bad.addf("platform role %s inherits from %q: %v", code, parentCode, err)
				continue
			}
			if _, ok := c.platform[parent]; !ok {
				bad.addf("platform role %s inherits from undefined role %s", code, parentCode)
				continue
			}
			if parent == role {
				bad.addf("platform role %s inherits from itself", code)
				continue
			}
			if parent.Platform != role.Platform && !(role.Platform == PrivilegedPlatform && parent.Platform == ATLVS) {
				bad.addf("platform role %s inherits across platforms from %s", code, parentCode)
				continue
			}
			md.InheritsFrom = append(md.InheritsFrom, parent)
		}
		c.platform[role] = md
	}

	c.validateEventTables(def, &bad)

	if err := bad.err(); err != nil {
		return nil, err
	}
	if cycle := findCycle(c.platform); cycle != nil {
		names := make([]string, len(cycle))
		for i, r := range cycle {
			names[i] = r.String()
		}
		return nil, &ConfigurationError{Problems: []string{"inheritance cycle: " + strings.Join(names, " -> ")}}
	}
	c.inherited = make(map[PlatformRole][]PlatformRole, len(c.platform))
	for role := range c.platform {
		c.inherited[role] = reachable(c.platform, role)
	}

	sort.Slice(c.platformOrder, func(i, j int) bool {
		return c.platformOrder[i].String() < c.platformOrder[j].String()
	})
	sort.Slice(c.eventOrder, func(i, j int) bool { return c.eventOrder[i] < c.eventOrder[j] })
	return c, nil
}

func (c *Catalog) validateEventTables(def Definition, bad *problems) {
	for _, er := range def.EventRoles {
		code := string(er)
		if code == "" || code != strings.ToUpper(code) {
			bad.addf("event role %q: code must be non-empty upper case", code)
			continue
		}
		if _, dup := c.event[er]; dup {
			bad.addf("event role %s declared twice", code)
			continue
		}
		if pr, err := ParsePlatformRole(code); err == nil {
			if _, clash := c.platform[pr]; clash {
				bad.addf("event role %s collides with a platform role code", code)
				continue
			}
		}
		md := EventRoleMetadata{Role: er}

		rank, ok := def.EventRoleHierarchy[er]
		switch {
		case !ok:
			bad.addf("event role %s: no hierarchy rank", code)
		case rank <= 0:
			bad.addf("event role %s: rank %d is not positive", code, rank)
		}
		md.Rank = rank

		access, ok := def.EventRolePlatformAccess[er]
		if !ok || len(access) == 0 {
			bad.addf("event role %s: empty platform access", code)
		}
		seen := make(map[Platform]bool, len(access))
		for _, p := range access {
			if _, err := ParsePlatform(string(p)); err != nil || p != Platform(strings.ToLower(string(p))) {
				bad.addf("event role %s: unknown platform %q in access set", code, p)
				continue
			}
			if !seen[p] {
				seen[p] = true
				md.PlatformAccess = append(md.PlatformAccess, p)
			}
		}

		perms, ok := def.EventRolePermissions[er]
		if !ok {
			bad.addf("event role %s: no permission entry", code)
		}
		md.Permissions = NewPermissionSet(perms...)

		c.event[er] = md
		c.eventOrder = append(c.eventOrder, er)
	}

	declared := make(map[EventRole]bool, len(def.EventRoles))
	for _, er := range def.EventRoles {
		declared[er] = true
	}
	for er := range def.EventRoleHierarchy {
		if !declared[er] {
			bad.addf("hierarchy entry for undeclared event role %s", er)
		}
	}
	for er := range def.EventRolePlatformAccess {
		if !declared[er] {
			bad.addf("platform access entry for undeclared event role %s", er)
		}
	}
	for er := range def.EventRolePermissions {
		if !declared[er] {
			bad.addf("permission entry for undeclared event role %s", er)
		}
	}
}

// PlatformRole returns the metadata for role.
func (c *Catalog) PlatformRole(role PlatformRole) (PlatformRoleMetadata, error) {
	md, ok := c.platform[role]
	if !ok {
		return PlatformRoleMetadata{}, &UnknownRoleError{Code: role.String()}
	}
	md.InheritsFrom = append([]PlatformRole(nil), md.InheritsFrom...)
	return md, nil
}

// EventRole returns the metadata for role.
func (c *Catalog) EventRole(role EventRole) (EventRoleMetadata, error) {
	md, ok := c.event[role]
	if !ok {
		return EventRoleMetadata{}, &UnknownRoleError{Code: string(role)}
	}
	md.PlatformAccess = append([]Platform(nil), md.PlatformAccess...)
	return md, nil
}

// LookupPlatformRole parses a stored code and checks it against the catalog.
func (c *Catalog) LookupPlatformRole(code string) (PlatformRole, error) {
	role, err := ParsePlatformRole(code)
	if err != nil {
		return PlatformRole{}, &UnknownRoleError{Code: code}
	}
	if _, ok := c.platform[role]; !ok {
		return PlatformRole{}, &UnknownRoleError{Code: code}
	}
	return role, nil
}

// ParseRole resolves a stored role_code to either a platform or an event role.
func (c *Catalog) ParseRole(code string) (RoleRef, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if role, err := c.LookupPlatformRole(code); err == nil {
		return RoleRef{Platform: role}, nil
	}
	if _, ok := c.event[EventRole(code)]; ok {
		return RoleRef{Event: EventRole(code)}, nil
	}
	return RoleRef{}, &UnknownRoleError{Code: code}
}

// PlatformRoles lists every platform role, sorted by code.
func (c *Catalog) PlatformRoles() []PlatformRole {
	return append([]PlatformRole(nil), c.platformOrder...)
}

// EventRoles lists every event role, sorted by code.
func (c *Catalog) EventRoles() []EventRole {
	return append([]EventRole(nil), c.eventOrder...)
}

// IsPrivileged reports whether role belongs to the root role family.
func (c *Catalog) IsPrivileged(role PlatformRole) bool {
	return role.Platform == PrivilegedPlatform
}
