package authz

import (
	"time"

	"github.com/sopatech/rolegate/internal/roles"
)

// Assignment is the persisted fact that a principal holds a role. Exactly one of
// PlatformRole and EventRole is set; EventID is set iff EventRole is.
type Assignment struct {
	ID           string             `json:"id"`
	PrincipalID  string             `json:"principal_id"`
	PlatformRole roles.PlatformRole `json:"platform_role,omitzero"`
	EventRole    roles.EventRole    `json:"event_role,omitempty"`
	EventID      string             `json:"event_id,omitempty"`
	GrantedAt    time.Time          `json:"granted_at"`
	GrantedBy    string             `json:"granted_by,omitempty"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	RevokedAt    *time.Time         `json:"revoked_at,omitempty"`
}

// RoleCode is the stored role_code column.
func (a Assignment) RoleCode() string {
	if a.EventRole != "" {
		return string(a.EventRole)
	}
	return a.PlatformRole.String()
}

func (a Assignment) Revoked() bool { return a.RevokedAt != nil }

// IsExpired reports whether a had expired at now. An assignment is still live at
// the exact instant of its expiry.
func IsExpired(a Assignment, now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// Active drops expired and revoked assignments. The input is not modified.
func Active(assignments []Assignment, now time.Time) []Assignment {
	out := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.Revoked() || IsExpired(a, now) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// HeldFor builds the roles a principal holds right now: every active platform role,
// plus the active event roles granted for eventID. With an empty eventID no event
// roles are included.
func HeldFor(assignments []Assignment, eventID string, now time.Time) Subject {
	s := Subject{EventID: eventID}
	seenPlatform := make(map[roles.PlatformRole]bool)
	seenEvent := make(map[roles.EventRole]bool)
	for _, a := range Active(assignments, now) {
		switch {
		case a.EventRole != "":
			if eventID == "" || a.EventID != eventID || seenEvent[a.EventRole] {
				continue
			}
			seenEvent[a.EventRole] = true
			s.EventRoles = append(s.EventRoles, a.EventRole)
		case !a.PlatformRole.IsZero():
			if seenPlatform[a.PlatformRole] {
				continue
			}
			seenPlatform[a.PlatformRole] = true
			s.PlatformRoles = append(s.PlatformRoles, a.PlatformRole)
		}
	}
	return s
}
