package authz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sopatech/rolegate/internal/roles"
)

var (
	ErrEmailDomainMismatch = errors.New("email domain not permitted for role")
	ErrEventIDRequired     = errors.New("event role assignment requires an event id")
	ErrEventIDNotAllowed   = errors.New("platform role assignment must not carry an event id")
	ErrExpiryNotInFuture   = errors.New("expiry must be in the future")
	ErrRoleRequired        = errors.New("exactly one of platform role or event role is required")
)

// AssignmentError is a rejected grant. It is an expected outcome of an admin
// action, to be shown to the user, not a failure of the service.
type AssignmentError struct {
	Role   string
	Reason error
}

func (e *AssignmentError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("cannot assign role: %v", e.Reason)
	}
	return fmt.Sprintf("cannot assign %s: %v", e.Role, e.Reason)
}

func (e *AssignmentError) Unwrap() error { return e.Reason }

// Code is a stable machine-readable identifier for the reason.
func (e *AssignmentError) Code() string {
	switch {
	case errors.Is(e.Reason, ErrEmailDomainMismatch):
		return "email_domain_mismatch"
	case errors.Is(e.Reason, ErrEventIDRequired):
		return "event_id_required"
	case errors.Is(e.Reason, ErrEventIDNotAllowed):
		return "event_id_not_allowed"
	case errors.Is(e.Reason, ErrExpiryNotInFuture):
		return "expiry_not_in_future"
	case errors.Is(e.Reason, ErrRoleRequired):
		return "role_required"
	}
	return "invalid_assignment"
}

// Validator checks grant-time constraints. It is consulted when roles are
// granted, never when they are checked.
type Validator struct {
	catalog *roles.Catalog
}

func NewValidator(catalog *roles.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// ValidateAssignment enforces the role's email-domain restriction. Both sides are
// lowercased and the suffix must match exactly, so a subdomain of the required
// domain does not qualify.
func (v *Validator) ValidateAssignment(email string, role roles.PlatformRole) error {
	md, err := v.catalog.PlatformRole(role)
	if err != nil {
		return err
	}
	if md.RequiresEmailDomain == "" {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(email), md.RequiresEmailDomain) {
		return &AssignmentError{Role: role.String(), Reason: ErrEmailDomainMismatch}
	}
	return nil
}

// ValidateGrant checks a new assignment before it is stored: known role, event id
// present iff the role is an event role, a future expiry if any, and the email
// domain restriction for platform roles.
func (v *Validator) ValidateGrant(a Assignment, email string, now time.Time) error {
	hasPlatform := !a.PlatformRole.IsZero()
	hasEvent := a.EventRole != ""
	if hasPlatform == hasEvent {
		return &AssignmentError{Reason: ErrRoleRequired}
	}

	if hasEvent {
		if _, err := v.catalog.EventRole(a.EventRole); err != nil {
			return err
		}
		if a.EventID == "" {
			return &AssignmentError{Role: a.RoleCode(), Reason: ErrEventIDRequired}
		}
	} else {
		if _, err := v.catalog.PlatformRole(a.PlatformRole); err != nil {
			return err
		}
		if a.EventID != "" {
			return &AssignmentError{Role: a.RoleCode(), Reason: ErrEventIDNotAllowed}
		}
	}

	if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
		return &AssignmentError{Role: a.RoleCode(), Reason: ErrExpiryNotInFuture}
	}

	if hasPlatform {
		return v.ValidateAssignment(email, a.PlatformRole)
	}
	return nil
}
