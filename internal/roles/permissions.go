package roles

import "sort"

// Permission is a namespaced capability token, "resource:action[:scope]".
type Permission string

// Built-in permission vocabulary.
const (
	PermEventsCreate Permission = "events:create"
	PermEventsEdit   Permission = "events:edit"
	PermEventsDelete Permission = "events:delete"
	PermEventsView   Permission = "events:view"

	PermTicketsManage    Permission = "tickets:manage"
	PermOrdersView       Permission = "orders:view"
	PermOrdersViewOwn    Permission = "orders:view:own"
	PermOrdersViewClient Permission = "orders:view:clients"
	PermOrdersRefund     Permission = "orders:refund"

	PermProjectsCreate Permission = "projects:create"
	PermProjectsEdit   Permission = "projects:edit"
	PermProjectsView   Permission = "projects:view"
	PermTasksAssign    Permission = "tasks:assign"
	PermTasksView      Permission = "tasks:view"

	PermBudgetsManage Permission = "budgets:manage"
	PermBudgetsView   Permission = "budgets:view"

	PermAdvancingSubmit  Permission = "advancing:submit"
	PermAdvancingApprove Permission = "advancing:approve"

	PermUsersManage Permission = "users:manage"

	PermVenueAccessAll             Permission = "venue:access:all"
	PermVenueAccessRestricted      Permission = "venue:access:restricted"
	PermVenueAccessProduction      Permission = "venue:access:production"
	PermVenueAccessManagement      Permission = "venue:access:management"
	PermVenueAccessCrew            Permission = "venue:access:crew"
	PermVenueAccessStaff           Permission = "venue:access:staff"
	PermVenueAccessVendor          Permission = "venue:access:vendor"
	PermVenueAccessPerformer       Permission = "venue:access:performer"
	PermVenueAccessAgent           Permission = "venue:access:agent"
	PermVenueAccessMedia           Permission = "venue:access:media"
	PermVenueAccessSponsor         Permission = "venue:access:sponsor"
	PermVenueAccessPartner         Permission = "venue:access:partner"
	PermVenueAccessIndustry        Permission = "venue:access:industry"
	PermVenueAccessIntern          Permission = "venue:access:intern"
	PermVenueAccessVolunteer       Permission = "venue:access:volunteer"
	PermVenueAccessBackstage       Permission = "venue:access:backstage"
	PermVenueAccessPlatinumVIP     Permission = "venue:access:platinum_vip"
	PermVenueAccessVIP             Permission = "venue:access:vip"
	PermVenueAccessGA              Permission = "venue:access:ga"
	PermVenueAccessGuest           Permission = "venue:access:guest"
	PermVenueAccessInfluencer      Permission = "venue:access:influencer"
	PermVenueAccessBrandAmbassador Permission = "venue:access:brand_ambassador"
	PermVenueAccessAffiliate       Permission = "venue:access:affiliate"

	PermBackstageAccess Permission = "backstage:access"
	PermGreenroomAccess Permission = "greenroom:access"
	PermVIPLoungeAccess Permission = "vip:lounge:access"
	PermPriorityEntry   Permission = "priority:entry"
	PermPhotoPitAccess  Permission = "photo:pit:access"

	PermReferralCreate Permission = "referral:create"
	PermCommissionView Permission = "commission:view"
	PermMediaKitAccess Permission = "media:kit:access"

	// PermImpersonationGrant is the explicit grant a pending impersonation needs.
	PermImpersonationGrant Permission = "impersonation:grant"
)

// PermissionSet is a set of permissions, or the universal set held by privileged roles.
// The zero value is the empty set. Sets are treated as immutable once built.
type PermissionSet struct {
	universal bool
	perms     map[Permission]struct{}
}

// NewPermissionSet returns a set containing perms.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := PermissionSet{perms: make(map[Permission]struct{}, len(perms))}
	for _, p := range perms {
		s.perms[p] = struct{}{}
	}
	return s
}

// AllPermissions returns the universal set: Has reports true for every permission,
// including ones no catalog table mentions.
func AllPermissions() PermissionSet {
	return PermissionSet{universal: true}
}

func (s PermissionSet) IsUniversal() bool { return s.universal }

func (s PermissionSet) Has(p Permission) bool {
	if s.universal {
		return true
	}
	_, ok := s.perms[p]
	return ok
}

// Len is the number of listed permissions; -1 for the universal set.
func (s PermissionSet) Len() int {
	if s.universal {
		return -1
	}
	return len(s.perms)
}

// Union returns a new set holding everything in s and other.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	if s.universal || other.universal {
		return AllPermissions()
	}
	out := PermissionSet{perms: make(map[Permission]struct{}, len(s.perms)+len(other.perms))}
	for p := range s.perms {
		out.perms[p] = struct{}{}
	}
	for p := range other.perms {
		out.perms[p] = struct{}{}
	}
	return out
}

// Sorted lists the permissions alphabetically. The universal set lists nothing.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s.perms))
	for p := range s.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
