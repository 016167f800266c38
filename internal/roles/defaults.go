package roles

import "sync"

// legendEmailDomain is the staff domain every Legend role is restricted to.
const legendEmailDomain = "@ghxstship.pro"

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. It is built and validated once; the
// built-in tables are covered by tests, so a failure here is a programming error.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewCatalog(DefaultDefinition())
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// DefaultDefinition returns a fresh copy of the built-in tables.
func DefaultDefinition() Definition {
	return Definition{
		PlatformRoles:           defaultPlatformRoles(),
		PlatformRolePermissions: defaultPlatformRolePermissions(),
		EventRoles:              defaultEventRoles(),
		EventRoleHierarchy:      defaultEventRoleHierarchy(),
		EventRolePlatformAccess: defaultEventRolePlatformAccess(),
		EventRolePermissions:    defaultEventRolePermissions(),
	}
}

func codes(roles ...PlatformRole) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}

func defaultPlatformRoles() map[string]PlatformRoleDef {
	legend := func(name, description string, parent PlatformRole, impersonate, needsGrant bool) PlatformRoleDef {
		return PlatformRoleDef{
			DisplayName:                     name,
			Description:                     description,
			Platform:                        Legend,
			Level:                           LevelGod,
			InheritsFrom:                    codes(parent),
			RequiresEmailDomain:             legendEmailDomain,
			CanImpersonate:                  impersonate,
			RequiresPermissionToImpersonate: needsGrant,
		}
	}
	role := func(p Platform, l Level, name, description string, parents ...PlatformRole) PlatformRoleDef {
		return PlatformRoleDef{DisplayName: name, Description: description, Platform: p, Level: l, InheritsFrom: codes(parents...)}
	}

	return map[string]PlatformRoleDef{
		LegendSuperAdmin.String():   legend("Legend Super Admin", "Absolute platform control across all systems", ATLVSSuperAdmin, true, false),
		LegendAdmin.String():        legend("Legend Admin", "Internal product management with cross-app access", ATLVSSuperAdmin, true, false),
		LegendDeveloper.String():    legend("Legend Developer", "Full repository access, internal product team", ATLVSSuperAdmin, true, false),
		LegendCollaborator.String(): legend("Legend Collaborator", "External scoped full repo access", ATLVSAdmin, false, false),
		LegendSupport.String():      legend("Legend Support", "Tech support with conditional user impersonation", ATLVSAdmin, true, true),
		LegendIncognito.String():    legend("Legend Incognito", "Stealth mode operations with unrestricted impersonation", ATLVSSuperAdmin, true, false),

		ATLVSSuperAdmin.String(): role(ATLVS, LevelAdmin, "ATLVS Super Admin", "Full system administration and configuration", ATLVSAdmin),
		ATLVSAdmin.String():      role(ATLVS, LevelAdmin, "ATLVS Admin", "Administrative access to business operations", ATLVSTeamMember),
		ATLVSTeamMember.String(): role(ATLVS, LevelMember, "ATLVS Team Member", "Work on assigned tasks and projects", ATLVSViewer),
		ATLVSViewer.String():     role(ATLVS, LevelViewer, "ATLVS Viewer", "Read-only access to business data"),

		COMPVSSAdmin.String():        role(COMPVSS, LevelAdmin, "COMPVSS Admin", "Full administrative access to production operations", COMPVSSTeamMember),
		COMPVSSTeamMember.String():   role(COMPVSS, LevelMember, "COMPVSS Team Member", "Work on assigned events and productions", COMPVSSViewer),
		COMPVSSCollaborator.String(): role(COMPVSS, LevelMember, "COMPVSS Collaborator", "Limited event access for external collaborators", COMPVSSViewer),
		COMPVSSViewer.String():       role(COMPVSS, LevelViewer, "COMPVSS Viewer", "Read-only access to production data"),

		GVTEWAYAdmin.String():             role(GVTEWAY, LevelAdmin, "GVTEWAY Admin", "Full platform administration"),
		GVTEWAYExperienceCreator.String(): role(GVTEWAY, LevelManager, "Experience Creator", "Create and manage experiences/events", GVTEWAYMember),
		GVTEWAYVenueManager.String():      role(GVTEWAY, LevelManager, "Venue Manager", "Manage venue profiles and operations", GVTEWAYMember),
		GVTEWAYArtistVerified.String():    role(GVTEWAY, LevelMember, "Verified Artist", "Verified artist with enhanced features", GVTEWAYArtist),
		GVTEWAYArtist.String():            role(GVTEWAY, LevelMember, "Artist", "Artist profile and fan engagement", GVTEWAYMember),
		GVTEWAYMemberExtra.String():       role(GVTEWAY, LevelMember, "Member Extra", "Premium membership with exclusive benefits", GVTEWAYMemberPlus),
		GVTEWAYMemberPlus.String():        role(GVTEWAY, LevelMember, "Member Plus", "Enhanced membership with early access", GVTEWAYMember),
		GVTEWAYMember.String():            role(GVTEWAY, LevelMember, "Member", "Standard member access"),
		GVTEWAYMemberGuest.String():       role(GVTEWAY, LevelMember, "Guest Member", "Temporary guest access", GVTEWAYMember),
		GVTEWAYAffiliate.String():         role(GVTEWAY, LevelMember, "Affiliate", "Affiliate marketing and referrals", GVTEWAYMember),
		GVTEWAYModerator.String():         role(GVTEWAY, LevelManager, "Moderator", "Content moderation and community management"),
	}
}

var legendFullAccess = []Permission{
	PermEventsCreate, PermEventsEdit, PermEventsDelete, PermEventsView,
	PermTicketsManage, PermOrdersView, PermOrdersRefund,
	PermProjectsCreate, PermProjectsEdit, PermProjectsView,
	PermTasksAssign, PermTasksView,
	PermBudgetsManage, PermBudgetsView,
	PermAdvancingSubmit, PermAdvancingApprove,
	PermUsersManage,
}

// defaultPlatformRolePermissions lists what each role grants on its own. Legend
// roles are universal regardless; their lists document intent for the admin UI.
func defaultPlatformRolePermissions() map[string][]Permission {
	return map[string][]Permission{
		LegendSuperAdmin.String(): legendFullAccess,
		LegendAdmin.String():      legendFullAccess,
		LegendDeveloper.String():  legendFullAccess,
		LegendCollaborator.String(): {
			PermEventsCreate, PermEventsEdit, PermEventsView,
			PermProjectsCreate, PermProjectsEdit, PermProjectsView,
			PermTasksAssign, PermTasksView, PermBudgetsView,
		},
		LegendSupport.String():   {PermEventsView, PermProjectsView, PermTasksView, PermBudgetsView, PermOrdersView},
		LegendIncognito.String(): legendFullAccess,

		// Super admins are the only non-Legend holders of the explicit impersonation grant.
		ATLVSSuperAdmin.String(): {
			PermProjectsCreate, PermProjectsEdit, PermProjectsView,
			PermTasksAssign, PermTasksView, PermBudgetsManage, PermBudgetsView,
			PermUsersManage, PermImpersonationGrant,
		},
		ATLVSAdmin.String(): {
			PermProjectsCreate, PermProjectsEdit, PermProjectsView,
			PermTasksAssign, PermTasksView, PermBudgetsManage, PermBudgetsView,
		},
		ATLVSTeamMember.String(): {PermProjectsView, PermTasksView, PermBudgetsView},
		ATLVSViewer.String():     {PermProjectsView, PermTasksView},

		COMPVSSAdmin.String(): {
			PermEventsCreate, PermEventsEdit, PermEventsView,
			PermProjectsCreate, PermProjectsEdit, PermProjectsView,
			PermTasksAssign, PermTasksView, PermAdvancingApprove, PermBudgetsView,
		},
		COMPVSSTeamMember.String():   {PermEventsView, PermProjectsView, PermTasksView, PermAdvancingSubmit},
		COMPVSSCollaborator.String(): {PermEventsView, PermProjectsView, PermTasksView},
		COMPVSSViewer.String():       {PermEventsView, PermProjectsView},

		GVTEWAYAdmin.String(): {
			PermEventsCreate, PermEventsEdit, PermEventsDelete, PermEventsView,
			PermTicketsManage, PermOrdersView, PermOrdersRefund, PermUsersManage,
		},
		GVTEWAYExperienceCreator.String(): {PermEventsCreate, PermEventsEdit, PermEventsView, PermTicketsManage, PermOrdersView},
		GVTEWAYVenueManager.String():      {PermEventsView, PermVenueAccessAll},
		GVTEWAYArtistVerified.String():    {PermEventsView, PermOrdersViewOwn},
		GVTEWAYArtist.String():            {PermEventsView, PermOrdersViewOwn},
		GVTEWAYMemberExtra.String():       {PermEventsView, PermOrdersViewOwn},
		GVTEWAYMemberPlus.String():        {PermEventsView, PermOrdersViewOwn},
		GVTEWAYMember.String():            {PermEventsView, PermOrdersViewOwn},
		GVTEWAYMemberGuest.String():       {PermEventsView},
		GVTEWAYAffiliate.String():         {PermEventsView, PermOrdersViewOwn, PermReferralCreate, PermCommissionView},
		GVTEWAYModerator.String():         {PermEventsView, PermUsersManage},
	}
}

func defaultEventRoles() []EventRole {
	return []EventRole{
		EventExecutive, EventCoreAAA, EventAA, EventProduction, EventManagement,
		EventCrew, EventStaff, EventVendor, EventEntertainer, EventArtist, EventAgent,
		EventMedia, EventSponsor, EventPartner, EventIndustry, EventIntern, EventVolunteer,
		EventBackstageL2, EventBackstageL1, EventPlatinumVIPL2, EventPlatinumVIPL1,
		EventVIPL3, EventVIPL2, EventVIPL1,
		EventGAL5, EventGAL4, EventGAL3, EventGAL2, EventGAL1,
		EventGuest, EventInfluencer, EventBrandAmbassador, EventAffiliate,
	}
}

func defaultEventRoleHierarchy() map[EventRole]int {
	return map[EventRole]int{
		EventExecutive:  1000,
		EventCoreAAA:    900,
		EventAA:         800,
		EventProduction: 700,
		EventManagement: 600,

		EventCrew:        500,
		EventStaff:       450,
		EventVendor:      400,
		EventEntertainer: 350,
		EventArtist:      350,
		EventAgent:       300,
		EventMedia:       250,
		EventSponsor:     200,
		EventPartner:     200,
		EventIndustry:    150,
		EventIntern:      100,
		EventVolunteer:   50,

		EventBackstageL2:     500,
		EventBackstageL1:     450,
		EventPlatinumVIPL2:   400,
		EventPlatinumVIPL1:   350,
		EventVIPL3:           300,
		EventVIPL2:           250,
		EventVIPL1:           200,
		EventGAL5:            150,
		EventGAL4:            120,
		EventGAL3:            100,
		EventGAL2:            80,
		EventGAL1:            60,
		EventGuest:           50,
		EventInfluencer:      150,
		EventBrandAmbassador: 120,
		EventAffiliate:       100,
	}
}

func defaultEventRolePlatformAccess() map[EventRole][]Platform {
	all := []Platform{ATLVS, COMPVSS, GVTEWAY}
	compvss := []Platform{COMPVSS}
	dual := []Platform{COMPVSS, GVTEWAY}
	gvteway := []Platform{GVTEWAY}

	return map[EventRole][]Platform{
		EventExecutive:  all,
		EventCoreAAA:    all,
		EventAA:         all,
		EventProduction: all,
		EventManagement: all,

		EventCrew:      compvss,
		EventStaff:     compvss,
		EventVendor:    compvss,
		EventAgent:     compvss,
		EventIndustry:  compvss,
		EventIntern:    compvss,
		EventVolunteer: compvss,

		EventEntertainer: dual,
		EventArtist:      dual,
		EventMedia:       dual,
		EventSponsor:     dual,
		EventPartner:     dual,

		EventBackstageL2:     gvteway,
		EventBackstageL1:     gvteway,
		EventPlatinumVIPL2:   gvteway,
		EventPlatinumVIPL1:   gvteway,
		EventVIPL3:           gvteway,
		EventVIPL2:           gvteway,
		EventVIPL1:           gvteway,
		EventGAL5:            gvteway,
		EventGAL4:            gvteway,
		EventGAL3:            gvteway,
		EventGAL2:            gvteway,
		EventGAL1:            gvteway,
		EventGuest:           gvteway,
		EventInfluencer:      gvteway,
		EventBrandAmbassador: gvteway,
		EventAffiliate:       gvteway,
	}
}

func defaultEventRolePermissions() map[EventRole][]Permission {
	return map[EventRole][]Permission{
		EventExecutive: {
			PermEventsCreate, PermEventsEdit, PermEventsDelete,
			PermTicketsManage, PermOrdersView, PermOrdersRefund,
			PermAdvancingSubmit, PermAdvancingApprove,
			PermProjectsCreate, PermProjectsEdit, PermTasksAssign,
			PermBudgetsManage, PermUsersManage,
			PermVenueAccessAll, PermBackstageAccess,
		},
		EventCoreAAA: {
			PermEventsCreate, PermEventsEdit, PermTicketsManage, PermOrdersView,
			PermAdvancingApprove, PermProjectsCreate, PermProjectsEdit, PermTasksAssign,
			PermBudgetsManage, PermVenueAccessAll, PermBackstageAccess,
		},
		EventAA: {
			PermEventsEdit, PermTicketsManage, PermOrdersView, PermAdvancingSubmit,
			PermProjectsEdit, PermTasksAssign, PermBudgetsView,
			PermVenueAccessRestricted, PermBackstageAccess,
		},
		EventProduction: {
			PermEventsView, PermAdvancingSubmit, PermProjectsView, PermTasksView,
			PermVenueAccessProduction, PermBackstageAccess,
		},
		EventManagement: {
			PermEventsView, PermOrdersView, PermProjectsView, PermBudgetsView,
			PermVenueAccessManagement,
		},
		EventCrew:        {PermAdvancingSubmit, PermTasksView, PermVenueAccessCrew, PermBackstageAccess},
		EventStaff:       {PermAdvancingSubmit, PermTasksView, PermVenueAccessStaff},
		EventVendor:      {PermAdvancingSubmit, PermOrdersViewOwn, PermVenueAccessVendor},
		EventEntertainer: {PermEventsView, PermVenueAccessPerformer, PermBackstageAccess, PermGreenroomAccess},
		EventArtist:      {PermEventsView, PermVenueAccessPerformer, PermBackstageAccess, PermGreenroomAccess},
		EventAgent:       {PermEventsView, PermOrdersViewClient, PermVenueAccessAgent},
		EventMedia:       {PermEventsView, PermVenueAccessMedia, PermPhotoPitAccess},
		EventSponsor:     {PermEventsView, PermVenueAccessSponsor},
		EventPartner:     {PermEventsView, PermVenueAccessPartner},
		EventIndustry:    {PermEventsView, PermVenueAccessIndustry},
		EventIntern:      {PermTasksView, PermVenueAccessIntern},
		EventVolunteer:   {PermTasksView, PermVenueAccessVolunteer},

		EventBackstageL2: {
			PermEventsView, PermOrdersViewOwn, PermVenueAccessBackstage,
			PermBackstageAccess, PermGreenroomAccess, PermVIPLoungeAccess,
		},
		EventBackstageL1: {PermEventsView, PermOrdersViewOwn, PermVenueAccessBackstage, PermBackstageAccess},
		EventPlatinumVIPL2: {
			PermEventsView, PermOrdersViewOwn, PermVenueAccessPlatinumVIP,
			PermVIPLoungeAccess, PermPriorityEntry,
		},
		EventPlatinumVIPL1:   {PermEventsView, PermOrdersViewOwn, PermVenueAccessPlatinumVIP, PermVIPLoungeAccess},
		EventVIPL3:           {PermEventsView, PermOrdersViewOwn, PermVenueAccessVIP, PermVIPLoungeAccess},
		EventVIPL2:           {PermEventsView, PermOrdersViewOwn, PermVenueAccessVIP},
		EventVIPL1:           {PermEventsView, PermOrdersViewOwn, PermVenueAccessVIP},
		EventGAL5:            {PermEventsView, PermOrdersViewOwn, PermVenueAccessGA, PermPriorityEntry},
		EventGAL4:            {PermEventsView, PermOrdersViewOwn, PermVenueAccessGA},
		EventGAL3:            {PermEventsView, PermOrdersViewOwn, PermVenueAccessGA},
		EventGAL2:            {PermEventsView, PermOrdersViewOwn, PermVenueAccessGA},
		EventGAL1:            {PermEventsView, PermOrdersViewOwn, PermVenueAccessGA},
		EventGuest:           {PermEventsView, PermVenueAccessGuest},
		EventInfluencer:      {PermEventsView, PermOrdersViewOwn, PermVenueAccessInfluencer, PermMediaKitAccess},
		EventBrandAmbassador: {PermEventsView, PermOrdersViewOwn, PermVenueAccessBrandAmbassador, PermReferralCreate},
		EventAffiliate:       {PermEventsView, PermOrdersViewOwn, PermVenueAccessAffiliate, PermReferralCreate, PermCommissionView},
	}
}
