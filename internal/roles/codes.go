package roles

import (
	"fmt"
	"strings"
)

// PlatformRole identifies a platform-wide role. The platform is a field rather
// than a prefix of the code; String renders the stored form, e.g. "ATLVS_ADMIN".
type PlatformRole struct {
	Platform Platform
	Name     string
}

func (r PlatformRole) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Platform.prefix() + r.Name
}

func (r PlatformRole) IsZero() bool {
	return r.Platform == "" && r.Name == ""
}

// ParsePlatformRole splits a stored role code into platform and local name.
// It does not check the code against a catalog; use Catalog.LookupPlatformRole for that.
func ParsePlatformRole(code string) (PlatformRole, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, p := range AllPlatforms() {
		if name, ok := strings.CutPrefix(code, p.prefix()); ok && name != "" {
			return PlatformRole{Platform: p, Name: name}, nil
		}
	}
	return PlatformRole{}, fmt.Errorf("%q is not a platform role code", code)
}

func (r PlatformRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *PlatformRole) UnmarshalText(b []byte) error {
	parsed, err := ParsePlatformRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Built-in platform roles.
var (
	LegendSuperAdmin   = PlatformRole{Legend, "SUPER_ADMIN"}
	LegendAdmin        = PlatformRole{Legend, "ADMIN"}
	LegendDeveloper    = PlatformRole{Legend, "DEVELOPER"}
	LegendCollaborator = PlatformRole{Legend, "COLLABORATOR"}
	LegendSupport      = PlatformRole{Legend, "SUPPORT"}
	LegendIncognito    = PlatformRole{Legend, "INCOGNITO"}

	ATLVSSuperAdmin = PlatformRole{ATLVS, "SUPER_ADMIN"}
	ATLVSAdmin      = PlatformRole{ATLVS, "ADMIN"}
	ATLVSTeamMember = PlatformRole{ATLVS, "TEAM_MEMBER"}
	ATLVSViewer     = PlatformRole{ATLVS, "VIEWER"}

	COMPVSSAdmin        = PlatformRole{COMPVSS, "ADMIN"}
	COMPVSSTeamMember   = PlatformRole{COMPVSS, "TEAM_MEMBER"}
	COMPVSSCollaborator = PlatformRole{COMPVSS, "COLLABORATOR"}
	COMPVSSViewer       = PlatformRole{COMPVSS, "VIEWER"}

	GVTEWAYAdmin             = PlatformRole{GVTEWAY, "ADMIN"}
	GVTEWAYExperienceCreator = PlatformRole{GVTEWAY, "EXPERIENCE_CREATOR"}
	GVTEWAYVenueManager      = PlatformRole{GVTEWAY, "VENUE_MANAGER"}
	GVTEWAYArtistVerified    = PlatformRole{GVTEWAY, "ARTIST_VERIFIED"}
	GVTEWAYArtist            = PlatformRole{GVTEWAY, "ARTIST"}
	GVTEWAYMemberExtra       = PlatformRole{GVTEWAY, "MEMBER_EXTRA"}
	GVTEWAYMemberPlus        = PlatformRole{GVTEWAY, "MEMBER_PLUS"}
	GVTEWAYMember            = PlatformRole{GVTEWAY, "MEMBER"}
	GVTEWAYMemberGuest       = PlatformRole{GVTEWAY, "MEMBER_GUEST"}
	GVTEWAYAffiliate         = PlatformRole{GVTEWAY, "AFFILIATE"}
	GVTEWAYModerator         = PlatformRole{GVTEWAY, "MODERATOR"}
)

// EventRole is a role held for one specific event.
type EventRole string

// Built-in event roles.
const (
	// All platforms
	EventExecutive  EventRole = "EXECUTIVE"
	EventCoreAAA    EventRole = "CORE_AAA"
	EventAA         EventRole = "AA"
	EventProduction EventRole = "PRODUCTION"
	EventManagement EventRole = "MANAGEMENT"

	// COMPVSS (some also GVTEWAY)
	EventCrew        EventRole = "CREW"
	EventStaff       EventRole = "STAFF"
	EventVendor      EventRole = "VENDOR"
	EventEntertainer EventRole = "ENTERTAINER"
	EventArtist      EventRole = "ARTIST"
	EventAgent       EventRole = "AGENT"
	EventMedia       EventRole = "MEDIA"
	EventSponsor     EventRole = "SPONSOR"
	EventPartner     EventRole = "PARTNER"
	EventIndustry    EventRole = "INDUSTRY"
	EventIntern      EventRole = "INTERN"
	EventVolunteer   EventRole = "VOLUNTEER"

	// GVTEWAY
	EventBackstageL2     EventRole = "BACKSTAGE_L2"
	EventBackstageL1     EventRole = "BACKSTAGE_L1"
	EventPlatinumVIPL2   EventRole = "PLATINUM_VIP_L2"
	EventPlatinumVIPL1   EventRole = "PLATINUM_VIP_L1"
	EventVIPL3           EventRole = "VIP_L3"
	EventVIPL2           EventRole = "VIP_L2"
	EventVIPL1           EventRole = "VIP_L1"
	EventGAL5            EventRole = "GA_L5"
	EventGAL4            EventRole = "GA_L4"
	EventGAL3            EventRole = "GA_L3"
	EventGAL2            EventRole = "GA_L2"
	EventGAL1            EventRole = "GA_L1"
	EventGuest           EventRole = "GUEST"
	EventInfluencer      EventRole = "INFLUENCER"
	EventBrandAmbassador EventRole = "BRAND_AMBASSADOR"
	EventAffiliate       EventRole = "AFFILIATE"
)

// RoleRef is a stored role code resolved against a catalog: exactly one of the fields is set.
type RoleRef struct {
	Platform PlatformRole
	Event    EventRole
}

func (r RoleRef) IsEvent() bool { return r.Event != "" }

func (r RoleRef) String() string {
	if r.IsEvent() {
		return string(r.Event)
	}
	return r.Platform.String()
}
