package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInheritedRoles_Transitive(t *testing.T) {
	c := Default()

	inh, err := c.InheritedRoles(ATLVSSuperAdmin)
	require.NoError(t, err)
	require.ElementsMatch(t, []PlatformRole{ATLVSAdmin, ATLVSTeamMember, ATLVSViewer}, inh)

	inh, err = c.InheritedRoles(GVTEWAYArtistVerified)
	require.NoError(t, err)
	require.ElementsMatch(t, []PlatformRole{GVTEWAYArtist, GVTEWAYMember}, inh)
}

func TestInheritedRoles_NoParents_Empty(t *testing.T) {
	c := Default()
	for _, r := range []PlatformRole{ATLVSViewer, COMPVSSViewer, GVTEWAYMember, GVTEWAYAdmin, GVTEWAYModerator} {
		inh, err := c.InheritedRoles(r)
		require.NoError(t, err)
		require.Empty(t, inh, r.String())
	}
}

func TestInheritedRoles_NeverContainsSelf(t *testing.T) {
	c := Default()
	for _, r := range c.PlatformRoles() {
		inh, err := c.InheritedRoles(r)
		require.NoError(t, err)
		require.NotContains(t, inh, r)
	}
}

func TestInheritedRoles_LegendCoversATLVS(t *testing.T) {
	c := Default()
	for _, r := range []PlatformRole{LegendSuperAdmin, LegendAdmin, LegendDeveloper, LegendIncognito} {
		inh, err := c.InheritedRoles(r)
		require.NoError(t, err)
		require.ElementsMatch(t, []PlatformRole{ATLVSSuperAdmin, ATLVSAdmin, ATLVSTeamMember, ATLVSViewer}, inh, r.String())
	}
	for _, r := range []PlatformRole{LegendCollaborator, LegendSupport} {
		inh, err := c.InheritedRoles(r)
		require.NoError(t, err)
		require.ElementsMatch(t, []PlatformRole{ATLVSAdmin, ATLVSTeamMember, ATLVSViewer}, inh, r.String())
	}
}

func TestInheritedRoles_OnlyLegendCrossesPlatforms(t *testing.T) {
	c := Default()
	for _, r := range c.PlatformRoles() {
		inh, err := c.InheritedRoles(r)
		require.NoError(t, err)
		for _, a := range inh {
			if r.Platform == Legend {
				require.Contains(t, []Platform{Legend, ATLVS}, a.Platform)
				continue
			}
			require.Equal(t, r.Platform, a.Platform, "%s inherits %s", r, a)
		}
	}
}

func TestInheritedRoles_Unknown(t *testing.T) {
	_, err := Default().InheritedRoles(PlatformRole{Platform: ATLVS, Name: "INTERN"})
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestInherits(t *testing.T) {
	c := Default()

	ok, err := c.Inherits(LegendSupport, ATLVSViewer)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Inherits(LegendSupport, ATLVSSuperAdmin)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.Inherits(ATLVSViewer, ATLVSViewer)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFindCycle_Diamond_NotACycle(t *testing.T) {
	a := PlatformRole{GVTEWAY, "A"}
	b := PlatformRole{GVTEWAY, "B"}
	cc := PlatformRole{GVTEWAY, "C"}
	d := PlatformRole{GVTEWAY, "D"}
	graph := map[PlatformRole]PlatformRoleMetadata{
		a:  {InheritsFrom: []PlatformRole{b, cc}},
		b:  {InheritsFrom: []PlatformRole{d}},
		cc: {InheritsFrom: []PlatformRole{d}},
		d:  {},
	}
	require.Nil(t, findCycle(graph))
	require.Equal(t, []PlatformRole{b, cc, d}, reachable(graph, a))
}

func TestFindCycle_ReportsPath(t *testing.T) {
	a := PlatformRole{COMPVSS, "A"}
	b := PlatformRole{COMPVSS, "B"}
	graph := map[PlatformRole]PlatformRoleMetadata{
		a: {InheritsFrom: []PlatformRole{b}},
		b: {InheritsFrom: []PlatformRole{a}},
	}
	require.Equal(t, []PlatformRole{a, b, a}, findCycle(graph))
	// reachable still terminates and excludes the start.
	require.Equal(t, []PlatformRole{b}, reachable(graph, a))
}
