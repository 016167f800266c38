package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHierarchyRank(t *testing.T) {
	c := Default()
	tests := []struct {
		role EventRole
		want int
	}{
		{EventExecutive, 1000},
		{EventCrew, 500},
		{EventMedia, 250},
		{EventGuest, 50},
		{EventGAL1, 60},
	}
	for _, tt := range tests {
		got, err := c.HierarchyRank(tt.role)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, tt.role)
	}

	_, err := c.HierarchyRank("ROADIE")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestPlatformHasAccess(t *testing.T) {
	c := Default()

	ok, err := c.PlatformHasAccess(EventCrew, COMPVSS)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.PlatformHasAccess(EventCrew, GVTEWAY)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.PlatformHasAccess(EventExecutive, ATLVS)
	require.NoError(t, err)
	require.True(t, ok)

	// Event roles never reach the privileged family.
	for _, er := range c.EventRoles() {
		ok, err := c.PlatformHasAccess(er, Legend)
		require.NoError(t, err)
		require.False(t, ok, er)
	}
}

func TestPlatformAccess_ReturnsCopy(t *testing.T) {
	c := Default()
	access, err := c.PlatformAccess(EventMedia)
	require.NoError(t, err)
	require.Equal(t, []Platform{COMPVSS, GVTEWAY}, access)
	access[0] = ATLVS

	again, err := c.PlatformAccess(EventMedia)
	require.NoError(t, err)
	require.Equal(t, []Platform{COMPVSS, GVTEWAY}, again)
}

func TestEventPermissions(t *testing.T) {
	c := Default()

	crew, err := c.EventPermissions(EventCrew)
	require.NoError(t, err)
	require.Equal(t, []Permission{PermAdvancingSubmit, PermBackstageAccess, PermTasksView, PermVenueAccessCrew}, crew.Sorted())

	media, err := c.EventPermissions(EventMedia)
	require.NoError(t, err)
	require.True(t, media.Has(PermPhotoPitAccess))
	require.False(t, media.Has(PermBackstageAccess))
}

func TestPlatformPermissions_OwnListOnly(t *testing.T) {
	c := Default()
	tm, err := c.PlatformPermissions(COMPVSSTeamMember)
	require.NoError(t, err)
	require.Equal(t, []Permission{PermAdvancingSubmit, PermEventsView, PermProjectsView, PermTasksView}, tm.Sorted())
	require.False(t, tm.Has(PermEventsCreate))
}
