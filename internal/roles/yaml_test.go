package roles

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteDefinition_LoadsBackEquivalent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDefinition(&buf, DefaultDefinition()))
	require.Contains(t, buf.String(), "ATLVS_SUPER_ADMIN:")
	require.Contains(t, buf.String(), "level: god")

	def, err := LoadDefinition(&buf)
	require.NoError(t, err)
	c, err := NewCatalog(def)
	require.NoError(t, err)

	want := Default()
	require.Equal(t, want.PlatformRoles(), c.PlatformRoles())
	require.Equal(t, want.EventRoles(), c.EventRoles())
	for _, r := range want.PlatformRoles() {
		wantInh, _ := want.InheritedRoles(r)
		gotInh, err := c.InheritedRoles(r)
		require.NoError(t, err)
		require.Equal(t, wantInh, gotInh, r.String())
	}
}

const smallCatalog = `
platform_roles:
  COMPVSS_ADMIN:
    name: Admin
    platform: compvss
    level: admin
    inherits_from: [COMPVSS_VIEWER]
  COMPVSS_VIEWER:
    name: Viewer
    platform: compvss
    level: viewer
platform_role_permissions:
  COMPVSS_ADMIN: ["events:edit"]
  COMPVSS_VIEWER: ["events:view"]
event_roles: [CREW]
event_role_hierarchy:
  CREW: 500
event_role_platform_access:
  CREW: [compvss]
event_role_permissions:
  CREW: ["tasks:view"]
`

func TestLoadDefinition_Small(t *testing.T) {
	def, err := LoadDefinition(strings.NewReader(smallCatalog))
	require.NoError(t, err)
	c, err := NewCatalog(def)
	require.NoError(t, err)

	inh, err := c.InheritedRoles(COMPVSSAdmin)
	require.NoError(t, err)
	require.Equal(t, []PlatformRole{COMPVSSViewer}, inh)
}

func TestLoadDefinition_UnknownField_Rejected(t *testing.T) {
	_, err := LoadDefinition(strings.NewReader(smallCatalog + "event_role_perms:\n  CREW: []\n"))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadDefinition_BadLevel_Rejected(t *testing.T) {
	src := strings.Replace(smallCatalog, "level: viewer", "level: overlord", 1)
	_, err := LoadDefinition(strings.NewReader(src))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadDefinition_Empty(t *testing.T) {
	_, err := LoadDefinition(strings.NewReader(""))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallCatalog), 0o600))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, c.PlatformRoles(), 2)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
