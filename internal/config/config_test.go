package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test. envconfig treats a set but
// empty variable as a value, not as missing.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

var allVars = []string{
	"ADDR", "AWS_REGION", "DYNAMO_TABLE", "DYNAMODB_ENDPOINT", "DYNAMO_CREATE_TABLE",
	"REDIS_ADDR", "REDIS_PASSWORD", "ASSIGNMENT_CACHE_TTL", "JWT_PUBLIC_KEY_PATH", "ROLE_CATALOG_PATH",
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, allVars...)
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/session.pub")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Addr)
	require.Equal(t, "rolegate", c.DynamoTable)
	require.Equal(t, 5*time.Minute, c.AssignmentTTL)
	require.False(t, c.DynamoCreateTable)
	require.Empty(t, c.RoleCatalogPath)
}

func TestLoad_Overrides(t *testing.T) {
	unsetenv(t, allVars...)
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/session.pub")
	t.Setenv("ASSIGNMENT_CACHE_TTL", "30s")
	t.Setenv("DYNAMO_CREATE_TABLE", "true")
	t.Setenv("ROLE_CATALOG_PATH", "/etc/rolegate/catalog.yaml")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, c.AssignmentTTL)
	require.True(t, c.DynamoCreateTable)
	require.Equal(t, "/etc/rolegate/catalog.yaml", c.RoleCatalogPath)
}

func TestLoad_RequiresPublicKey(t *testing.T) {
	unsetenv(t, allVars...)
	_, err := Load()
	require.Error(t, err)
}

func TestObfuscateStr(t *testing.T) {
	require.Equal(t, "**", ObfuscateStr("ab"))
	require.Equal(t, "a****f", ObfuscateStr("abcdef"))
	require.Equal(t, "supe****word", ObfuscateStr("supersecretpassword"))
}

func TestLogConfigVars_MasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogConfigVars(logger, &Config{
		Addr:          ":9090",
		RedisPassword: "supersecretpassword",
		AssignmentTTL: time.Minute,
	})

	values := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry struct {
			Var   string `json:"var"`
			Value string `json:"value"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		values[entry.Var] = entry.Value
	}
	require.Equal(t, ":9090", values["ADDR"])
	require.Equal(t, "supe****word", values["REDIS_PASSWORD"])
	require.Equal(t, "1m0s", values["ASSIGNMENT_CACHE_TTL"])
	require.NotContains(t, buf.String(), "supersecretpassword")
}
