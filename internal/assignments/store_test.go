package assignments

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sopatech/rolegate/internal/infra"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newTestStore needs DynamoDB Local (DYNAMODB_ENDPOINT, e.g. http://localhost:8001).
func newTestStore(t *testing.T) *Store {
	t.Helper()
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT not set")
	}
	ctx := context.Background()
	db, err := infra.NewDynamo(ctx, getEnv("AWS_REGION", "us-east-1"), endpoint)
	require.NoError(t, err)
	table := getEnv("DYNAMO_TABLE", "rolegate-test")
	require.NoError(t, db.EnsureTable(ctx, table))
	return NewStore(db, table)
}

func TestStore_CreateGetList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	principal := "p-" + uuid.NewString()
	event := "evt-" + uuid.NewString()
	granted := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	expires := granted.Add(48 * time.Hour)

	platform := Record{ID: uuid.NewString(), PrincipalID: principal, RoleCode: "ATLVS_ADMIN", GrantedAt: granted, GrantedBy: "admin"}
	eventRec := Record{ID: uuid.NewString(), PrincipalID: principal, RoleCode: "CREW", EventID: event, GrantedAt: granted, ExpiresAt: &expires}
	require.NoError(t, s.Create(ctx, platform))
	require.NoError(t, s.Create(ctx, eventRec))
	require.Error(t, s.Create(ctx, platform), "duplicate id must fail the conditional put")

	got, err := s.Get(ctx, principal, eventRec.ID)
	require.NoError(t, err)
	require.Equal(t, eventRec, *got)

	missing, err := s.Get(ctx, principal, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	list, err := s.ListByPrincipal(ctx, principal)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byEvent, err := s.ListByEvent(ctx, event)
	require.NoError(t, err)
	require.Equal(t, []Record{eventRec}, byEvent)
}

func TestStore_SetExpiryAndRevoke(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	principal := "p-" + uuid.NewString()
	event := "evt-" + uuid.NewString()
	rec := Record{ID: uuid.NewString(), PrincipalID: principal, RoleCode: "MEDIA", EventID: event, GrantedAt: time.Now().UTC()}
	require.NoError(t, s.Create(ctx, rec))

	later := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetExpiry(ctx, rec, &later))
	got, err := s.Get(ctx, principal, rec.ID)
	require.NoError(t, err)
	require.Equal(t, later, *got.ExpiresAt)

	require.NoError(t, s.SetExpiry(ctx, rec, nil))
	got, err = s.Get(ctx, principal, rec.ID)
	require.NoError(t, err)
	require.Nil(t, got.ExpiresAt)

	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Revoke(ctx, rec, at))
	require.NoError(t, s.Revoke(ctx, rec, at.Add(time.Hour)), "a second revoke succeeds")
	got, err = s.Get(ctx, principal, rec.ID)
	require.NoError(t, err)
	require.Equal(t, at, *got.RevokedAt)

	missing := Record{ID: uuid.NewString(), PrincipalID: principal, RoleCode: "MEDIA", GrantedAt: time.Now().UTC()}
	require.ErrorIs(t, s.Revoke(ctx, missing, at), ErrAssignmentNotFound)

	byEvent, err := s.ListByEvent(ctx, event)
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	require.Equal(t, at, *byEvent[0].RevokedAt)
}

// newTestCache needs a Redis server (REDIS_ADDR).
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := infra.NewRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, time.Minute)
}

func TestCache_SetGetInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	principal := "p-" + uuid.NewString()

	_, ok, err := c.Get(ctx, principal)
	require.NoError(t, err)
	require.False(t, ok)

	recs := []Record{{ID: "a1", PrincipalID: principal, RoleCode: "ATLVS_VIEWER", GrantedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}}
	gen, err := c.Generation(ctx, principal)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, principal, gen, recs))
	got, ok, err := c.Get(ctx, principal)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, recs, got)

	require.NoError(t, c.Set(ctx, principal, gen, nil))
	got, ok, err = c.Get(ctx, principal)
	require.NoError(t, err)
	require.True(t, ok, "an empty history is still a cache hit")
	require.Empty(t, got)

	require.NoError(t, c.Invalidate(ctx, principal))
	_, ok, err = c.Get(ctx, principal)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_SetAfterInvalidateIsDropped(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	principal := "p-" + uuid.NewString()

	gen, err := c.Generation(ctx, principal)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, principal))

	recs := []Record{{ID: "a1", PrincipalID: principal, RoleCode: "ATLVS_ADMIN", GrantedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}}
	require.NoError(t, c.Set(ctx, principal, gen, recs))
	_, ok, err := c.Get(ctx, principal)
	require.NoError(t, err)
	require.False(t, ok)

	next, err := c.Generation(ctx, principal)
	require.NoError(t, err)
	require.Equal(t, gen+1, next)
	require.NoError(t, c.Set(ctx, principal, next, recs))
	_, ok, err = c.Get(ctx, principal)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCache_DefaultTTL(t *testing.T) {
	require.Equal(t, DefaultCacheTTL, NewCache(nil, 0).ttl)
}
