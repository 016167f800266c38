package assignments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	mu      sync.Mutex
	recs    map[string]Record // by assignment id
	listErr error
	lists   int
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{recs: make(map[string]Record)}
}

func (f *fakeRepo) Create(ctx context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.recs[rec.ID]; exists {
		return errors.New("assignment already exists")
	}
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, principalID, id string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok || rec.PrincipalID != principalID {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeRepo) ListByPrincipal(ctx context.Context, principalID string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.filter(func(r Record) bool { return r.PrincipalID == principalID }), nil
}

func (f *fakeRepo) ListByEvent(ctx context.Context, eventID string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(r Record) bool { return eventID != "" && r.EventID == eventID }), nil
}

func (f *fakeRepo) filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range f.recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepo) SetExpiry(ctx context.Context, rec Record, expiresAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recs[rec.ID]
	if !ok {
		return ErrAssignmentNotFound
	}
	r.ExpiresAt = expiresAt
	f.recs[rec.ID] = r
	return nil
}

func (f *fakeRepo) Revoke(ctx context.Context, rec Record, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recs[rec.ID]
	if !ok {
		return ErrAssignmentNotFound
	}
	r.RevokedAt = &at
	f.recs[rec.ID] = r
	return nil
}

// put stores rec as-is, bypassing validation, to simulate old or stale rows.
func (f *fakeRepo) put(rec Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[rec.ID] = rec
}

func (f *fakeRepo) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// fakeCache is an in-memory RecordCache for tests.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]Record
	gens        map[string]int64
	getErr      error
	invalidated []string
}

var _ RecordCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]Record), gens: make(map[string]int64)}
}

func (c *fakeCache) Get(ctx context.Context, principalID string) ([]Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	recs, ok := c.entries[principalID]
	return recs, ok, nil
}

func (c *fakeCache) Generation(ctx context.Context, principalID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[principalID], nil
}

func (c *fakeCache) Set(ctx context.Context, principalID string, gen int64, recs []Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[principalID] != gen {
		return nil
	}
	c.entries[principalID] = recs
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, principalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[principalID]++
	delete(c.entries, principalID)
	c.invalidated = append(c.invalidated, principalID)
	return nil
}

func (c *fakeCache) has(principalID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[principalID]
	return ok
}

// racingRepo runs afterList once, right after the first ListByPrincipal read,
// to interleave a mutation between a cache-filling read and its cache write.
type racingRepo struct {
	*fakeRepo
	afterList func()
}

func (r *racingRepo) ListByPrincipal(ctx context.Context, principalID string) ([]Record, error) {
	recs, err := r.fakeRepo.ListByPrincipal(ctx, principalID)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return recs, err
}
