package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/guregu/dynamo/v2"

	"github.com/sopatech/rolegate/internal/infra"
)

// Assignment rows: two-row pattern (no GSI).
// Principal row: PK = ROLES#PRINCIPAL#<principal_id>, SK = ASSIGNMENT#<assignment_id>.
// Event row (event roles only): PK = ROLES#EVENT#<event_id>, SK = PRINCIPAL#<principal_id>#<assignment_id>.
// Rows are never deleted; revoke sets revoked_at.

const (
	principalPKPrefix  = "ROLES#PRINCIPAL#"
	assignmentSKPrefix = "ASSIGNMENT#"
	eventPKPrefix      = "ROLES#EVENT#"
	eventSKPrefix      = "PRINCIPAL#"
)

// Record is a stored assignment. RoleCode is kept as stored; resolving it against
// the catalog is the service's job, so a stale code still loads for audit.
type Record struct {
	ID          string     `json:"id"`
	PrincipalID string     `json:"principal_id"`
	RoleCode    string     `json:"role_code"`
	EventID     string     `json:"event_id,omitempty"`
	GrantedAt   time.Time  `json:"granted_at"`
	GrantedBy   string     `json:"granted_by,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

type assignmentRow struct {
	PK          string `dynamo:"pk"`
	SK          string `dynamo:"sk"`
	ID          string `dynamo:"assignment_id"`
	PrincipalID string `dynamo:"principal_id"`
	RoleCode    string `dynamo:"role_code"`
	EventID     string `dynamo:"event_id,omitempty"`
	GrantedAt   string `dynamo:"granted_at"`
	GrantedBy   string `dynamo:"granted_by,omitempty"`
	ExpiresAt   string `dynamo:"expires_at,omitempty"`
	RevokedAt   string `dynamo:"revoked_at,omitempty"`
}

type Store struct {
	db        *infra.Dynamo
	tableName string
}

func NewStore(db *infra.Dynamo, tableName string) *Store {
	return &Store{db: db, tableName: tableName}
}

func (s *Store) tbl() dynamo.Table {
	return s.db.Table(s.tableName)
}

func principalPK(principalID string) string {
	return principalPKPrefix + principalID
}

func assignmentSK(id string) string {
	return assignmentSKPrefix + id
}

func eventPK(eventID string) string {
	return eventPKPrefix + eventID
}

func eventSK(principalID, id string) string {
	return eventSKPrefix + principalID + "#" + id
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseOptTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toRow(rec Record) assignmentRow {
	return assignmentRow{
		PK:          principalPK(rec.PrincipalID),
		SK:          assignmentSK(rec.ID),
		ID:          rec.ID,
		PrincipalID: rec.PrincipalID,
		RoleCode:    rec.RoleCode,
		EventID:     rec.EventID,
		GrantedAt:   formatTime(rec.GrantedAt),
		GrantedBy:   rec.GrantedBy,
		ExpiresAt:   formatOptTime(rec.ExpiresAt),
		RevokedAt:   formatOptTime(rec.RevokedAt),
	}
}

func (row assignmentRow) record() (Record, error) {
	granted, err := time.Parse(time.RFC3339Nano, row.GrantedAt)
	if err != nil {
		return Record{}, err
	}
	expires, err := parseOptTime(row.ExpiresAt)
	if err != nil {
		return Record{}, err
	}
	revoked, err := parseOptTime(row.RevokedAt)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:          row.ID,
		PrincipalID: row.PrincipalID,
		RoleCode:    row.RoleCode,
		EventID:     row.EventID,
		GrantedAt:   granted,
		GrantedBy:   row.GrantedBy,
		ExpiresAt:   expires,
		RevokedAt:   revoked,
	}, nil
}

// Create writes the principal row, and the event row for event assignments, in
// one transaction. Fails if the assignment id already exists.
func (s *Store) Create(ctx context.Context, rec Record) error {
	row := toRow(rec)
	tx := s.db.WriteTx().
		Put(s.tbl().Put(row).If("attribute_not_exists(pk)"))
	if rec.EventID != "" {
		idx := row
		idx.PK = eventPK(rec.EventID)
		idx.SK = eventSK(rec.PrincipalID, rec.ID)
		tx = tx.Put(s.tbl().Put(idx).If("attribute_not_exists(pk)"))
	}
	return tx.Run(ctx)
}

// Get returns the assignment, or nil if not found.
func (s *Store) Get(ctx context.Context, principalID, id string) (*Record, error) {
	var row assignmentRow
	err := s.tbl().Get("pk", principalPK(principalID)).Range("sk", dynamo.Equal, assignmentSK(id)).One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByPrincipal returns every assignment ever granted to the principal, including
// expired and revoked ones.
func (s *Store) ListByPrincipal(ctx context.Context, principalID string) ([]Record, error) {
	return s.list(ctx, s.tbl().Get("pk", principalPK(principalID)).Range("sk", dynamo.BeginsWith, assignmentSKPrefix))
}

// ListByEvent returns every event-role assignment for the event, from the event rows.
func (s *Store) ListByEvent(ctx context.Context, eventID string) ([]Record, error) {
	return s.list(ctx, s.tbl().Get("pk", eventPK(eventID)).Range("sk", dynamo.BeginsWith, eventSKPrefix))
}

func (s *Store) list(ctx context.Context, q *dynamo.Query) ([]Record, error) {
	var out []Record
	iter := q.Iter()
	for {
		var row assignmentRow
		if !iter.Next(ctx, &row) {
			break
		}
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetExpiry sets or (with nil) clears expires_at on both rows.
func (s *Store) SetExpiry(ctx context.Context, rec Record, expiresAt *time.Time) error {
	set := func(u *dynamo.Update) *dynamo.Update {
		if expiresAt == nil {
			return u.Remove("expires_at").If("attribute_exists(pk)")
		}
		return u.Set("expires_at", formatTime(*expiresAt)).If("attribute_exists(pk)")
	}
	return s.updateBoth(ctx, rec, set)
}

// Revoke stamps revoked_at on both rows. Revoking twice keeps the first timestamp
// and is not an error, so a revoke that loses a race still succeeds.
func (s *Store) Revoke(ctx context.Context, rec Record, at time.Time) error {
	set := func(u *dynamo.Update) *dynamo.Update {
		return u.Set("revoked_at", formatTime(at)).If("attribute_exists(pk) AND attribute_not_exists(revoked_at)")
	}
	err := s.updateBoth(ctx, rec, set)
	if err == nil || !dynamo.IsCondCheckFailed(err) {
		return err
	}
	cur, getErr := s.Get(ctx, rec.PrincipalID, rec.ID)
	if getErr != nil {
		return getErr
	}
	if cur == nil {
		return ErrAssignmentNotFound
	}
	if cur.RevokedAt != nil {
		return nil
	}
	return err
}

func (s *Store) updateBoth(ctx context.Context, rec Record, apply func(*dynamo.Update) *dynamo.Update) error {
	tx := s.db.WriteTx().
		Update(apply(s.tbl().Update("pk", principalPK(rec.PrincipalID)).Range("sk", assignmentSK(rec.ID))))
	if rec.EventID != "" {
		tx = tx.Update(apply(s.tbl().Update("pk", eventPK(rec.EventID)).Range("sk", eventSK(rec.PrincipalID, rec.ID))))
	}
	return tx.Run(ctx)
}
