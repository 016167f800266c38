package assignments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sopatech/rolegate/internal/authz"
	"github.com/sopatech/rolegate/internal/roles"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentRevoked  = errors.New("assignment already revoked")
	ErrPrincipalRequired  = errors.New("principal id required")
)

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, rec Record) error
	Get(ctx context.Context, principalID, id string) (*Record, error)
	ListByPrincipal(ctx context.Context, principalID string) ([]Record, error)
	ListByEvent(ctx context.Context, eventID string) ([]Record, error)
	SetExpiry(ctx context.Context, rec Record, expiresAt *time.Time) error
	Revoke(ctx context.Context, rec Record, at time.Time) error
}

// RecordCache is an optional read-through cache of a principal's records. *Cache implements it.
// Set must drop the write when the principal has been invalidated since gen was read.
type RecordCache interface {
	Get(ctx context.Context, principalID string) ([]Record, bool, error)
	Generation(ctx context.Context, principalID string) (int64, error)
	Set(ctx context.Context, principalID string, gen int64, recs []Record) error
	Invalidate(ctx context.Context, principalID string) error
}

type Service interface {
	Grant(ctx context.Context, req GrantRequest) (*Record, error)
	Revoke(ctx context.Context, principalID, assignmentID, actorID string) (*Record, error)
	Extend(ctx context.Context, principalID, assignmentID string, expiresAt *time.Time) (*Record, error)
	List(ctx context.Context, principalID string) ([]Record, error)
	ListEvent(ctx context.Context, eventID string) ([]Record, error)
	Subject(ctx context.Context, principalID, eventID, correlationID string) (authz.Subject, error)
}

type GrantRequest struct {
	PrincipalID    string
	PrincipalEmail string
	RoleCode       string
	EventID        string
	ExpiresAt      *time.Time
	GrantedBy      string
}

type service struct {
	repo      Repository
	cache     RecordCache
	catalog   *roles.Catalog
	validator *authz.Validator
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*service)

// WithCache puts cache in front of the repository for Subject lookups.
func WithCache(cache RecordCache) Option {
	return func(s *service) { s.cache = cache }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

func NewService(repo Repository, catalog *roles.Catalog, opts ...Option) Service {
	s := &service{
		repo:      repo,
		catalog:   catalog,
		validator: authz.NewValidator(catalog),
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolve turns a stored record into an Assignment. An unknown role code is an
// integrity error, never a silent drop.
func (s *service) resolve(rec Record) (authz.Assignment, error) {
	ref, err := s.catalog.ParseRole(rec.RoleCode)
	if err != nil {
		return authz.Assignment{}, err
	}
	return authz.Assignment{
		ID:           rec.ID,
		PrincipalID:  rec.PrincipalID,
		PlatformRole: ref.Platform,
		EventRole:    ref.Event,
		EventID:      rec.EventID,
		GrantedAt:    rec.GrantedAt,
		GrantedBy:    rec.GrantedBy,
		ExpiresAt:    rec.ExpiresAt,
		RevokedAt:    rec.RevokedAt,
	}, nil
}

func (s *service) Grant(ctx context.Context, req GrantRequest) (*Record, error) {
	principalID := strings.TrimSpace(req.PrincipalID)
	if principalID == "" {
		return nil, ErrPrincipalRequired
	}
	ref, err := s.catalog.ParseRole(req.RoleCode)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	a := authz.Assignment{
		ID:           uuid.NewString(),
		PrincipalID:  principalID,
		PlatformRole: ref.Platform,
		EventRole:    ref.Event,
		EventID:      strings.TrimSpace(req.EventID),
		GrantedAt:    now,
		GrantedBy:    req.GrantedBy,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := s.validator.ValidateGrant(a, req.PrincipalEmail, now); err != nil {
		return nil, err
	}

	rec := Record{
		ID:          a.ID,
		PrincipalID: a.PrincipalID,
		RoleCode:    a.RoleCode(),
		EventID:     a.EventID,
		GrantedAt:   a.GrantedAt,
		GrantedBy:   a.GrantedBy,
		ExpiresAt:   a.ExpiresAt,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.invalidate(ctx, principalID)
	return &rec, nil
}

func (s *service) get(ctx context.Context, principalID, assignmentID string) (*Record, error) {
	rec, err := s.repo.Get(ctx, principalID, assignmentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAssignmentNotFound
	}
	return rec, nil
}

// Revoke is idempotent: revoking an already revoked assignment returns it unchanged.
func (s *service) Revoke(ctx context.Context, principalID, assignmentID, actorID string) (*Record, error) {
	rec, err := s.get(ctx, principalID, assignmentID)
	if err != nil {
		return nil, err
	}
	if rec.RevokedAt != nil {
		return rec, nil
	}
	now := s.now().UTC()
	if err := s.repo.Revoke(ctx, *rec, now); err != nil {
		return nil, err
	}
	rec.RevokedAt = &now
	s.invalidate(ctx, principalID)
	s.logger.InfoContext(ctx, "assignment revoked",
		slog.String("principal_id", principalID),
		slog.String("assignment_id", assignmentID),
		slog.String("role_code", rec.RoleCode),
		slog.String("actor_id", actorID),
	)
	return rec, nil
}

// Extend moves or (with nil) clears the expiry of a live assignment.
func (s *service) Extend(ctx context.Context, principalID, assignmentID string, expiresAt *time.Time) (*Record, error) {
	rec, err := s.get(ctx, principalID, assignmentID)
	if err != nil {
		return nil, err
	}
	if rec.RevokedAt != nil {
		return nil, ErrAssignmentRevoked
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, &authz.AssignmentError{Role: rec.RoleCode, Reason: authz.ErrExpiryNotInFuture}
	}
	if err := s.repo.SetExpiry(ctx, *rec, expiresAt); err != nil {
		return nil, err
	}
	rec.ExpiresAt = expiresAt
	s.invalidate(ctx, principalID)
	return rec, nil
}

// List returns the principal's full history, including expired and revoked rows.
func (s *service) List(ctx context.Context, principalID string) ([]Record, error) {
	return s.repo.ListByPrincipal(ctx, principalID)
}

func (s *service) ListEvent(ctx context.Context, eventID string) ([]Record, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

// Subject builds what the principal holds right now for eventID.
func (s *service) Subject(ctx context.Context, principalID, eventID, correlationID string) (authz.Subject, error) {
	recs, err := s.records(ctx, principalID)
	if err != nil {
		return authz.Subject{}, err
	}
	now := s.now()
	held := make([]authz.Assignment, 0, len(recs))
	for _, rec := range recs {
		if rec.RevokedAt != nil || authz.IsExpired(authz.Assignment{ExpiresAt: rec.ExpiresAt}, now) {
			continue
		}
		a, err := s.resolve(rec)
		if err != nil {
			return authz.Subject{}, err
		}
		held = append(held, a)
	}
	subject := authz.HeldFor(held, eventID, now)
	subject.CorrelationID = correlationID
	return subject, nil
}

// records reads through the cache. The generation is taken before the storage
// read so a mutation landing in between makes the cache write a no-op.
func (s *service) records(ctx context.Context, principalID string) ([]Record, error) {
	var gen int64
	fill := false
	if s.cache != nil {
		recs, ok, err := s.cache.Get(ctx, principalID)
		if err == nil && ok {
			return recs, nil
		}
		if err == nil {
			gen, err = s.cache.Generation(ctx, principalID)
			fill = err == nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "assignment cache read failed", slog.String("principal_id", principalID), slog.Any("err", err))
		}
	}
	recs, err := s.repo.ListByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if fill {
		if err := s.cache.Set(ctx, principalID, gen, recs); err != nil {
			s.logger.WarnContext(ctx, "assignment cache write failed", slog.String("principal_id", principalID), slog.Any("err", err))
		}
	}
	return recs, nil
}

func (s *service) invalidate(ctx context.Context, principalID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, principalID); err != nil {
		s.logger.ErrorContext(ctx, "assignment cache invalidate failed", slog.String("principal_id", principalID), slog.Any("err", err))
	}
}
