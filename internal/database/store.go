package database

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrStoreUnavailable covers pool exhaustion, timeouts and failed queries.
	// The underlying cause is logged, never returned.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrInvalidOperator  = errors.New("invalid comparison operator")
)

const DefaultAcquireTimeout = 5 * time.Second

// Record is implemented by every persisted model keyed by a UUID.
type Record interface {
	RecordID() uuid.UUID
	SetRecordID(id uuid.UUID)
}

// Filter maps column names to the value they must equal. A nil value matches NULL.
type Filter map[string]any

type Sort struct {
	Column string
	Desc   bool
}

type Operator string

const (
	OpEq  Operator = "="
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpGte Operator = ">="
)

type Store struct {
	db             *gorm.DB
	logger         zerolog.Logger
	acquireTimeout time.Duration
	breaker        *CircuitBreaker
}

type StoreOption func(*Store)

func WithAcquireTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.acquireTimeout = d
		}
	}
}

func WithCircuitBreaker(config *CircuitBreakerConfig) StoreOption {
	return func(s *Store) {
		s.breaker = NewCircuitBreaker(config)
	}
}

// WithClock makes generated timestamps come from now instead of the wall clock.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.db = s.db.Session(&gorm.Session{NowFunc: func() time.Time {
				return now().UTC()
			}})
		}
	}
}

func NewStore(db *gorm.DB, logger zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		db:             db,
		logger:         logger.With().Str("component", "store").Logger(),
		acquireTimeout: DefaultAcquireTimeout,
		breaker:        NewCircuitBreaker(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Breaker() *CircuitBreaker {
	return s.breaker
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// run executes fn with a bounded context. Expected outcomes (not found, duplicate)
// are passed through; anything else is logged and reported as ErrStoreUnavailable.
// A caller that gave up gets its own context error back and the breaker
// does not see the call.
func (s *Store) run(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	callerCtx := ctx

	ctx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	var opErr error
	err := s.breaker.Execute(func() error {
		opErr = translate(fn(s.db.WithContext(ctx)))
		if opErr != nil && callerCtx.Err() != nil {
			opErr = callerCtx.Err()
			return errNotCounted
		}
		if opErr != nil && !isExpected(opErr) {
			return opErr
		}
		return nil
	})
	switch {
	case errors.Is(err, errNotCounted):
		return opErr
	case errors.Is(err, ErrCircuitBreakerOpen):
		s.logger.Warn().Str("op", op).Msg("store circuit open, rejecting call")
		return ErrStoreUnavailable
	case err != nil:
		s.logger.Error().Err(err).Str("op", op).Msg("store operation failed")
		return ErrStoreUnavailable
	}
	return opErr
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func isExpected(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidOperator)
}

func applyFilter(db *gorm.DB, filter Filter) *gorm.DB {
	for _, column := range slices.Sorted(maps.Keys(filter)) {
		db = db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: filter[column]})
	}
	return db
}

func applySort(db *gorm.DB, sorts []Sort) *gorm.DB {
	for _, o := range sorts {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	return db
}

// Find returns every record of T matching filter, in the given column order.
func Find[T any](ctx context.Context, s *Store, filter Filter, sorts ...Sort) ([]T, error) {
	records := make([]T, 0)
	err := s.run(ctx, "find", func(db *gorm.DB) error {
		q := applySort(applyFilter(db.Model(new(T)), filter), sorts)
		return q.Find(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindOne returns the first record matching filter, or nil when there is none.
func FindOne[T any](ctx context.Context, s *Store, filter Filter) (*T, error) {
	var record T
	err := s.run(ctx, "find_one", func(db *gorm.DB) error {
		return applyFilter(db.Model(new(T)), filter).Take(&record).Error
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func FindByID[T any](ctx context.Context, s *Store, id uuid.UUID) (*T, error) {
	return FindOne[T](ctx, s, Filter{"id": id})
}

// Save inserts rec when it has no id yet and updates every column otherwise.
// The row is re-read in the same transaction so generated columns come back.
func Save[T any, PT interface {
	*T
	Record
}](ctx context.Context, s *Store, rec PT) (PT, error) {
	var saved T
	inserting := rec.RecordID() == uuid.Nil

	err := s.run(ctx, "save", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if inserting {
				id, err := uuid.NewV4()
				if err != nil {
					return fmt.Errorf("failed to generate id: %w", err)
				}
				rec.SetRecordID(id)
				if err := tx.Create(rec).Error; err != nil {
					return err
				}
			} else {
				res := tx.Model(rec).Select("*").Omit("id", "created_at").Updates(rec)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return ErrNotFound
				}
			}
			return tx.Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: rec.RecordID()}).Take(&saved).Error
		})
	})
	if err != nil {
		if inserting {
			rec.SetRecordID(uuid.Nil)
		}
		return nil, err
	}
	return &saved, nil
}

// DeleteByID removes the record and returns it, or nil when no row had that id.
func DeleteByID[T any](ctx context.Context, s *Store, id uuid.UUID) (*T, error) {
	var removed *T
	err := s.run(ctx, "delete_by_id", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var record T
			err := tx.Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Take(&record).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			res := tx.Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Delete(new(T))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				removed = &record
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// DeleteWhere removes every record whose column compares to value with op
// and reports how many rows went away.
func DeleteWhere[T any](ctx context.Context, s *Store, column string, op Operator, value any) (int64, error) {
	expr, err := comparison(column, op, value)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.run(ctx, "delete_where", func(db *gorm.DB) error {
		res := db.Where(expr).Delete(new(T))
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func comparison(column string, op Operator, value any) (clause.Expression, error) {
	col := clause.Column{Name: column}
	switch op {
	case OpEq:
		return clause.Eq{Column: col, Value: value}, nil
	case OpLt:
		return clause.Lt{Column: col, Value: value}, nil
	case OpLte:
		return clause.Lte{Column: col, Value: value}, nil
	case OpGt:
		return clause.Gt{Column: col, Value: value}, nil
	case OpGte:
		return clause.Gte{Column: col, Value: value}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, op)
	}
}
