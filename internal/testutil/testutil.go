// Package testutil holds fixtures shared by package tests: an in-memory SQLite
// store with the production schema and a settable clock.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-tracker/internal/database"
)

// NewDB opens a private in-memory database and migrates it.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.Must(uuid.NewV4()).String())
	pool, err := database.OpenPool(sqlite.Open(dsn), &database.PoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     logger.Silent,
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(pool.DB))

	t.Cleanup(func() {
		_ = pool.Close()
	})
	return pool.DB
}

func NewStore(t testing.TB, opts ...database.StoreOption) *database.Store {
	t.Helper()
	return database.NewStore(NewDB(t), zerolog.Nop(), opts...)
}

type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func StringPtr(s string) *string {
	return &s
}
