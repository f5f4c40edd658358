package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// ErrUnavailable is returned when the database cannot be reached in time.
var ErrUnavailable = errors.New("database unavailable")

// Provider hands out the shared database handle.
type Provider interface {
	Get(ctx context.Context) (*gorm.DB, error)
}

// DialFunc opens and verifies a connection. It must honor ctx.
type DialFunc func(ctx context.Context) (*gorm.DB, error)

// Options configures a Connector.
type Options struct {
	Driver          string // "postgres" or "sqlite"
	DSN             string
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Tracing         bool
	Debug           bool
}

// Connector lazily opens one process-wide *gorm.DB.
//
// Callers that arrive while a connection attempt is in flight wait on that
// attempt instead of starting their own. A failed attempt is not cached, so
// the next Get retries.
type Connector struct {
	dial    DialFunc
	timeout time.Duration

	mu sync.RWMutex
	db *gorm.DB

	group singleflight.Group
}

// NewConnector returns a Connector that dials with opts on first use.
func NewConnector(opts Options) *Connector {
	return NewConnectorWithDialer(opts.ConnectTimeout, func(ctx context.Context) (*gorm.DB, error) {
		return open(ctx, opts)
	})
}

// NewConnectorWithDialer returns a Connector using a custom dial function.
func NewConnectorWithDialer(timeout time.Duration, dial DialFunc) *Connector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Connector{dial: dial, timeout: timeout}
}

// Get returns the shared handle, connecting if needed. Errors wrap ErrUnavailable.
func (c *Connector) Get(ctx context.Context) (*gorm.DB, error) {
	if db := c.current(); db != nil {
		return db, nil
	}

	ch := c.group.DoChan("connect", func() (interface{}, error) {
		if db := c.current(); db != nil {
			return db, nil
		}

		// Detached from any single caller so one cancelled request does not
		// fail everyone waiting on the same attempt.
		dialCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		start := time.Now()
		db, err := c.dial(dialCtx)
		metrics.RecordDatabaseConnect(time.Since(start), err)
		if err != nil {
			logger.Log.Error("Database connection failed",
				zap.Error(err),
				zap.Duration("timeout", c.timeout),
			)
			return nil, err
		}

		c.mu.Lock()
		c.db = db
		c.mu.Unlock()

		logger.Log.Info("Database connected", zap.Duration("elapsed", time.Since(start)))
		return db, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Err)
		}
		return res.Val.(*gorm.DB), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

// Reset drops the cached handle so the next Get reconnects.
func (c *Connector) Reset() {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()

	if db != nil {
		closeDB(db)
	}
}

// Close releases the cached handle.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health pings the database. A failed ping resets the cached handle.
func (c *Connector) Health(ctx context.Context) error {
	db, err := c.Get(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		c.Reset()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Connector) current() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Static wraps an already open handle.
func Static(db *gorm.DB) Provider {
	return staticProvider{db: db}
}

type staticProvider struct {
	db *gorm.DB
}

func (s staticProvider) Get(context.Context) (*gorm.DB, error) {
	return s.db, nil
}

func open(ctx context.Context, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "postgres", "":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	logLevel := gormlogger.Warn
	if opts.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormlogger.Default.LogMode(logLevel),
		TranslateError:       true,
		DisableAutomaticPing: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if opts.Driver == "sqlite" {
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA foreign_keys=ON;")
		db.Exec("PRAGMA busy_timeout=5000;")
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			logger.WarnWithFields("Failed to install gorm tracing plugin", err)
		}
	}

	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WarnWithFields("Failed to close database handle", err)
	}
}
