package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/middleware"
	"task-tracker/internal/monitoring"
	"task-tracker/internal/notify"
	"task-tracker/internal/repositories"
	"task-tracker/internal/services"
	"task-tracker/internal/worker"
)

const (
	CleanupJob        = "task-cleanup"
	RateLimitSweepJob = "rate-limit-sweep"
	RedisCheck        = "redis"
)

// App owns every long-lived resource of a server process.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Pool  *database.DatabasePool
	Store *database.Store

	Hub         *notify.Hub
	Broadcaster notify.Broadcaster
	relay       *notify.RedisBroadcaster
	redisClient *redis.Client

	Tokens     *services.TokenManager
	Auth       *services.AuthServiceImpl
	Tasks      *services.TaskServiceImpl
	Attendance *services.AttendanceServiceImpl
	Cleanup    *services.CleanupService

	Worker  *worker.Worker
	Limiter *middleware.RateLimiter
	Metrics *monitoring.Metrics
	Health  *monitoring.HealthChecker
}

type options struct {
	dialector   gorm.Dialector
	redisClient *redis.Client
	now         func() time.Time
}

type Option func(*options)

// WithDialector replaces the Postgres connection built from the config.
func WithDialector(dialector gorm.Dialector) Option {
	return func(o *options) {
		o.dialector = dialector
	}
}

// WithRedisClient enables the cross-process relay on an existing client.
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) {
		o.redisClient = client
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func New(cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: log}

	poolConfig := &database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
		SlowThreshold:   200 * time.Millisecond,
	}

	var err error
	if o.dialector != nil {
		a.Pool, err = database.OpenPool(o.dialector, poolConfig, log)
	} else {
		a.Pool, err = database.NewDatabasePool(poolConfig, log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a.Store = database.NewStore(a.Pool.DB, log,
		database.WithAcquireTimeout(cfg.Database.AcquireTimeout),
		database.WithClock(o.now),
	)

	a.Hub = notify.NewHub(cfg.Events.BufferSize, log)
	a.Broadcaster = a.Hub

	a.redisClient = o.redisClient
	if a.redisClient == nil && cfg.Redis.Enabled {
		a.redisClient = notify.NewRedisClient(a.redisConfig())
	}
	if a.redisClient != nil {
		a.relay = notify.NewRedisBroadcaster(a.redisClient, a.Hub, a.redisConfig(), log)
		a.Broadcaster = a.relay
	}

	users := repositories.NewUserRepository(a.Store)
	tasks := repositories.NewTaskRepository(a.Store)

	a.Tokens = services.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, o.now)
	a.Auth = services.NewAuthService(users, a.Tokens, cfg.Auth.BCryptCost, log)
	a.Tasks = services.NewTaskService(users, tasks, a.Broadcaster, o.now, log)
	a.Attendance = services.NewAttendanceService(users, a.Broadcaster, o.now, log)
	a.Cleanup = services.NewCleanupService(tasks, a.Broadcaster, cfg.Worker.RetentionPeriod, o.now, log)

	if cfg.RateLimit.Enabled {
		a.Limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
	}

	a.Metrics = monitoring.NewMetrics()
	a.Health = monitoring.NewHealthChecker(cfg.Database.AcquireTimeout, log)
	a.Health.Register(monitoring.DatabaseCheck, a.Store.Ping)
	if a.relay != nil {
		a.Health.Register(RedisCheck, a.relay.Ping)
	}

	a.Worker = worker.NewWorker(log)
	if err := a.registerJobs(); err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) redisConfig() *notify.RedisConfig {
	rc := a.Config.Redis
	return &notify.RedisConfig{
		Addr:           a.Config.GetRedisAddr(),
		Password:       rc.Password,
		DB:             rc.DB,
		PoolSize:       rc.PoolSize,
		MinIdleConns:   rc.MinIdleConns,
		DialTimeout:    rc.DialTimeout,
		ReadTimeout:    rc.ReadTimeout,
		WriteTimeout:   rc.WriteTimeout,
		Channel:        rc.Channel,
		PublishTimeout: rc.WriteTimeout,
	}
}

func (a *App) registerJobs() error {
	if a.Config.Worker.Enabled {
		err := a.Worker.Register(worker.Job{
			Name:       CleanupJob,
			Interval:   a.Config.Worker.CleanupInterval,
			RunOnStart: a.Config.Worker.CleanupOnStart,
			Handler: func(ctx context.Context) error {
				_, err := a.Cleanup.Run(ctx)
				return err
			},
		})
		if err != nil {
			return err
		}
	}

	if a.Limiter != nil {
		err := a.Worker.Register(worker.Job{
			Name:     RateLimitSweepJob,
			Interval: a.Config.RateLimit.CleanupInterval,
			Handler: func(context.Context) error {
				a.Limiter.Sweep(time.Now())
				return nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Migrate() error {
	if err := database.Migrate(a.Pool.DB); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	a.Logger.Info().Msg("schema migrated")
	return nil
}

// Start brings up the background parts: the Redis relay subscription and the
// scheduled jobs.
func (a *App) Start(ctx context.Context) error {
	if a.relay != nil {
		if err := a.relay.Start(ctx); err != nil {
			return err
		}
		a.Logger.Info().Str("channel", a.Config.Redis.Channel).Msg("event relay subscribed")
	}
	return a.Worker.Start(ctx)
}

func (a *App) Close() error {
	if a.Worker != nil {
		a.Worker.Stop()
	}

	var errs []error
	if a.relay != nil {
		errs = append(errs, a.relay.Close())
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if a.Pool != nil {
		errs = append(errs, a.Pool.Close())
	}
	return errors.Join(errs...)
}
