package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"hangman-service/internal/app"
	"hangman-service/internal/config"
	"hangman-service/internal/infra/mail"
	"hangman-service/internal/infra/memory"
	natsqueue "hangman-service/internal/infra/nats"
	"hangman-service/internal/infra/postgres"
	redisinfra "hangman-service/internal/infra/redis"
	"hangman-service/internal/infra/words"
	transport "hangman-service/internal/transport/http"
)

// stack is the wired service plus whatever it needs closed on exit.
type stack struct {
	cfg     config.Config
	service *app.HangmanService

	localQueue *memory.TaskQueue
	natsQueue  *natsqueue.TaskQueue
	checks     []transport.Pinger
	closers    []func()
}

// buildStack picks Postgres and Redis when configured and falls back to
// in-memory infrastructure otherwise.
func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	rt := &stack{cfg: cfg}
	deps := app.Dependencies{WordAttempts: cfg.Words.Attempts}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		store := postgres.NewStore(pool)
		deps.Users, deps.Games, deps.Scores = store, store, store
		rt.checks = append(rt.checks, store)
	} else {
		log.Warn("postgres not configured, games are kept in memory")
		store := memory.NewStore()
		deps.Users, deps.Games, deps.Scores = store, store, store
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		deps.Cache = redisinfra.NewAverageCache(client, config.TTLDuration(cfg.Redis.CacheTTL, time.Hour))
		deps.Locker = redisinfra.NewLocker(client, config.TTLDuration(cfg.Redis.LockTTL, 5*time.Second))
	} else {
		deps.Cache = memory.NewAverageCache()
		deps.Locker = memory.NewLocker()
	}

	source, err := wordSource(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	deps.Words = source

	if cfg.Mail.Host != "" {
		deps.Mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	} else {
		deps.Mailer = mail.LogMailer{}
	}

	rt.service = app.NewHangmanService(deps)
	return rt, nil
}

func wordSource(cfg config.Config) (app.WordSource, error) {
	switch {
	case cfg.Words.URL != "":
		return words.NewHTTPSource(cfg.Words.URL, config.TTLDuration(cfg.Words.Timeout, 5*time.Second)), nil
	case cfg.Words.List != "":
		return words.LoadStaticSource(cfg.Words.List, nil)
	default:
		return words.NewStaticSource(nil, nil), nil
	}
}

// attachQueue gives the service somewhere to defer tasks: NATS when
// configured, an in-process queue otherwise.
func (rt *stack) attachQueue() error {
	if rt.cfg.NATS.URL != "" {
		q := natsqueue.NewTaskQueue(rt.cfg.NATS.URL, rt.cfg.NATS.Subject)
		if err := q.Connect(); err != nil {
			return err
		}
		rt.natsQueue = q
		rt.closers = append(rt.closers, func() { _ = q.Close() })
		rt.service.SetTaskQueue(q)
		return nil
	}
	rt.localQueue = memory.NewTaskQueue(64)
	rt.service.SetTaskQueue(rt.localQueue)
	return nil
}

// runWorker consumes deferred tasks until ctx is done.
func (rt *stack) runWorker(ctx context.Context) error {
	if rt.natsQueue != nil {
		if err := rt.natsQueue.Subscribe(ctx, rt.service.RunTask); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}
	if rt.localQueue != nil {
		return rt.localQueue.Run(ctx, rt.service.RunTask)
	}
	return nil
}

func (rt *stack) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}
