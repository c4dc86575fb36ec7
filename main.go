package main

import (
	"context"
	"log"
	"time"

	"bus-tracker/cmd"
	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/notify"
	"bus-tracker/internal/usecase"
	"bus-tracker/internal/wire"
	"bus-tracker/pkg/cache"
	"bus-tracker/pkg/database"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	// Redis is optional: reads fall back to Postgres and the limiter opens
	rdb, err := cache.InitRedis(config.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		rdb = nil
	}

	repos := repository.NewRepository(db, logger)

	// bg outlives requests; it stops the consumer and the session janitor
	bg, stopBackground := context.WithCancel(context.Background())

	sink, publisher, welcomer := notificationSinks(bg, config, repos, logger)
	dispatcher := notify.NewDispatcher(
		sink,
		config.Notify.Workers,
		config.Notify.QueueSize,
		config.Notify.Timeout,
		logger,
	)

	deps := usecase.Deps{
		Seats:     cache.NewSeatSnapshot(rdb, config.Booking.BookedSeatsTTL),
		Locations: cache.NewLocationCache(rdb),
		Notifier:  dispatcher,
	}
	if welcomer != nil {
		deps.Welcomer = welcomer
	}

	app := wire.Wiring(repos, config, rdb, deps, logger)

	go cleanExpiredSessions(bg, repos.Session, logger)

	err = cmd.APIServer(app.Router, config.App.Port, logger,
		func(ctx context.Context) error {
			stopBackground()
			return dispatcher.Close(ctx)
		},
		func(context.Context) error {
			if publisher == nil {
				return nil
			}
			return publisher.Close()
		},
		func(context.Context) error {
			if rdb == nil {
				return nil
			}
			return rdb.Close()
		},
		func(context.Context) error {
			db.Close()
			return nil
		},
	)
	if err != nil {
		logger.Error("Server exited with error", zap.Error(err))
	}
}

// notificationSinks picks where booking confirmations go. With RabbitMQ the
// dispatcher publishes and a consumer delivers by mail (or log); without it
// the dispatcher mails directly when SMTP is configured, else logs.
func notificationSinks(
	ctx context.Context,
	config *utils.Config,
	repos *repository.Repository,
	logger *zap.Logger,
) (notify.Sink, *notify.Publisher, *notify.Mailer) {
	var (
		mailer   *notify.Mailer
		delivery notify.Sink = notify.NewLogSink(logger)
	)
	if config.Email.Host != "" {
		mailer = notify.NewMailer(config.Email, repos.User, logger)
		delivery = mailer
	}

	if config.Notify.RabbitURL == "" {
		return delivery, nil, mailer
	}

	publisher := notify.NewPublisher(config.Notify.RabbitURL, config.Notify.Queue, logger)
	consumer := notify.NewConsumer(
		config.Notify.RabbitURL,
		config.Notify.Queue,
		delivery,
		config.Notify.Timeout,
		logger,
	)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Notification consumer stopped", zap.Error(err))
		}
	}()

	return publisher, publisher, mailer
}

func cleanExpiredSessions(ctx context.Context, sessions repository.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.CleanExpiredSessions(ctx)
			if err != nil {
				logger.Warn("Failed to clean expired sessions", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Expired sessions cleaned", zap.Int64("removed", removed))
			}
		}
	}
}
