package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/evently/internal/api/http"
	"github.com/spec-kit/evently/internal/api/http/handlers"
	"github.com/spec-kit/evently/internal/auth"
	"github.com/spec-kit/evently/internal/broker"
	"github.com/spec-kit/evently/internal/config"
	"github.com/spec-kit/evently/internal/events"
	"github.com/spec-kit/evently/internal/observability"
	"github.com/spec-kit/evently/internal/persistence"
	"github.com/spec-kit/evently/internal/render"
	"github.com/spec-kit/evently/internal/repository"
	"github.com/spec-kit/evently/internal/repository/memstore"
	"github.com/spec-kit/evently/internal/service"
	"github.com/spec-kit/evently/internal/worker"
)

type repositories struct {
	storage      string
	users        repository.UserRepository
	events       repository.EventRepository
	reservations repository.ReservationRepository
	tickets      repository.TicketRepository
	history      repository.ReservationHistoryRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	repos := buildRepositories(pg, logger)
	checks := []handlers.DependencyCheck{}
	if pg.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	}

	var locker service.Locker
	if cfg.Reservation.AdmissionLock {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		locker = persistence.NewRedisLocker(redis, cfg.App.Name+":lock:", cfg.Reservation.LockTTL())
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.App.Name)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)

	var publisher service.ConfirmationPublisher
	var consumer *broker.Consumer
	if cfg.Broker.URL != "" {
		publisher = broker.NewPublisher(cfg.Broker.URL, cfg.Broker.ConfirmedQueue, logger).
			WithTimeout(time.Duration(cfg.Broker.PublishTimeoutMillis) * time.Millisecond)
		if cfg.Broker.ConsumeAuditLog {
			consumer = broker.NewConsumer(cfg.Broker.URL, cfg.Broker.ConfirmedQueue, nil, logger)
		}
	}

	authService := service.NewAuthService(cfg.Auth, repos.users, logger)
	eventService := service.NewEventService(repos.events, dispatcher)
	var renderOpts []render.Option
	if cfg.App.TicketFontPath != "" {
		renderOpts = append(renderOpts, render.WithUTF8Font(cfg.App.TicketFontPath))
	}
	ticketService := service.NewTicketService(repos.tickets, render.NewPDFRenderer(renderOpts...), dispatcher, logger)
	reservationService := service.NewReservationService(service.ReservationDependencies{
		ReservationRepo: repos.reservations,
		EventRepo:       repos.events,
		HistoryRepo:     repos.history,
		Tickets:         ticketService,
		Dispatcher:      dispatcher,
		Locker:          locker,
		Policy:          cfg.Reservation,
		Logger:          logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, metrics, publisher)
	workerDone := worker.StartNotificationWorker(ctx, notificationService, consumer, logger)

	if _, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to provision admin", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, repos.storage, checks...),
		Auth:           handlers.NewAuthHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		Reservations:   handlers.NewReservationsHandler(reservationService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	}
	if metrics != nil {
		routes.Metrics = metrics.Handler()
		routes.MetricsPath = cfg.Metrics.Path
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	logger.Info("evently started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("storage", repos.storage),
		zap.String("duplicate_policy", string(cfg.Reservation.DuplicatePolicy)),
		zap.Bool("strict_transitions", cfg.Reservation.StrictTransitions),
		zap.Bool("admission_lock", cfg.Reservation.AdmissionLock))

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

// buildRepositories uses Postgres when connected and in-memory storage otherwise.
func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	if !pg.Enabled() {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memstore.New()
		return repositories{
			storage:      "memory",
			users:        store.Users(),
			events:       store.Events(),
			reservations: store.Reservations(),
			tickets:      store.Tickets(),
			history:      store.History(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		storage:      "postgres",
		users:        repository.NewUserRepository(pool),
		events:       repository.NewEventRepository(pool),
		reservations: repository.NewReservationRepository(pool),
		tickets:      repository.NewTicketRepository(pool),
		history:      repository.NewReservationHistoryRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
