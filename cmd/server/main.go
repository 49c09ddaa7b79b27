package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	authhandler "digipraman/internal/auth/handler"
	authservice "digipraman/internal/auth/service"
	userstore "digipraman/internal/auth/store/user"
	jwttoken "digipraman/internal/jwt_token"
	otpmetrics "digipraman/internal/otp/metrics"
	"digipraman/internal/otp/notifier"
	otpservice "digipraman/internal/otp/service"
	otpstore "digipraman/internal/otp/store"
	"digipraman/internal/platform/config"
	"digipraman/internal/platform/httpserver"
	"digipraman/internal/platform/kafka"
	"digipraman/internal/platform/logger"
	"digipraman/internal/platform/metrics"
	"digipraman/internal/platform/middleware"
	"digipraman/internal/platform/objectstore"
	"digipraman/internal/platform/postgres"
	"digipraman/internal/platform/redis"
	"digipraman/internal/platform/tracing"
	httptransport "digipraman/internal/transport/http"
	verificationhandler "digipraman/internal/verification/handler"
	verificationmetrics "digipraman/internal/verification/metrics"
	verificationservice "digipraman/internal/verification/service"
	verificationstore "digipraman/internal/verification/store"
	id "digipraman/pkg/domain"
	auditpostgres "digipraman/pkg/platform/audit/store/postgres"
	auditworker "digipraman/pkg/platform/audit/worker"
	"digipraman/pkg/platform/circuit"
)

const clientID = "digipraman-backend"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies, serves HTTP and relays the audit outbox until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, clientID)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	presigner, err := objectstore.NewPresigner(cfg.Storage)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auditStore := auditpostgres.New(db)

	otpSvc, otpMemory := newOTPService(cfg, log, registry, redisClient, producer)

	defaultOrg, err := parseDefaultOrg(cfg.DefaultOrgID)
	if err != nil {
		return err
	}
	jwtSvc := jwttoken.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)
	authSvc := authservice.New(otpSvc, userstore.NewPostgres(db), jwtSvc,
		authservice.Config{TokenTTL: cfg.JWT.ExpiresIn, DefaultOrgID: defaultOrg},
		authservice.WithAuditor(auditStore),
		authservice.WithLogger(log),
	)

	verificationStore := verificationstore.NewPostgres(db, cfg.Database.TxTimeout)
	verificationOpts := []verificationservice.Option{
		verificationservice.WithAuditor(auditStore),
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(verificationmetrics.New(registry)),
	}
	if presigner != nil {
		signer := objectstore.NewGuardedSigner(presigner, circuit.New("object-storage"), log)
		verificationOpts = append(verificationOpts, verificationservice.WithPresigner(signer))
	}
	verificationSvc := verificationservice.New(verificationStore, verificationStore, verificationOpts...)

	requireAuth := middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtSvc), log)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Metrics:        metrics.New(registry),
		Gatherer:       registry,
		Health:         newHealthHandler(db, redisClient, producer, log),
		RequireAuth:    requireAuth,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Auth:           authhandler.New(authSvc, requireAuth, log),
		Verification:   verificationhandler.New(verificationSvc, log),
	})
	srv := httpserver.New(cfg.Addr, router, cfg.HTTP)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting digipraman backend", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if producer != nil {
		relay := auditworker.NewWorker(auditStore, producer, cfg.Kafka.AuditTopic,
			cfg.Kafka.OutboxInterval, cfg.Kafka.OutboxBatch, log)
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox relay: %w", err)
			}
			return nil
		})
	} else {
		log.Warn("no kafka brokers configured, audit outbox relay disabled")
	}
	if otpMemory != nil {
		g.Go(func() error {
			if err := otpMemory.RunSweeper(gctx, time.Minute, time.Now, log); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("otp sweeper: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return shutdownTracing(shutdownCtx)
	})

	return g.Wait()
}

// newOTPService picks the credential store and delivery channel from config.
// The memory store is returned as well so its expiry sweeper can run; it is
// nil when Redis holds the transactions.
func newOTPService(cfg config.Server, log *slog.Logger, reg prometheus.Registerer, redisClient *redis.Client, producer *kafka.Producer) (*otpservice.Service, *otpstore.InMemory) {
	var (
		store  otpservice.Store
		memory *otpstore.InMemory
	)
	if cfg.OTP.Backend == "redis" && redisClient != nil {
		store = otpstore.NewRedis(redisClient.Client)
	} else {
		memory = otpstore.NewInMemory()
		store = memory
	}

	var delivery otpservice.Notifier = notifier.NewLogNotifier(log)
	if producer != nil {
		delivery = notifier.NewKafkaNotifier(producer, cfg.Kafka.OTPTopic)
	}

	svc := otpservice.New(store, delivery,
		otpservice.WithTTL(cfg.OTP.TTL),
		otpservice.WithLogger(log),
		otpservice.WithMetrics(otpmetrics.New(reg)),
	)
	return svc, memory
}

func newHealthHandler(db *sqlx.DB, redisClient *redis.Client, producer *kafka.Producer, log *slog.Logger) *httptransport.HealthHandler {
	var checks []httptransport.DependencyCheck
	if redisClient != nil {
		checks = append(checks, httptransport.DependencyCheck{Name: "redis", Check: redisClient.Health})
	}
	if producer != nil {
		checks = append(checks, httptransport.DependencyCheck{Name: "kafka", Check: producer.Health})
	}
	return httptransport.NewHealthHandler(func(ctx context.Context) (time.Time, error) {
		return postgres.Now(ctx, db)
	}, log, checks...)
}

func parseDefaultOrg(raw string) (*id.OrgID, error) {
	if raw == "" {
		return nil, nil
	}
	org, err := id.ParseOrgID(raw)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_ORG_ID: %w", err)
	}
	return &org, nil
}
