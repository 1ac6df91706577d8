package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/api"
	"github.com/sharenotes/notes-api/internal/api/handler"
	"github.com/sharenotes/notes-api/internal/core/ports"
	"github.com/sharenotes/notes-api/internal/core/service"
	"github.com/sharenotes/notes-api/internal/infrastructure/config"
	"github.com/sharenotes/notes-api/internal/infrastructure/db/memory"
	mongostore "github.com/sharenotes/notes-api/internal/infrastructure/db/mongo"
	redisstore "github.com/sharenotes/notes-api/internal/infrastructure/db/redis"
	"github.com/sharenotes/notes-api/internal/pkg/hasher"
	"github.com/sharenotes/notes-api/internal/pkg/session"
	"github.com/sharenotes/notes-api/pkg/logger"
)

const serviceName = "notes-api"

// repositories is the storage backend chosen by STORE_DRIVER.
type repositories struct {
	users   ports.UserRepository
	notes   ports.NoteRepository
	invites ports.InviteRepository
	pinger  handler.Pinger
	close   func(context.Context) error
}

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel, serviceName))
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("starting notes server")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	deps := map[string]handler.Pinger{"store": repos.pinger}

	var revocations ports.RevocationStore = memory.NewRevocationStore()
	if cfg.Redis.Enabled {
		store, err := redisstore.Open(ctx, redisstore.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return err
		}
		defer store.Close()

		revocations = store
		deps["redis"] = store
	} else {
		log.Warn().Msg("redis disabled, session revocations are kept in process")
	}

	bcrypt := hasher.NewBcrypt(cfg.Session.BcryptCost)
	codec := session.NewCodec(cfg.Session.Secret, cfg.Session.TTL)

	inviteService := service.NewInviteService(repos.invites, repos.users, cfg.Invite.TTL, log)
	authService := service.NewAuthService(repos.users, inviteService, bcrypt, log)
	noteService := service.NewNoteService(repos.notes, bcrypt, log)

	trusted, err := cfg.TrustedProxyRanges()
	if err != nil {
		return err
	}

	invite, err := authService.Bootstrap(ctx)
	if err != nil {
		// The store may come up later; the next restart issues the invite.
		log.Warn().Err(err).Msg("bootstrap invite not issued")
	} else if invite != nil {
		log.Info().Str("code", invite.Code).Time("expires_at", *invite.ExpiresAt).
			Msg("no users yet, register the first administrator with this invite")
	}

	router := api.NewRouter(api.RouterConfig{
		Auth:           authService,
		Notes:          noteService,
		Invites:        inviteService,
		Codec:          codec,
		Revocations:    revocations,
		Dependencies:   deps,
		SecureCookies:  !cfg.IsDevelopment(),
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		TrustedProxies: trusted,
		Swagger:        cfg.IsDevelopment(),
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Store.Driver == config.DriverMemory {
		store := memory.NewStore()
		return &repositories{
			users:   store.Users,
			notes:   store.Notes,
			invites: store.Invites,
			pinger:  store,
			close:   func(context.Context) error { return nil },
		}, nil
	}

	store := mongostore.NewStore(mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return &repositories{
		users:   mongostore.NewUserRepository(store),
		notes:   mongostore.NewNoteRepository(store),
		invites: mongostore.NewInviteRepository(store),
		pinger:  store,
		close:   store.Close,
	}, nil
}
