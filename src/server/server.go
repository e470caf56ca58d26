package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/drive-clone/api/src/config"
	"github.com/drive-clone/api/src/database"
	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/drivers/storage"
	"github.com/drive-clone/api/src/handlers"
	auth_handlers "github.com/drive-clone/api/src/handlers/auth"
	files_handlers "github.com/drive-clone/api/src/handlers/files"
	"github.com/drive-clone/api/src/middleware/core"
	"github.com/drive-clone/api/src/middleware/logic"
	auth_repo "github.com/drive-clone/api/src/repository/auth"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/drive-clone/api/src/scheduler"
	"github.com/drive-clone/api/src/services/content"
	"github.com/drive-clone/api/src/services/operations"
	"github.com/drive-clone/api/src/services/security"
)

// authRequestsPerMinute is the per-IP budget of the credential endpoints
const authRequestsPerMinute = 5

// Server holds all dependencies for the API server
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	router *gin.Engine
	db     *database.DB
	redis  *database.RedisClient

	// Repositories
	userRepo        *auth_repo.UserRepository
	entryRepo       *files_repo.EntryRepository
	reservationRepo *files_repo.ReservationRepository
	ownerLocker     *files_repo.OwnerLocker

	// Blob storage
	blobs      storage.BlobStore
	blobHealth handlers.HealthChecker
	diskPath   string

	// Services
	jwtService         *security.JWTService
	passwordService    *security.PasswordService
	tokenService       *security.TokenService
	identityGate       *security.IdentityGate
	oauthProviders     []security.OAuthProvider
	emailService       *operations.EmailService
	hierarchyService   *content.HierarchyService
	quotaService       *content.QuotaService
	uploadService      *content.UploadService
	archiveService     *content.ArchiveService
	consistencyService *operations.ConsistencyService

	// Route Handlers
	authHandler  *auth_handlers.Handler
	filesHandler *files_handlers.Handler
	blobHandler  *files_handlers.BlobHandler

	rateLimiter *logic.RateLimiter
	authLimiter *logic.RateLimiter
}

// NewServer connects to the database and Redis and initializes all server
// dependencies
func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	db, err := database.NewConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redis, err := database.NewRedisConnection(cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	s, err := NewServerWithConnections(cfg, logger, db, redis)
	if err != nil {
		db.Close()
		redis.Close()
		return nil, err
	}
	return s, nil
}

// NewServerWithConnections builds the server on already open connections.
// Extra OAuth providers are registered next to the configured ones.
func NewServerWithConnections(
	cfg *config.Config,
	logger *logrus.Logger,
	db *database.DB,
	redis *database.RedisClient,
	providers ...security.OAuthProvider,
) (*Server, error) {
	s := &Server{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		redis:          redis,
		oauthProviders: providers,
	}

	ctx := context.Background()

	if err := s.initRepositories(ctx); err != nil {
		return nil, fmt.Errorf("repository init failed: %w", err)
	}

	if err := s.initServices(ctx); err != nil {
		return nil, fmt.Errorf("service init failed: %w", err)
	}

	s.initHandlers()
	s.initRouter()
	s.SetupRoutes()

	return s, nil
}

// initRepositories initializes all data access layers and their tables
func (s *Server) initRepositories(ctx context.Context) error {
	s.userRepo = auth_repo.NewUserRepository(s.db, s.logger)
	s.entryRepo = files_repo.NewEntryRepository(s.db.DB, s.logger)
	s.reservationRepo = files_repo.NewReservationRepository(s.db.DB, s.logger)
	s.ownerLocker = files_repo.NewOwnerLocker(s.db.DB, s.entryRepo, s.reservationRepo, s.logger)

	return EnsureSchema(ctx, s.userRepo, s.entryRepo, s.reservationRepo)
}

// initServices initializes all business logic services
func (s *Server) initServices(ctx context.Context) error {
	var err error

	// Identity
	s.jwtService, err = security.NewJWTService(s.cfg.JWTSecret, s.cfg.BlobURLTTL, s.logger)
	if err != nil {
		return fmt.Errorf("JWT service init failed: %w", err)
	}
	s.passwordService = security.NewPasswordService()
	s.tokenService = security.NewTokenService(s.redis, s.logger)
	s.emailService = operations.NewEmailService(s.cfg, s.logger)

	providers := s.oauthProviders
	if s.cfg.GoogleOAuthEnabled() {
		providers = append(providers, security.NewGoogleOAuthProvider(
			s.cfg.GoogleClientID,
			s.cfg.GoogleClientSecret,
			s.cfg.GoogleRedirectURL,
			s.logger,
		))
		s.logger.Info("Google sign-in enabled")
	}
	s.identityGate = security.NewIdentityGate(
		s.userRepo,
		s.jwtService,
		s.passwordService,
		s.tokenService,
		s.cfg.FrontendURL,
		s.logger,
		providers...,
	)

	// Blob storage
	if err := s.initBlobStore(ctx); err != nil {
		return err
	}

	// Drive
	s.hierarchyService = content.NewHierarchyService(s.entryRepo, s.ownerLocker, s.blobs, content.HierarchyOptions{
		DeletePolicy: files.FolderDeletePolicy(s.cfg.FolderDeletePolicy),
		MaxDepth:     s.cfg.MaxFolderDepth,
	}, s.logger)
	s.quotaService = content.NewQuotaService(s.entryRepo, s.reservationRepo, s.ownerLocker, content.QuotaLimits{
		MaxFileSize:     s.cfg.MaxFileSize,
		MaxTotalStorage: s.cfg.MaxTotalStorage,
		ReservationTTL:  s.cfg.ReservationTTL,
	}, s.logger)
	s.uploadService = content.NewUploadService(
		s.hierarchyService,
		s.quotaService,
		s.blobs,
		s.ownerLocker,
		s.cfg.UploadConcurrency,
		s.logger,
	)
	s.archiveService = content.NewArchiveService(s.hierarchyService, s.uploadService, content.ArchiveLimits{
		MaxEntries: s.cfg.MaxArchiveEntries,
	}, s.logger)

	// Orphans younger than a live reservation may still be mid-upload.
	s.consistencyService = operations.NewConsistencyService(
		s.entryRepo,
		s.reservationRepo,
		s.blobs,
		max(operations.DefaultOrphanGrace, s.cfg.ReservationTTL),
		s.logger,
	)

	s.logger.WithFields(logrus.Fields{
		"blob_backend":  s.cfg.StorageBackend,
		"delete_policy": s.cfg.FolderDeletePolicy,
		"max_file_size": s.cfg.MaxFileSize,
		"max_total":     s.cfg.MaxTotalStorage,
	}).Info("Drive services initialized")

	return nil
}

// initBlobStore opens the configured blob backend
func (s *Server) initBlobStore(ctx context.Context) error {
	switch s.cfg.StorageBackend {
	case config.BackendS3:
		store, err := NewMinioBlobStore(ctx, s.cfg, s.logger)
		if err != nil {
			return err
		}
		s.blobs = store
		s.blobHealth = store
	default:
		store, err := storage.NewLocalStore(s.cfg.StoragePath, s.cfg.PublicBaseURL, s.jwtService, s.logger)
		if err != nil {
			return fmt.Errorf("local blob store init failed: %w", err)
		}
		s.blobs = store
		s.blobHealth = store
		s.diskPath = store.BasePath()
	}
	return nil
}

// initHandlers initializes HTTP handlers
func (s *Server) initHandlers() {
	s.authHandler = auth_handlers.NewHandler(
		s.identityGate,
		s.emailService,
		auth_handlers.NewCookieConfig(s.cfg.Environment, ""),
		s.logger,
	)

	s.filesHandler = files_handlers.NewHandler(
		s.hierarchyService,
		s.quotaService,
		s.uploadService,
		s.archiveService,
		files_handlers.UploadLimits{MaxFileSize: s.cfg.MaxFileSize},
		s.logger,
	)

	if s.cfg.StorageBackend != config.BackendS3 {
		s.blobHandler = files_handlers.NewBlobHandler(s.blobs, s.jwtService, s.logger)
	}
}

// initRouter creates and configures the Gin router
func (s *Server) initRouter() {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Middleware chain (Onion Principle)
	s.rateLimiter = logic.NewRateLimiter(s.cfg.RateLimitPerMin)
	s.authLimiter = logic.NewRateLimiter(authRequestsPerMinute)
	s.router.Use(
		core.PanicRecovery(s.logger),
		core.RequestID(),
		core.GinSecureHeaders(),
		core.CORS(s.cfg.CORSOrigins, s.logger),
		s.rateLimiter.Middleware(),
		core.AuditLogger(s.logger),
	)

	// OPTIONS preflight
	s.router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Multipart bodies beyond this spill to temp files
	s.router.MaxMultipartMemory = 32 << 20
}

// Handler returns the router wrapped in the outer security headers
func (s *Server) Handler() http.Handler {
	return core.SecureHeaders(s.router)
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// ConsistencyService exposes the sweep used by the scheduler and the CLI
func (s *Server) ConsistencyService() *operations.ConsistencyService {
	return s.consistencyService
}

// startBackgroundWorkers starts all background jobs
func (s *Server) startBackgroundWorkers() error {
	if err := scheduler.StartReconcileScheduler(s.consistencyService, s.cfg.ReconcileSchedule); err != nil {
		return fmt.Errorf("reconcile scheduler: %w", err)
	}
	return nil
}

// Run starts the HTTP server and waits for shutdown signal
func (s *Server) Run() error {
	if err := s.startBackgroundWorkers(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       600 * time.Second,
		WriteTimeout:      600 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		scheduler.StopScheduler()
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	s.logger.Info("Shutting down server...")
	scheduler.StopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Server forced to shutdown")
		return err
	}

	s.logger.Info("Server exited")
	return nil
}

// Close cleans up all resources
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.authLimiter != nil {
		s.authLimiter.Stop()
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}
