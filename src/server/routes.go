package server

import (
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/drive-clone/api/src/handlers"
	"github.com/drive-clone/api/src/middleware/logic"
)

// SetupRoutes configures all HTTP routes (SRP: Routing Only)
func (s *Server) SetupRoutes() {
	// === PUBLIC ROUTES (no auth, but rate-limited) ===
	s.router.GET("/health", handlers.Health(handlers.HealthDeps{
		DB:       s.db,
		Redis:    s.redis,
		Blobs:    s.blobHealth,
		DiskPath: s.diskPath,
	}, s.logger))

	// Swagger documentation (only outside production)
	if s.cfg.Environment != "production" {
		s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	s.setupAuthRoutes()
	s.setupV1Routes()
}

// setupAuthRoutes configures sign-up, sign-in, sessions and OAuth
func (s *Server) setupAuthRoutes() {
	s.authHandler.RegisterGlobalRoutes(s.router.Group("/auth"), s.authLimiter)
}

// setupV1Routes configures the drive API. Only the blob endpoint is public;
// its signed token is the credential.
func (s *Server) setupV1Routes() {
	if s.blobHandler != nil {
		s.blobHandler.RegisterPublicRoutes(s.router.Group("/api/v1"))
	}

	v1 := s.router.Group("/api/v1")
	v1.Use(logic.AuthMiddleware(s.identityGate, s.logger))
	{
		s.authHandler.RegisterV1Routes(v1)
		s.filesHandler.RegisterV1Routes(v1)
	}
}
