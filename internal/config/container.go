package config

import (
	"docscan-gateway/internal/domain"
	"docscan-gateway/internal/infra/supabase"
	"docscan-gateway/internal/repository"
	"docscan-gateway/internal/service"
	"docscan-gateway/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config          domain.Config
	Logger          domain.Logger
	SupabaseClient  domain.SupabaseClient
	AuthService     domain.AuthService
	DocumentRepo    domain.DocumentRepository
	DocumentService domain.DocumentService
	ScanStore       *service.ScanStore
	ImageService    *service.ImageService
	UploadService   *service.UploadService
	WatchManager    *service.WatchManager
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	supabaseClient := supabase.NewClient(config, appLogger)
	authService := service.NewAuthService(supabaseClient, appLogger)

	backendClient := repository.NewBackendClient(config, appLogger)
	documentRepo := repository.NewOCRDocumentRepository(backendClient, appLogger)
	documentService := service.NewDocumentService(documentRepo, appLogger)

	scanStore := service.NewScanStore(appLogger)
	imageService := service.NewImageService(scanStore, appLogger)
	uploadService := service.NewUploadService(documentRepo, scanStore, appLogger)

	poller := service.NewStatusPoller(documentRepo, appLogger, config.GetPollInterval())
	watchManager := service.NewWatchManager(poller, appLogger)

	return &Container{
		Config:          config,
		Logger:          appLogger,
		SupabaseClient:  supabaseClient,
		AuthService:     authService,
		DocumentRepo:    documentRepo,
		DocumentService: documentService,
		ScanStore:       scanStore,
		ImageService:    imageService,
		UploadService:   uploadService,
		WatchManager:    watchManager,
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetSupabaseClient returns the Supabase client instance
func (c *Container) GetSupabaseClient() domain.SupabaseClient {
	return c.SupabaseClient
}
