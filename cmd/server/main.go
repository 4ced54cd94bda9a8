package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"cubby/internal/auth"
	"cubby/internal/config"
	"cubby/internal/domain/storage"
	"cubby/internal/handler"
	"cubby/internal/middleware"
	"cubby/internal/repository/postgres"
	postgresDrive "cubby/internal/repository/postgres/drive"
	serviceDrive "cubby/internal/service/drive"
	"cubby/internal/storage/memory"
	"cubby/internal/storage/s3"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	limits, err := config.LoadLimits(cfg.LimitsFile)
	if err != nil {
		// A broken limits file falls back to defaults rather than
		// blocking startup
		logger.Warn("limits file ignored", "path", cfg.LimitsFile, "error", err)
	}

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"blob_backend", cfg.BlobBackend,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Blob storage backend
	var blobs storage.BlobStore
	switch cfg.BlobBackend {
	case "memory":
		blobs = memory.New()
		logger.Warn("using in-memory blob storage (dev only, contents are lost on restart)")
	default:
		blobs, err = s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			KeyPrefix: cfg.S3KeyPrefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to connect blob storage: %v", err)
		}
		logger.Info("blob storage connected", "bucket", cfg.S3Bucket)
	}

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	workspaceRepo := postgresDrive.NewWorkspaceRepository(repoConfig)
	folderRepo := postgresDrive.NewFolderRepository(repoConfig)
	fileRepo := postgresDrive.NewFileRepository(repoConfig)
	linkRepo := postgresDrive.NewLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	workspaceService := serviceDrive.NewWorkspaceService(workspaceRepo, logger)
	folderService := serviceDrive.NewFolderService(folderRepo, fileRepo, linkRepo, blobs, txManager, limits, logger)
	fileService := serviceDrive.NewFileService(fileRepo, folderRepo, blobs, txManager, limits, logger)
	bulkService := serviceDrive.NewBulkService(folderService, fileService, folderRepo, fileRepo, blobs, txManager, limits, logger)
	treeService := serviceDrive.NewTreeService(folderRepo, fileRepo, logger)
	archiveService := serviceDrive.NewArchiveService(folderRepo, blobs, logger)
	linkBinder := serviceDrive.NewLinkBinder(folderRepo, linkRepo, serviceDrive.NewRepoLinkCreator(linkRepo), txManager, limits, logger)

	logger.Info("services initialized")

	// Create handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	bulkHandler := handler.NewBulkHandler(bulkService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	archiveHandler := handler.NewArchiveHandler(archiveService, logger)
	linkHandler := handler.NewLinkHandler(linkBinder, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", workspaceHandler.HealthCheck)

	// Workspace routes
	mux.HandleFunc("GET /api/workspace", workspaceHandler.GetWorkspace)
	mux.HandleFunc("GET /api/workspace/tree", treeHandler.GetTree)

	// Folder routes
	mux.HandleFunc("GET /api/folders", folderHandler.ListRoot)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/archive", archiveHandler.DownloadArchive)

	// Folder-link binding routes
	mux.HandleFunc("POST /api/folders/{id}/link", linkHandler.BindNew)
	mux.HandleFunc("PUT /api/folders/{id}/link", linkHandler.BindExisting)
	mux.HandleFunc("DELETE /api/folders/{id}/link", linkHandler.Unbind)
	mux.HandleFunc("GET /api/links", linkHandler.ListLinks)

	// File routes
	mux.HandleFunc("POST /api/files", fileHandler.UploadFile)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.GetFile)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.DownloadFile)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.DeleteFile)

	// Bulk mutation routes
	mux.HandleFunc("POST /api/bulk/move", bulkHandler.BulkMove)
	mux.HandleFunc("POST /api/bulk/delete", bulkHandler.BulkDelete)
	mux.HandleFunc("POST /api/drop", bulkHandler.Drop)

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS → Recovery → Auth → Workspace → Routes
	sessionResolver := sessionResolverFor(cfg, logger)

	var root http.Handler = mux
	root = middleware.Workspace(workspaceService)(root)
	root = middleware.Auth(sessionResolver)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // archive downloads can be large
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// sessionResolverFor picks the session source. Only the header-based dev
// resolver exists today; production verification plugs in behind the
// same interface.
func sessionResolverFor(cfg *config.Config, logger *slog.Logger) auth.SessionResolver {
	fallback := ""
	if cfg.Environment == "dev" {
		fallback = "dev-user"
		logger.Warn("DEV MODE: sessions resolved from X-User-ID header with fallback user")
	}
	return auth.NewHeaderResolver(fallback)
}
