package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"assetdesk/internal/auth"
	"assetdesk/internal/config"
	"assetdesk/internal/handler"
	"assetdesk/internal/middleware"
	"assetdesk/internal/repository/postgres"
	serviceAuth "assetdesk/internal/service/auth"
	serviceTree "assetdesk/internal/service/foldertree"
	"assetdesk/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Token verification, or a fixed user in dev
	var jwtVerifier auth.JWTVerifier
	if cfg.DevUserID != "" {
		logger.Warn("DEV MODE: authentication disabled, all requests run as dev user", "user_id", cfg.DevUserID)
	} else {
		jwtVerifier, err = auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("schema ensured", "assets_table", tables.Assets)
	}

	blobs, err := storage.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL, config.MaxUploadBytes, logger)
	if err != nil {
		log.Fatalf("Failed to open file storage: %v", err)
	}
	defer blobs.Close()

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	assetRepo := postgres.NewAssetRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(assetRepo)
	treeService := serviceTree.NewTreeService(assetRepo, blobs, txManager, authorizer, logger)

	// Handlers
	healthHandler := handler.NewHealthHandler(pool, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	folderHandler := handler.NewFolderHandler(treeService, logger)
	fileHandler := handler.NewFileHandler(treeService, blobs, authorizer, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Whole-tree routes ({kind} is docs or gallery)
	mux.HandleFunc("GET /api/assets/{id}/{kind}", treeHandler.GetTree)
	mux.HandleFunc("PUT /api/assets/{id}/{kind}", treeHandler.ReplaceTree)
	mux.HandleFunc("GET /api/assets/{id}/{kind}/tree", treeHandler.GetNestedTree)
	mux.HandleFunc("GET /api/assets/{id}/{kind}/children", treeHandler.ListChildren)

	// Folder routes
	mux.HandleFunc("POST /api/assets/{id}/{kind}/folders", folderHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/assets/{id}/{kind}/folders/{folderId}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/assets/{id}/{kind}/folders/{folderId}", folderHandler.DeleteFolder)

	// File routes
	mux.HandleFunc("POST /api/assets/{id}/{kind}/files", fileHandler.UploadFile)
	mux.HandleFunc("PATCH /api/assets/{id}/{kind}/files/{fileId}", fileHandler.UpdateFile)
	mux.HandleFunc("DELETE /api/assets/{id}/{kind}/files/{fileId}", fileHandler.DeleteFile)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.Download)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, cfg.DevUserID, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "If-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  60 * time.Second, // uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
