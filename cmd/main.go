package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/sbilibin2017/reflection-tracker/internal/handlers"
	"github.com/sbilibin2017/reflection-tracker/internal/jwt"
	"github.com/sbilibin2017/reflection-tracker/internal/logger"
	"github.com/sbilibin2017/reflection-tracker/internal/middlewares"
	"github.com/sbilibin2017/reflection-tracker/internal/repositories"
	"github.com/sbilibin2017/reflection-tracker/internal/services"
	"github.com/sbilibin2017/reflection-tracker/migrations"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "modernc.org/sqlite"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title reflection-tracker API
// @version 1.0.0
// @description Service for daily self-assessment ratings and rolling 30-day averages
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		sqlitePath, sqliteMaxOpenConns, sqliteMaxIdleConns,
		jwtSecret, jwtExpSecond,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		sqlitePath, sqliteMaxOpenConns, sqliteMaxIdleConns,
		jwtSecret, jwtExpSecond,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// all application, database, logging, and JWT configuration.
// JWT_SECRET_KEY deliberately has no default: the signing secret must
// come from the environment, never from source text.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	sqlitePath string, sqliteMaxOpenConns, sqliteMaxIdleConns int,
	jwtSecretKey string, jwtExpSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// SQLite config
	sqlitePath = getEnv("SQLITE_PATH", "reflection.db")
	if sqliteMaxOpenConns, err = strconv.Atoi(getEnv("SQLITE_MAX_OPEN_CONNS", "1")); err != nil {
		return
	}
	if sqliteMaxIdleConns, err = strconv.Atoi(getEnv("SQLITE_MAX_IDLE_CONNS", "1")); err != nil {
		return
	}

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "604800")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, and HTTP server. It sets up
// routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	sqlitePath string, sqliteMaxOpenConns, sqliteMaxIdleConns int,
	jwtSecretKey string, jwtExpSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	if jwtSecretKey == "" {
		return errors.New("JWT_SECRET_KEY must be set")
	}

	// Open SQLite database
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqlitePath)
	logger.Log.Infof("Opening SQLite database: %s", sqlitePath)

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		logger.Log.Errorw("SQLite connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(sqliteMaxOpenConns)
	db.SetMaxIdleConns(sqliteMaxIdleConns)

	// Apply embedded schema (idempotent)
	if err := migrations.Apply(ctx, db); err != nil {
		logger.Log.Errorw("schema apply failed", "error", err)
		return err
	}

	// Initialize JWT service
	tokener := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithExpiration(time.Duration(jwtExpSecond)*time.Second),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	entryReadRepo := repositories.NewEntryReadRepository(db)
	entryWriteRepo := repositories.NewEntryWriteRepository(db)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokener)
	entryService := services.NewEntryService(userReadRepo, entryReadRepo, entryWriteRepo)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	tokenHandler := handlers.NewTokenHandler(authService)
	createEntryHandler := handlers.NewCreateEntryHandler(entryService, tokener)
	listEntriesHandler := handlers.NewListEntriesHandler(entryService, tokener)
	statsHandler := handlers.NewStatsHandler(entryService, tokener)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Post("/register", registerHandler)
	r.Post("/token", tokenHandler)

	// Protected routes with JWT middleware
	authMiddleware := middlewares.AuthMiddleware(tokener)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/entry/", createEntryHandler)
		r.Get("/entries/{user_id}", listEntriesHandler)
		r.Get("/stats/{user_id}", statsHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
