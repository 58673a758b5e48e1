package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Skufu/StrokeGuard/internal/assessment"
	"github.com/Skufu/StrokeGuard/internal/features"
	"github.com/Skufu/StrokeGuard/internal/metrics"
	"github.com/Skufu/StrokeGuard/internal/model"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ModelChecker is implemented by model collaborators that live out of process.
type ModelChecker interface {
	Ready(ctx context.Context) error
}

type Config struct {
	Port         string
	DatabaseURL  string
	EnableDB     bool
	ModelPath    string
	ModelURL     string
	ModelTimeout time.Duration
	LogLevel     string
	LogFormat    string
}

// App bundles what the router needs to serve requests.
type App struct {
	Assessor   *assessment.Service
	ModelName  string
	ModelCheck ModelChecker
	DB         HealthChecker
	Metrics    *metrics.Metrics
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	initLogger(cfg.LogLevel, cfg.LogFormat)

	predictor, modelName, modelCheck, err := loadPredictor(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("model unavailable")
	}
	log.Info().Str("model", modelName).Msg("model loaded")

	ctx := context.Background()
	var db HealthChecker
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer pool.Close()
		db = pool
	}

	m := metrics.New()
	app := &App{
		Assessor:   assessment.NewService(predictor, assessment.WithRecorder(m), assessment.WithLogger(log.Logger)),
		ModelName:  modelName,
		ModelCheck: modelCheck,
		DB:         db,
		Metrics:    m,
	}

	staticRoot := detectStaticRoot()
	router := setupRouter(app, staticRoot)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("static_root", staticRoot).Msg("server listening")
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("MODEL_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		EnableDB:     strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		ModelPath:    getEnv("MODEL_PATH", filepath.Join("models", "stroke_model.json")),
		ModelURL:     os.Getenv("MODEL_URL"),
		ModelTimeout: timeout,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

// loadPredictor returns the remote client when MODEL_URL is set, otherwise
// the artifact at MODEL_PATH. A local artifact must match the feature schema.
func loadPredictor(cfg *Config) (assessment.Predictor, string, ModelChecker, error) {
	if cfg.ModelURL != "" {
		remote := model.NewRemote(cfg.ModelURL, cfg.ModelTimeout)
		return remote, cfg.ModelURL, remote, nil
	}

	pipeline, err := model.Load(cfg.ModelPath)
	if err != nil {
		return nil, "", nil, err
	}
	if err := pipeline.CheckSchema(features.Columns()); err != nil {
		return nil, "", nil, fmt.Errorf("model %s: %w", cfg.ModelPath, err)
	}
	return pipeline, pipeline.Name() + "@" + pipeline.Version(), nil, nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func setupRouter(app *App, staticRoot string) *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.StaticFile("/", filepath.Join(staticRoot, "index.html"))
	router.StaticFile("/styles.css", filepath.Join(staticRoot, "styles.css"))
	router.StaticFile("/app.js", filepath.Join(staticRoot, "app.js"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "model": "ok", "db": "disabled"}

		if app.ModelCheck != nil {
			if err := app.ModelCheck.Ready(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["model"] = fmt.Sprintf("unhealthy: %v", err)
			}
		}
		if app.DB != nil {
			body["db"] = "ok"
			if err := app.DB.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["db"] = fmt.Sprintf("unhealthy: %v", err)
			}
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}

		c.JSON(status, body)
	})

	if app.Metrics != nil {
		router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/options", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"model":          app.ModelName,
				"gender":         features.Genders,
				"ever_married":   features.YesNo,
				"work_type":      features.WorkTypes,
				"residence_type": features.ResidenceTypes,
				"smoking_status": features.SmokingStatus,
				"defaults":       features.DefaultInput(),
			})
		})

		api.POST("/features", func(c *gin.Context) {
			var payload features.PatientInput
			if err := c.ShouldBindJSON(&payload); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, features.Normalize(payload))
		})

		api.POST("/assessments", func(c *gin.Context) {
			var payload features.PatientInput
			if err := c.ShouldBindJSON(&payload); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
				return
			}

			result, err := app.Assessor.Assess(c.Request.Context(), payload)
			if err != nil {
				status := http.StatusBadGateway
				if errors.Is(err, model.ErrSchemaMismatch) {
					status = http.StatusUnprocessableEntity
				}
				c.JSON(status, gin.H{"error": "prediction_failed", "details": err.Error()})
				return
			}

			c.JSON(http.StatusOK, result)
		})
	}

	return router
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// detectStaticRoot finds the web/ directory holding index.html, looking in
// the working directory and up to two parents.
func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		web := filepath.Join(dir, "web")
		if fileExists(filepath.Join(web, "index.html")) {
			return web
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
