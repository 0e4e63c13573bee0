package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/docs"
	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/controllers"
	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// application bundles everything the router needs
type application struct {
	config             *config.Config
	db                 *gorm.DB
	recipeController   *controllers.RecipeController
	categoryController *controllers.CategoryController
}

// @title Recipe API
// @version 1.0
// @description Recipe catalog with categories and image storage
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	logFile := setUpLogger(configuration)
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database connection
	db := setupDatabase(configuration)

	// Initialize image storage
	store, err := storage.New(context.Background(), configuration.Storage())
	checkPanicErr(err)

	// Initialize services and controllers
	images := services.NewImageService(store, configuration.ImagesURLPrefix(), configuration.MaxImageSize)
	app := &application{
		config:             configuration,
		db:                 db,
		recipeController:   controllers.NewRecipeController(services.NewRecipeService(db, images), images, configuration.MaxImageSize),
		categoryController: controllers.NewCategoryController(services.NewCategoryService(db)),
	}

	if err := run(app); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped gracefully")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL overrides the environment default and LOG_FILE adds a rotating file sink.
func setUpLogger(conf *config.Config) io.Closer {
	log.SetFormatter(&log.JSONFormatter{})

	level := config.LevelForEnvironment(conf.Environment)
	if conf.LogLevel != "" {
		if parsed, err := log.ParseLevel(conf.LogLevel); err == nil {
			level = parsed
		}
	}
	log.SetLevel(level)
	database.SetLogLevel(level)

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if conf.LogFile == "" {
		return nil
	}
	rotating := &lumberjack.Logger{
		Filename:   conf.LogFile,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return rotating
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates and optionally seeds the database
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)

	checkPanicErr(database.Migrate(db))
	if conf.DBSeed {
		checkPanicErr(database.Seed(db))
	}
	return db
}

// run serves HTTP until SIGINT or SIGTERM and then drains in-flight requests
func run(app *application) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", app.config.Host, app.config.Port),
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if sqlDB, err := app.db.DB(); err == nil {
			sqlDB.Close()
		}
		return nil
	})

	return g.Wait()
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(app *application) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(log.StandardLogger()),
		middleware.Recovery(log.StandardLogger()),
		middleware.Metrics(),
		middleware.CORS(),
	)

	setupRoutes(router, app)
	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, app *application) {
	router.GET("/health", healthCheckHandler(app.db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(app.config.RateLimit, app.config.RateLimitBurst))
	{
		v1.GET("/recipes", app.recipeController.GetAllRecipes)
		v1.GET("/recipes/:id", app.recipeController.GetRecipeByID)
		v1.GET("/recipes/images/:filename", app.recipeController.GetRecipeImage)
		v1.GET("/categories", app.categoryController.GetAllCategories)
		v1.GET("/categories/:id", app.categoryController.GetCategoryByID)

		// Write routes require an editor token when auth is enabled
		writeApi := v1.Group("")
		if app.config.AuthEnabled {
			writeApi.Use(
				middleware.BearerAuth([]byte(app.config.JWTSecret)),
				middleware.RequireRole(auth.WriteRoles...),
			)
		}
		{
			writeApi.POST("/recipes", app.recipeController.CreateRecipe)
			writeApi.PUT("/recipes/:id", app.recipeController.UpdateRecipe)
			writeApi.PATCH("/recipes/:id", app.recipeController.UpdateRecipe)
			writeApi.DELETE("/recipes/:id", app.recipeController.DeleteRecipe)

			writeApi.POST("/categories", app.categoryController.CreateCategory)
			writeApi.PUT("/categories/:id", app.categoryController.UpdateCategory)
			writeApi.DELETE("/categories/:id", app.categoryController.DeleteCategory)
		}
	}

	// Swagger documentation
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", app.config.Host, app.config.Port)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "gin-recipe-api",
		})
	}
}
