// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"tourly/internal/auth"
	"tourly/internal/availability"
	"tourly/internal/csvio"
	"tourly/internal/holds"
	"tourly/internal/notifications"
	"tourly/internal/orders"
	"tourly/internal/passengers"
	"tourly/internal/shared/config"
	"tourly/internal/shared/database"
	"tourly/internal/tours"
	"tourly/internal/wizard"
	"tourly/pkg/cache"
	"tourly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	cache    cache.Service
	producer notifications.Producer // nil when Kafka is disabled

	// services shared across route groups
	tourService    tours.Service
	holdService    holds.Service
	wizardService  wizard.Service
	passengerRepo  passengers.Repository
	oracle         availability.Oracle
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, producer notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		cache:    cacheService,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Shared building blocks. The wizard leans on tours, holds and the
	// availability oracle; the commit pipeline reuses all of them, so
	// these are built once and handed to each route group.
	pg := r.db.GetPostgreSQL()
	r.passengerRepo = passengers.NewRepository(pg)
	r.oracle = availability.NewOracle(availability.NewRepository(pg))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupTourRoutes(api)
		r.setupAvailabilityRoutes(api)
		r.setupHoldRoutes(api)
		r.setupWizardRoutes(api)
		r.setupOrderRoutes(api)
		r.setupManifestRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "tourly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "tourly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupTourRoutes configures the tour catalog routes
func (r *Router) setupTourRoutes(rg *gin.RouterGroup) {
	tourRepo := tours.NewRepository(r.db.GetPostgreSQL())
	r.tourService = tours.NewService(tourRepo, r.cache)
	tourController := tours.NewController(r.tourService)

	tours.SetupTourRoutes(rg, tourController)
}

// setupAvailabilityRoutes configures the seat availability routes
func (r *Router) setupAvailabilityRoutes(rg *gin.RouterGroup) {
	availabilityController := availability.NewController(r.oracle)

	availability.SetupAvailabilityRoutes(rg, availabilityController)
}

// setupHoldRoutes configures lead-passenger hold routes
func (r *Router) setupHoldRoutes(rg *gin.RouterGroup) {
	holdRepo := holds.NewRepository(r.db.GetPostgreSQL())
	atomic := holds.NewAtomicRedisOperations(r.db.GetRedisClient())
	r.holdService = holds.NewService(holdRepo, atomic, r.producer, r.config.Redis.LeadHoldTTL)
	holdController := holds.NewController(r.holdService)

	holds.SetupHoldRoutes(rg, holdController)
}

// setupWizardRoutes configures the booking wizard routes
func (r *Router) setupWizardRoutes(rg *gin.RouterGroup) {
	store := wizard.NewRedisStore(r.db.GetRedisClient(), r.config.Redis.WizardSessionTTL)
	r.wizardService = wizard.NewService(store, r.tourService, r.holdService, r.oracle, r.passengerRepo)
	wizardController := wizard.NewController(r.wizardService)

	wizard.SetupWizardRoutes(rg, wizardController)
}

// setupOrderRoutes configures the order commit pipeline routes
func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	orderRepo := orders.NewRepository(r.db.GetPostgreSQL())
	orderService := orders.NewService(
		orderRepo,
		r.passengerRepo,
		r.tourService,
		r.oracle,
		r.wizardService,
		r.holdService,
		r.producer,
		logger.GetDefault(),
	)
	orderController := orders.NewController(orderService)

	orders.SetupOrderRoutes(rg, orderController)
}

// setupManifestRoutes configures the passenger manifest CSV routes
func (r *Router) setupManifestRoutes(rg *gin.RouterGroup) {
	manifestController := csvio.NewController(r.passengerRepo)

	csvio.SetupManifestRoutes(rg, manifestController)
}
