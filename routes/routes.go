package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/controllers"
	_ "github.com/HodeX7/KDJeevraksha/docs"
	"github.com/HodeX7/KDJeevraksha/middleware"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services/container"
)

// SetupRouter initializes and returns the configured router
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// CORS for the field apps
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	serviceContainer := container.NewServiceContainer(db, cfg)
	middleware.InitAuthMiddleware(db, cfg)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded photos are served as static files; the records store relative
	// paths under this prefix.
	r.Static("/"+cfg.UploadDir, cfg.UploadDir)

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes registers the routes reachable without a token
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// Health check
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api.POST("/auth/signup", controllers.HandleAuthFunc(container, "signup"))
	api.POST("/auth/login", controllers.HandleAuthFunc(container, "login"))

	// The PIN endpoints are rate limited per IP to slow down brute forcing.
	pin := api.Group("/auth")
	pin.Use(middleware.RateLimitByIP(1, 5))
	pin.POST("/setpin", controllers.HandleAuthFunc(container, "setPin"))
	pin.POST("/enterpin", controllers.HandleAuthFunc(container, "enterPin"))
}

// registerAuthenticatedRoutes registers the routes requiring a bearer token
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// Staff management is admin only
	admin := auth.Group("/users")
	admin.Use(middleware.AuthenticateAdmin())
	admin.GET("", controllers.HandleUserFunc(container, "getUsers"))
	admin.GET("/:id", controllers.HandleUserFunc(container, "getUser"))
	admin.PUT("/:id", controllers.HandleUserFunc(container, "updateUser"))
	admin.DELETE("/:id", controllers.HandleUserFunc(container, "deleteUser"))

	// Kennel pool
	auth.Group("/kennels").GET("", middleware.Cache(), controllers.HandleKennelFunc(container, "getKennels"))
	auth.Group("/kennels").GET("/:number", controllers.HandleKennelFunc(container, "getKennel"))
	auth.Group("/kennels").POST("", middleware.AuthenticateAdmin(), controllers.HandleKennelFunc(container, "createKennel"))

	// Case lifecycle
	auth.Group("/dogs").GET("", middleware.Cache(), controllers.HandleDogFunc(container, "getDogs"))
	auth.Group("/dogs").GET("/observable", middleware.Cache(), controllers.HandleDogFunc(container, "getObservable"))
	auth.Group("/dogs").GET("/dispatchable", middleware.Cache(), controllers.HandleDogFunc(container, "getDispatchable"))
	auth.Group("/dogs").GET("/releasable", middleware.Cache(), controllers.HandleDogFunc(container, "getReleasable"))
	auth.Group("/dogs").GET("/kennel/:number", controllers.HandleDogFunc(container, "getDogByKennel"))
	auth.Group("/dogs").GET("/:id", controllers.HandleDogFunc(container, "getDog"))
	auth.Group("/dogs").POST("", middleware.RequireRoles(models.RoleCatcher), controllers.HandleDogFunc(container, "createCase"))
	auth.Group("/dogs").POST("/:id/observation", controllers.HandleDogFunc(container, "recordObservation"))
	auth.Group("/dogs").PUT("/:id/catcher", middleware.RequireRoles(models.RoleCatcher), controllers.HandleDogFunc(container, "updateCatcherDetails"))
	auth.Group("/dogs").PUT("/:id/vet", middleware.RequireRoles(models.RoleVet), controllers.HandleDogFunc(container, "updateVetDetails"))
	auth.Group("/dogs").POST("/:id/reports", middleware.RequireRoles(models.RoleCaretaker), controllers.HandleDogFunc(container, "addCareTakerReport"))
	auth.Group("/dogs").POST("/:id/dispatch", controllers.HandleDogFunc(container, "dispatchDog"))
	auth.Group("/dogs").POST("/:id/release", middleware.RequireRoles(models.RoleCatcher), controllers.HandleDogFunc(container, "releaseDog"))
	auth.Group("/dogs").DELETE("/:id", middleware.AuthenticateAdmin(), controllers.HandleDogFunc(container, "deleteDog"))

	// Report exports are admin only
	reports := auth.Group("/reports")
	reports.Use(middleware.AuthenticateAdmin())
	reports.POST("/export", controllers.HandleReportFunc(container, "exportByIDs"))
	reports.GET("/export", controllers.HandleReportFunc(container, "exportByDateRange"))
}
