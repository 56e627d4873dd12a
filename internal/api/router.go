package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/middleware" // Identity, logging and rate limiting
	"account_service/internal/service"    // Account services

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the services and settings the router is built from
type Deps struct {
	DB                *gorm.DB
	Redis             *redis.Client // nil when the blacklist is in memory
	Logger            *logrus.Logger
	Auth              *service.AuthService
	Users             *service.UserService
	Profiles          *service.ProfileService
	Addresses         *service.AddressService
	Orders            *service.OrderService
	LoginRateLimitRPM int      // 0 disables the login limiter
	TrustedProxies    []string // nil trusts no proxy headers
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) (*gin.Engine, error) {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := gin.New()
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	limiter := middleware.NewLoginRateLimiter(d.LoginRateLimitRPM) // Shared by /login and Basic auth
	authn := middleware.Authenticate(d.Auth, limiter)               // Basic or Bearer identity

	r.GET("/healthz", HealthHandler(d.DB, d.Redis))

	// Auth routes
	r.POST("/login", limiter.Handler(), LoginHandler(d.Auth))
	r.POST("/logout", LogoutHandler(d.Auth))
	r.GET("/protected", authn, ProtectedHandler())

	// Registration, with the legacy singular alias
	r.POST("/users", RegisterHandler(d.Users))
	r.POST("/user", RegisterHandler(d.Users))

	users := r.Group("/users", authn)
	users.GET("", middleware.AdminOnlyMiddleware(), ListUsersHandler(d.Users))

	// Self routes operate on the resolved identity
	users.GET("/me", GetMeHandler())
	users.PUT("/me", UpdateMeHandler(d.Users))
	users.DELETE("/me", DeleteMeHandler(d.Users))
	users.GET("/me/profile", GetProfileHandler(d.Profiles))
	users.PUT("/me/profile", UpdateProfileHandler(d.Profiles))
	users.GET("/me/addresses", ListAddressesHandler(d.Addresses))
	users.POST("/me/addresses", CreateAddressHandler(d.Addresses))
	users.DELETE("/me/addresses/:id", DeleteAddressHandler(d.Addresses))
	users.GET("/me/orders", ListOrdersHandler(d.Orders))
	users.POST("/me/orders", CreateOrderHandler(d.Orders))
	users.DELETE("/me/orders/:id", DeleteOrderHandler(d.Orders))

	// Admin or self
	users.GET("/:username", GetUserHandler(d.Users))
	users.PUT("/:username", UpdateUserHandler(d.Users))
	users.DELETE("/:username", DeleteUserHandler(d.Users))

	// Admin routes (protected, admin only)
	admin := r.Group("/admin", authn, middleware.AdminOnlyMiddleware())
	admin.GET("/users", AdminUsersHandler(d.Users))
	admin.GET("/profiles", AdminProfilesHandler(d.Profiles))
	admin.GET("/addresses", AdminAddressesHandler(d.Addresses))
	admin.GET("/orders", AdminOrdersHandler(d.Orders))

	return r, nil
}

// HealthHandler pings the database and, when configured, Redis
func HealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := http.StatusOK
		body := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logrus.WithError(err).Error("Database health check failed")
			status = http.StatusServiceUnavailable
			body["database"] = "unavailable"
		}

		if rdb != nil {
			body["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				logrus.WithError(err).Error("Redis health check failed")
				status = http.StatusServiceUnavailable
				body["redis"] = "unavailable"
			}
		}

		if status != http.StatusOK {
			body["status"] = "unavailable"
		}
		c.JSON(status, body)
	}
}
