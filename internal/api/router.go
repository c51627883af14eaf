package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/auth"
	"github.com/openlot/parking-booking-backend/internal/booking"
	bookingHttp "github.com/openlot/parking-booking-backend/internal/booking/http"
	"github.com/openlot/parking-booking-backend/internal/lot"
	lotHttp "github.com/openlot/parking-booking-backend/internal/lot/http"
	"github.com/openlot/parking-booking-backend/internal/photo"
	photoHttp "github.com/openlot/parking-booking-backend/internal/photo/http"
	"github.com/openlot/parking-booking-backend/internal/spot"
	spotHttp "github.com/openlot/parking-booking-backend/internal/spot/http"
	"github.com/openlot/parking-booking-backend/internal/user"
)

// Config holds everything the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService    user.Service
	SpotService    spot.Service
	BookingService booking.Service
	LotService     lot.Service
	PhotoService   photo.Service

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for
// every module under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.Required(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is an admin.
	adminMiddleware := RequireAdmin(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	authHandler := NewAuthHandler(cfg.UserService, cfg.JWTManager)
	spotHandler := spotHttp.NewHandler(cfg.SpotService, cfg.BookingService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.UserService)
	lotHandler := lotHttp.NewHandler(cfg.LotService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/me", authMiddleware, authHandler.Me)

		spotHttp.RegisterRoutes(v1, spotHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		lotHttp.RegisterRoutes(v1, lotHandler, authMiddleware, adminMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware, adminMiddleware)
	}

	return r
}
