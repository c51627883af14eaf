package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/openlot/parking-booking-backend/internal/api"
	"github.com/openlot/parking-booking-backend/internal/auth"
	"github.com/openlot/parking-booking-backend/internal/booking"
	"github.com/openlot/parking-booking-backend/internal/lot"
	"github.com/openlot/parking-booking-backend/internal/photo"
	"github.com/openlot/parking-booking-backend/internal/pkg/storage"
	"github.com/openlot/parking-booking-backend/internal/spot"
	"github.com/openlot/parking-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	StorageDir   string
	Logger       *logrus.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocal(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Spot Module
	spotRepo := spot.NewPgxRepository(cfg.DBPool)
	spotService := spot.NewService(spotRepo, cfg.Logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, spotService)

	// Lot Module
	lotRepo := lot.NewPgxRepository(cfg.DBPool)
	lotService := lot.NewService(lotRepo, spotRepo, cfg.Logger)

	// Photo Module
	photoRepo := photo.NewPgxRepository(cfg.DBPool)
	photoService := photo.NewService(photoRepo, spotService, store)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		SpotService:    spotService,
		BookingService: bookingService,
		LotService:     lotService,
		PhotoService:   photoService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
