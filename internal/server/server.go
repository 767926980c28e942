package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"labslot/internal/auth"
	"labslot/internal/config"
	"labslot/internal/facility"
	"labslot/internal/reporter"
	"labslot/internal/reservation"
	"labslot/internal/search"
	"labslot/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, rep *reporter.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	facilityRepo := facility.NewRepository(db)
	reservationRepo := reservation.NewRepository(db)

	userHandler := user.NewHandler(user.NewService(userRepo, cfg.JWTSecret))
	facilityHandler := facility.NewHandler(facility.NewService(facilityRepo))
	reservationHandler := reservation.NewHandler(reservation.NewService(
		reservationRepo, facilityRepo, userRepo, rep, cfg.GracePeriod,
	))
	searchHandler := search.NewHandler(search.NewService(facilityRepo, reservationRepo, userRepo))

	debouncer := NewDebouncer(cfg.DebounceWindow, cfg.DebounceTTL)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/facilities", facilityHandler.ListFacilities)
		protected.GET("/facilities/:facilityID", facilityHandler.GetFacility)
		protected.GET("/facilities/:facilityID/free-slots", searchHandler.FreeSlots)

		protected.GET("/reservations", reservationHandler.ListMine)
		protected.GET("/reservations/:reservationID", reservationHandler.GetByID)
		protected.POST("/reservations", DebounceMiddleware(debouncer), reservationHandler.Create)
		protected.PATCH("/reservations/:reservationID", DebounceMiddleware(debouncer), reservationHandler.Edit)
		protected.DELETE("/reservations/:reservationID", reservationHandler.Delete)
	}

	staffMiddleware := auth.RequireRole(auth.RoleStaff)
	staff := router.Group("/staff")
	staff.Use(authMiddleware, staffMiddleware)
	{
		staff.GET("/members", searchHandler.FindMembers)
		staff.GET("/reservations", reservationHandler.ListAll)
		staff.POST("/reservations", DebounceMiddleware(debouncer), reservationHandler.CreateOnBehalf)
		staff.DELETE("/reservations/:reservationID", reservationHandler.RemoveByStaff)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
