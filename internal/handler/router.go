package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farelock/internal/handler/api"
	"farelock/internal/handler/middleware"
	"farelock/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	snapshotHandler *api.SnapshotHandler,
	bookingHandler *api.BookingHandler,
	paymentHandler *api.PaymentHandler,
	seatHandler *api.SeatHandler,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, snapshotHandler, bookingHandler, paymentHandler, seatHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	snapshotHandler *api.SnapshotHandler,
	bookingHandler *api.BookingHandler,
	paymentHandler *api.PaymentHandler,
	seatHandler *api.SeatHandler,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		snapshots := apiGroup.Group("/snapshots")
		{
			addRoutes(snapshots, []route{
				{Method: http.MethodPost, Path: "", Handler: snapshotHandler.LockPrice},
				{Method: http.MethodGet, Path: "/:id", Handler: snapshotHandler.GetSnapshot},
				{Method: http.MethodPost, Path: "/review", Handler: snapshotHandler.ReviewFare},
			})
		}

		bookings := apiGroup.Group("/bookings")
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "/hold", Handler: bookingHandler.HoldBooking},
				{Method: http.MethodPost, Path: "/book", Handler: bookingHandler.InstantBook},
				{Method: http.MethodGet, Path: "/:bookingId", Handler: bookingHandler.GetBooking},
				{Method: http.MethodPost, Path: "/:bookingId/confirm", Handler: bookingHandler.ConfirmBooking},
				{Method: http.MethodGet, Path: "/:bookingId/seatmap", Handler: seatHandler.GetSeatMap},
				{Method: http.MethodPost, Path: "/:bookingId/seats", Handler: seatHandler.SelectSeats},
				{Method: http.MethodPost, Path: "/:bookingId/cancellation/charges", Handler: bookingHandler.GetCancellationCharges},
				{Method: http.MethodPost, Path: "/:bookingId/cancellation", Handler: bookingHandler.SubmitCancellation},
				{Method: http.MethodPost, Path: "/:bookingId/release", Handler: bookingHandler.ReleasePNR},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/cancellations/:amendmentId", Handler: bookingHandler.GetCancellationStatus},
			{Method: http.MethodGet, Path: "/farerules", Handler: bookingHandler.GetFareRules},
		})

		payments := apiGroup.Group("/payments")
		{
			addRoutes(payments, []route{
				{Method: http.MethodPost, Path: "/:bookingId/order", Handler: paymentHandler.CreateOrder},
				{Method: http.MethodPost, Path: "/verify", Handler: paymentHandler.VerifyPayment},
				{Method: http.MethodPost, Path: "/webhook", Handler: paymentHandler.Webhook},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
