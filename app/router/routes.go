// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/app/handlers"
	"github.com/sepehr-hosseini/simorgh-crm/app/middleware"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	authHandler      handlers.AuthHandlerInterface
	callHandler      handlers.CallHandlerInterface
	upsellHandler    handlers.UpsellHandlerInterface
	dashboardHandler handlers.DashboardHandlerInterface
	importHandler    handlers.ImportHandlerInterface
	userHandler      handlers.UserHandlerInterface
	productHandler   handlers.ProductHandlerInterface
	authMiddleware   *middleware.AuthMiddleware
	allowedOrigins   []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	authHandler handlers.AuthHandlerInterface,
	callHandler handlers.CallHandlerInterface,
	upsellHandler handlers.UpsellHandlerInterface,
	dashboardHandler handlers.DashboardHandlerInterface,
	importHandler handlers.ImportHandlerInterface,
	userHandler handlers.UserHandlerInterface,
	productHandler handlers.ProductHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Simorgh CRM API",
		ServerHeader: "Simorgh-CRM",
		ErrorHandler: errorHandler,
		BodyLimit:    16 * 1024 * 1024, // 16MB, leaves headroom for import uploads
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		authHandler:      authHandler,
		callHandler:      callHandler,
		upsellHandler:    upsellHandler,
		dashboardHandler: dashboardHandler,
		importHandler:    importHandler,
		userHandler:      userHandler,
		productHandler:   productHandler,
		authMiddleware:   authMiddleware,
		allowedOrigins:   allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting on all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	auth.Post("/login", r.authHandler.Login)
	auth.Get("/admin/captcha", r.authHandler.AdminCaptcha)
	auth.Post("/admin/login", r.authHandler.AdminLogin)
	auth.Post("/refresh", r.authHandler.RefreshToken)
	auth.Post("/change-password", r.authMiddleware.Authenticate(), r.authHandler.ChangePassword)

	// Call lifecycle routes (any authenticated user)
	calls := api.Group("/calls", r.authMiddleware.Authenticate())
	calls.Post("/", r.callHandler.CreateCall)
	calls.Get("/", r.callHandler.ListCalls)
	calls.Get("/duplicate-check", r.callHandler.CheckDuplicate)
	calls.Post("/import", r.importHandler.ImportCalls)
	calls.Get("/:id", r.callHandler.GetCall)
	calls.Put("/:id", r.callHandler.UpdateCall)
	calls.Post("/:id/answer", r.callHandler.AnswerCall)
	calls.Post("/:id/end", r.callHandler.EndCall)
	calls.Post("/:id/unattended", r.callHandler.MarkUnattended)
	calls.Post("/:id/callback", r.callHandler.MarkCallback)
	calls.Post("/:id/reset", r.callHandler.ResetCall)
	calls.Post("/:id/assign", r.callHandler.AssignAgent)
	calls.Post("/:id/upsell/offer", r.upsellHandler.OfferUpsell)
	calls.Post("/:id/upsell/apply", r.upsellHandler.ApplyUpsell)
	calls.Post("/:id/upsell/decline", r.upsellHandler.DeclineUpsell)

	// Dashboard routes (any authenticated user)
	dashboard := api.Group("/dashboard", r.authMiddleware.Authenticate())
	dashboard.Get("/stats", r.dashboardHandler.DailyStats)
	dashboard.Get("/agent-performance", r.dashboardHandler.AgentPerformance)
	dashboard.Get("/agent-performance/export", r.dashboardHandler.ExportAgentPerformance)

	// Admin routes (admin role required)
	admin := api.Group("/admin", r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
	admin.Post("/users", r.userHandler.CreateUser)
	admin.Get("/users", r.userHandler.ListUsers)
	admin.Put("/users/:id", r.userHandler.UpdateUser)
	admin.Post("/products", r.productHandler.CreateProduct)
	admin.Get("/products", r.productHandler.ListProducts)
	admin.Put("/products/:id", r.productHandler.UpdateProduct)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Excel downloads are already compressed
			contentType := c.Get("Content-Type")
			return contentType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		},
	}))

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "simorgh-crm-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
