package router

import (
	"net/http/httputil"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/checkout"
	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/handlers"
	"storefront_gateway/internal/listing"
	"storefront_gateway/internal/middleware"
	"storefront_gateway/internal/proxy"
	"storefront_gateway/internal/session"
)

// Deps is everything the routes are built from.
type Deps struct {
	Auth     clients.AuthClient
	Catalog  clients.CatalogClient
	Orders   clients.OrderClient
	Users    clients.UserClient
	Checkout *checkout.Service
	Sessions *session.Store
	Storage  *httputil.ReverseProxy
	Cookies  middleware.Cookies
	Origins  []string
	Health   gin.HandlerFunc
	Logger   *logrus.Logger
}

// New wires middleware and routes.
func New(d Deps) *gin.Engine {
	logger := d.Logger

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	if len(d.Origins) > 0 {
		r.Use(middleware.CORS(d.Origins))
	}

	if d.Health != nil {
		r.GET("/health", d.Health)
	}
	if d.Storage != nil {
		r.GET("/storage/*path", proxy.ProxyHandler(d.Storage, logger))
		r.HEAD("/storage/*path", proxy.ProxyHandler(d.Storage, logger))
	}

	authHandler := handlers.NewAuthHandler(d.Auth, logger)
	productHandler := handlers.NewProductHandler(d.Catalog, logger)
	categoryHandler := handlers.NewCategoryHandler(d.Catalog, logger)
	orderHandler := handlers.NewOrderHandler(d.Orders, logger)
	userHandler := handlers.NewUserHandler(d.Users, logger)
	cartHandler := handlers.NewCartHandler(logger)
	checkoutHandler := handlers.NewCheckoutHandler(d.Checkout, logger)
	screenHandler := handlers.NewScreenHandler(logger)
	confirmationHandler := handlers.NewConfirmationHandler(logger)

	requireAuth := middleware.RequireAuth(logger)
	loadUser := middleware.LoadUser(logger)

	api := r.Group("/api")
	api.Use(middleware.Session(d.Sessions, d.Cookies, logger))
	{
		api.GET("/session", authHandler.Session)

		guest := api.Group("/auth", middleware.GuestOnly())
		{
			guest.POST("/login", authHandler.Login)
			guest.POST("/register", authHandler.Register)
			guest.POST("/forgot-password", authHandler.ForgotPassword)
			guest.POST("/reset-password", authHandler.ResetPassword)
		}
		api.POST("/auth/logout", authHandler.Logout)

		screenHandler.Register(api.Group("/catalog"), listing.ScreenCatalog)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/categories", categoryHandler.ListCategories)

		user := api.Group("", requireAuth, loadUser)
		{
			user.GET("/auth/me", authHandler.Me)
			user.PUT("/auth/profile", authHandler.UpdateProfile)
			user.POST("/auth/verify-email", authHandler.VerifyEmail)
			user.POST("/auth/send-verification-code", authHandler.SendVerificationCode)

			user.GET("/cart", cartHandler.GetCart)
			user.POST("/cart/items", cartHandler.AddItem)
			user.PUT("/cart/items/:product_id", cartHandler.UpdateItem)
			user.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)

			user.GET("/confirmations", confirmationHandler.List)
			user.GET("/confirmations/:id", confirmationHandler.Get)
			user.POST("/confirmations/:id", confirmationHandler.Confirm)
			user.DELETE("/confirmations/:id", confirmationHandler.Cancel)
		}

		verified := user.Group("", middleware.RequireVerified())
		{
			verified.GET("/checkout/summary", checkoutHandler.Summary)
			verified.POST("/checkout", checkoutHandler.Process)
			verified.GET("/checkout/verify", checkoutHandler.Verify)
			verified.POST("/checkout/verify", checkoutHandler.Verify)

			verified.GET("/orders", orderHandler.ListMyOrders)
			verified.GET("/orders/:id", orderHandler.GetMyOrder)
			verified.GET("/payments", orderHandler.ListMyPayments)
			verified.GET("/payments/:id", orderHandler.GetMyPayment)
		}

		admin := user.Group("/admin", middleware.RequireAdmin(logger))
		{
			admin.GET("/dashboard", userHandler.DashboardStatistics)

			screenHandler.Register(admin.Group("/screens/:screen"), "", listing.AdminScreens...)

			admin.GET("/products/:id", productHandler.GetProduct)
			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)

			admin.GET("/categories/:id", categoryHandler.GetCategory)
			admin.POST("/categories", categoryHandler.CreateCategory)
			admin.PUT("/categories/:id", categoryHandler.UpdateCategory)

			admin.GET("/orders/:id", orderHandler.GetOrder)

			admin.GET("/users/:id", userHandler.GetUser)
			admin.POST("/users", userHandler.CreateUser)
			admin.PUT("/users/:id", userHandler.UpdateUser)
		}
	}
	return r
}
