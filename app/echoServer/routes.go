package echoServer

import (
	"kitabu/app/echoServer/controller/admin"
	"kitabu/app/echoServer/controller/auth"
	"kitabu/app/echoServer/controller/book"
	"kitabu/app/echoServer/controller/cart"
	"kitabu/app/echoServer/controller/lending"
	"kitabu/app/echoServer/controller/order"
	"kitabu/app/echoServer/controller/payment"
	"kitabu/app/echoServer/controller/request"
	"kitabu/app/echoServer/controller/returns"

	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Cart      *cart.Controller
	Request   *request.Controller
	Order     *order.Controller
	Lending   *lending.Controller
	Payment   *payment.Controller
	Returns   *returns.Controller
	Admin     *admin.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.POST("/users/password/forgot", c.Auth.ForgotPassword)
	pub.POST("/users/password/reset", c.Auth.ResetPassword)
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Authenticated
	auth := e.Group("/v1", JWTAuth(c.JWTSecret)...)
	auth.GET("/users/me", c.Auth.Me)

	auth.POST("/carts/:type/items", c.Cart.Add)
	auth.GET("/carts/:type", c.Cart.View)

	auth.POST("/requests", c.Request.Create)
	auth.GET("/requests", c.Request.List)
	auth.PATCH("/requests/:id/status", c.Request.UpdateStatus)

	auth.POST("/orders/checkout", c.Order.Checkout)
	auth.GET("/orders/my", c.Order.My)

	auth.POST("/lendings/checkout", c.Lending.Checkout)
	auth.GET("/lendings/my", c.Lending.My)

	auth.POST("/payments", c.Payment.Pay)
	auth.GET("/payments/my", c.Payment.My)

	auth.POST("/returns", c.Returns.Request)
	auth.GET("/returns/my", c.Returns.My)

	// Admin
	adm := e.Group("/v1/admin", append(JWTAuth(c.JWTSecret), RequireAdmin)...)
	adm.POST("/books", c.Book.Create)
	adm.PATCH("/books/:id", c.Book.Update)
	adm.DELETE("/books/:id", c.Book.Delete)
	adm.POST("/books/:id/copies", c.Book.AdjustCopies)

	adm.GET("/orders", c.Order.All)
	adm.PATCH("/orders/:id/status", c.Order.Decide)
	adm.GET("/lendings", c.Lending.All)
	adm.PATCH("/lendings/:id/status", c.Lending.Decide)
	adm.GET("/payments", c.Payment.All)
	adm.GET("/returns/pending", c.Returns.Pending)
	adm.PATCH("/returns/:id/status", c.Returns.Process)

	adm.GET("/users", c.Admin.ListUsers)
	adm.POST("/users", c.Admin.CreateUser)
	adm.DELETE("/users/:id", c.Admin.DeleteUser)

	adm.GET("/dashboard", c.Admin.Dashboard)
	adm.GET("/reports/sales", c.Admin.Sales)
	adm.GET("/reports/borrowing", c.Admin.Borrowing)
	adm.GET("/logs", c.Admin.Logs)
	adm.GET("/logs/actions", c.Admin.LogActions)
}
