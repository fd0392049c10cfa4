// Package main kitabu API.
//
// @title           kitabu API
// @version         1.0
// @description     Bookstore and library backend: catalogue, carts, purchase/borrow requests, orders, lendings, payments and returns.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitabu/app/echoServer"
	adminctrl "kitabu/app/echoServer/controller/admin"
	authctrl "kitabu/app/echoServer/controller/auth"
	bookctrl "kitabu/app/echoServer/controller/book"
	cartctrl "kitabu/app/echoServer/controller/cart"
	lendingctrl "kitabu/app/echoServer/controller/lending"
	orderctrl "kitabu/app/echoServer/controller/order"
	paymentctrl "kitabu/app/echoServer/controller/payment"
	requestctrl "kitabu/app/echoServer/controller/request"
	returnctrl "kitabu/app/echoServer/controller/returns"
	"kitabu/app/echoServer/validation"
	"kitabu/config"
	activityrepo "kitabu/repository/activity"
	bookrepo "kitabu/repository/book"
	"kitabu/repository/bookcache"
	cartrepo "kitabu/repository/cart"
	lendingrepo "kitabu/repository/lending"
	orderrepo "kitabu/repository/order"
	paymentrepo "kitabu/repository/payment"
	reportrepo "kitabu/repository/report"
	requestrepo "kitabu/repository/request"
	returnrepo "kitabu/repository/returns"
	"kitabu/repository/stream"
	userrepo "kitabu/repository/user"
	activitysvc "kitabu/service/activity"
	authsvc "kitabu/service/auth"
	booksvc "kitabu/service/book"
	cartsvc "kitabu/service/cart"
	lendingsvc "kitabu/service/lending"
	ordersvc "kitabu/service/order"
	paymentsvc "kitabu/service/payment"
	reportsvc "kitabu/service/report"
	requestsvc "kitabu/service/request"
	returnsvc "kitabu/service/returns"
	usersvc "kitabu/service/user"
	"kitabu/util/database"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(db.SQL); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}
	txr := database.NewTxRunner(db.SQL)

	// cache + stream
	cache := bookcache.Noop()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, book cache disabled", "err", err)
		} else {
			cache = bookcache.NewRedisCache(rdb, cfg.BookCacheTTL)
		}
	}
	pub := stream.Noop()
	if len(cfg.KafkaBrokers) > 0 {
		pub = stream.NewKafka(cfg.KafkaBrokers, cfg.ActivityTopic)
	}
	defer pub.Close()

	// repos
	ur := userrepo.New(db.SQL)
	br := bookrepo.New(db.SQL)
	cr := cartrepo.New(db.SQL)
	rqr := requestrepo.New(db.SQL)
	or := orderrepo.New(db.SQL)
	lr := lendingrepo.New(db.SQL)
	pr := paymentrepo.New(db.SQL)
	rtr := returnrepo.New(db.SQL)
	ar := activityrepo.New(db.SQL)
	rpr := reportrepo.New(db.SQL)

	// services
	as := authsvc.New(ur, cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL)
	us := usersvc.New(ur, as)
	bs := booksvc.New(br, txr, cache, log)
	acts := activitysvc.New(ar, pub, log)
	cs := cartsvc.New(cr, bs, txr)
	rqs := requestsvc.New(txr, rqr, br, cs, acts, bs)
	ords := ordersvc.New(txr, or, cr)
	ls := lendingsvc.New(txr, lr, cr, br, acts, bs, cfg.LendingPeriod)
	ps := paymentsvc.New(txr, pr, or)
	rs := returnsvc.New(txr, rtr, lr, br, acts, bs)
	reps := reportsvc.New(rpr)

	// controllers
	v := validation.NewValidate()
	c := echoServer.C{
		Auth:      &authctrl.Controller{Svc: as, V: v, Log: log, ExposeResetToken: cfg.Env != "production"},
		Book:      &bookctrl.Controller{Svc: bs, V: v, Log: log},
		Cart:      &cartctrl.Controller{Svc: cs, V: v, Log: log},
		Request:   &requestctrl.Controller{Svc: rqs, V: v, Log: log},
		Order:     &orderctrl.Controller{Svc: ords, V: v, Log: log},
		Lending:   &lendingctrl.Controller{Svc: ls, V: v, Log: log},
		Payment:   &paymentctrl.Controller{Svc: ps, V: v, Log: log},
		Returns:   &returnctrl.Controller{Svc: rs, V: v, Log: log},
		Admin:     &adminctrl.Controller{Reports: reps, Activity: acts, Users: us, V: v, Log: log},
		JWTSecret: cfg.JWTSecret,
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = echoServer.JSONSerializer{}
	e.Validator = validation.New(v)
	metrics := echoServer.NewMetrics()
	echoServer.RegisterMiddlewares(e, log, metrics)

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "message": "database unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, c)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(e, "kitabu"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("server stopped")
}
