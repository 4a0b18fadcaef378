package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paygate/internal/auth"
	"paygate/internal/domain/transactions"
	"paygate/internal/metrics"
	"paygate/internal/orchestrator"
	"paygate/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	payments      *orchestrator.Service
	transactions  *transactions.Query
	metrics       *metrics.Payments
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	db          dbConfig
	auth        authConfig
	gateways    gatewaysConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

// basicConfig guards the health and debug endpoints. passHash is a bcrypt hash.
type basicConfig struct {
	user     string
	passHash string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type gatewaysConfig struct {
	razorpay razorpayConfig
	stripe   stripeConfig
}

type razorpayConfig struct {
	keyID     string
	keySecret string
	baseURL   string
}

type stripeConfig struct {
	secretKey      string
	publishableKey string
	baseURL        string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Signals ctx.Done() on slow requests. Transaction writes run on a detached context.
	r.Use(middleware.Timeout(60 * time.Second))

	if app.metrics != nil {
		r.Handle("/metrics", app.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/payments", func(r chi.Router) {
			if app.config.rateLimiter.Enabled {
				r.Use(app.RateLimiterMiddleware)
			}
			r.Post("/create", app.createPaymentHandler)
			r.Post("/verify", app.verifyPaymentHandler)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.listTransactionsHandler)
			r.Route("/{transactionID}", func(r chi.Router) {
				r.Get("/", app.getTransactionHandler)
				r.Put("/status", app.updateTransactionStatusHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
