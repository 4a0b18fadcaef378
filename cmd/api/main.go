package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"paygate/internal/auth"
	"paygate/internal/db"
	"paygate/internal/domain/transactions"
	"paygate/internal/metrics"
	"paygate/internal/orchestrator"
	"paygate/internal/payments"
	"paygate/internal/ratelimiter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 20
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil && parsedVal > 0 {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "0.3.0"

func loadConfig() (config, error) {
	maxConns := int32(0)
	if s := os.Getenv("DB_MAX_CONNS"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return config{}, fmt.Errorf("invalid value for DB_MAX_CONNS: %w", err)
		}
		maxConns = int32(n)
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return config{
		addr: addr,
		env:  getEnv("ENV", "development"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    maxConns,
			maxIdleTime: getEnv("DB_MAX_IDLE_TIME", "15m"),
		},
		auth: authConfig{
			basic: basicConfig{
				user:     os.Getenv("AUTH_BASIC_USER"),
				passHash: os.Getenv("AUTH_BASIC_PASS_HASH"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    time.Hour * 24,
				iss:    "paygate",
			},
		},
		gateways: gatewaysConfig{
			razorpay: razorpayConfig{
				keyID:     os.Getenv("RAZORPAY_KEY_ID"),
				keySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
				baseURL:   os.Getenv("RAZORPAY_BASE_URL"),
			},
			stripe: stripeConfig{
				secretKey:      os.Getenv("STRIPE_SECRET_KEY"),
				publishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
				baseURL:        os.Getenv("STRIPE_BASE_URL"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// newGateways registers every gateway whose credentials are configured.
func newGateways(cfg gatewaysConfig, logger *zap.SugaredLogger) (*payments.PaymentManager, error) {
	manager := payments.NewPaymentManager()

	if cfg.razorpay.keyID != "" {
		rp, err := payments.NewRazorpayAdapter(payments.RazorpayConfig{
			KeyID:     cfg.razorpay.keyID,
			KeySecret: cfg.razorpay.keySecret,
			BaseURL:   cfg.razorpay.baseURL,
		})
		if err != nil {
			return nil, err
		}
		manager.RegisterGateway("razorpay", rp, payments.MethodCard, payments.MethodUPI)
	} else {
		logger.Warnw("gateway disabled, credentials missing", "gateway", "razorpay")
	}

	if cfg.stripe.secretKey != "" {
		st, err := payments.NewStripeAdapter(payments.StripeConfig{
			SecretKey:      cfg.stripe.secretKey,
			PublishableKey: cfg.stripe.publishableKey,
			BaseURL:        cfg.stripe.baseURL,
		})
		if err != nil {
			return nil, err
		}
		manager.RegisterGateway("stripe", st, payments.MethodCard)
	} else {
		logger.Warnw("gateway disabled, credentials missing", "gateway", "stripe")
	}

	if len(manager.Names()) == 0 {
		return nil, fmt.Errorf("no payment gateway configured")
	}
	return manager, nil
}

func main() {
	issueToken := flag.String("issue-token", "", "print an operator token for the given subject and exit")
	flag.Parse()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warnw("no .env file loaded, using process environment", "err", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal(err)
	}

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)

	if *issueToken != "" {
		token, err := jwtAuthenticator.GenerateToken(*issueToken)
		if err != nil {
			logger.Fatal(err)
		}
		fmt.Println(token)
		return
	}

	var store transactions.Store
	var pool *pgxpool.Pool
	if cfg.db.addr != "" {
		pool, err = db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		logger.Info("database connection pool established")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.EnsureSchema(ctx, pool, transactions.Schema...)
		cancel()
		if err != nil {
			logger.Fatal(err)
		}
		store = transactions.NewRepository(pool)
	} else {
		logger.Warn("DB_ADDR not set, transactions are kept in memory only")
		store = transactions.NewMemoryStore()
	}

	gateways, err := newGateways(cfg.gateways, logger)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infow("payment gateways registered", "gateways", gateways.Names())

	paymentMetrics := metrics.New()

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)
	defer rateLimiter.Stop()

	app := &application{
		config:        cfg,
		logger:        logger,
		payments:      orchestrator.NewService(gateways, store, logger, paymentMetrics),
		transactions:  transactions.NewQuery(store),
		metrics:       paymentMetrics,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	if pool != nil {
		expvar.Publish("database", expvar.Func(func() any {
			s := pool.Stat()
			return map[string]any{
				"total_conns":    s.TotalConns(),
				"idle_conns":     s.IdleConns(),
				"acquired_conns": s.AcquiredConns(),
				"max_conns":      s.MaxConns(),
			}
		}))
	}
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
