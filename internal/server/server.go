package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/wordhaven/creditledger/internal/billing/domain"
	"github.com/wordhaven/creditledger/internal/config"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	paymentdomain "github.com/wordhaven/creditledger/internal/payment/domain"
	referraldomain "github.com/wordhaven/creditledger/internal/referral/domain"
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Identity identitydomain.Service
	Ledger   ledgerdomain.Service
	Billing  billingdomain.Service
	Referral referraldomain.Service
	Payment  paymentdomain.Service
	Registry *prometheus.Registry `optional:"true"`
}

func NewEngine(p Params) *gin.Engine {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(p.Log))

	handlers := &Handlers{
		log:      p.Log.Named("server"),
		identity: p.Identity,
		ledger:   p.Ledger,
		billing:  p.Billing,
		referral: p.Referral,
		payment:  p.Payment,
	}
	registerRoutes(engine, handlers)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.Registry != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))
	}

	return engine
}

func registerRoutes(engine *gin.Engine, h *Handlers) {
	api := engine.Group("/api/v1")

	api.POST("/users", h.register)
	api.POST("/login", h.login)
	api.PATCH("/users", h.updateUser)
	api.DELETE("/users/:user_id", h.deleteUser)

	api.GET("/balance/:user_id", h.balance)
	api.POST("/humanize", h.humanize)
	api.POST("/check", h.check)
	api.GET("/history/:user_id", h.history)
	api.GET("/rates", h.rateTable)

	api.POST("/payments/intent", h.openIntent)
	api.POST("/payments/confirm", h.confirmPayment)

	api.GET("/referrals/code/:user_id", h.referralCode)
	api.POST("/referrals/redeem", h.redeemReferral)
	api.GET("/referrals/check", h.checkReferral)
	api.GET("/referrals/history/:user_id", h.referralHistory)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func Run(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Invoke(Run),
)
