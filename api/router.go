// Package api wires the HTTP surface: middleware, route groups and the
// per-group authorization guards.
package api

import (
	"fmt"
	"time"

	"whatnow/cms-api/db"
	"whatnow/cms-api/internal"
	"whatnow/cms-api/internal/auth"
	"whatnow/cms-api/internal/model"
	"whatnow/cms-api/internal/rbac"
	"whatnow/cms-api/internal/service"
	"whatnow/cms-api/internal/token"
	"whatnow/cms-api/middleware"
	"whatnow/cms-api/pkg/security"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	Deps   *internal.Deps
	Router *gin.Engine

	// groups holds one gated router group per permission-table entry. The
	// CRUD collaborators register their endpoints through Mount.
	groups map[rbac.Group]*gin.RouterGroup
}

func NewRouter() (*API, error) {
	makeLogger()

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	argon := security.NewArgon()
	tokens := token.NewService(database, []byte(viper.GetString("jwt.secret")), map[string]time.Duration{
		model.TokenAccess:        viper.GetDuration("jwt.access_ttl"),
		model.TokenVerifyEmail:   viper.GetDuration("jwt.verify_email_ttl"),
		model.TokenResetPassword: viper.GetDuration("jwt.reset_password_ttl"),
	})
	mail := service.NewMailQueue()

	a := &API{
		Deps: &internal.Deps{
			DB:     database,
			Argon:  argon,
			Tokens: tokens,
			Auth:   auth.NewService(database, argon, tokens, mail),
			Perms:  rbac.Default(),
			Mail:   mail,
			Reaper: service.NewReaper(database),
		},
		groups: make(map[rbac.Group]*gin.RouterGroup),
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString(middleware.CtxUserUUID); v != "" {
					fields = append(fields, zap.String("user_uuid", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	limited := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates an access token
		main.HEAD("/validate", a.guard(rbac.GroupUsers), a.Validate)
	}

	authGroup := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/register	-> Registers a new user
		authGroup.POST("/register", limited, a.AuthRegister)

		// POST /api/auth/login		-> Logs in a user and returns an access token
		authGroup.POST("/login", limited, a.AuthLogin)

		// POST /api/auth/logout	-> Revokes the presented token
		authGroup.POST("/logout", a.AuthLogout)

		// POST /api/auth/send-activation -> Mails a verify_email deep link
		authGroup.POST("/send-activation", limited, a.AuthSendActivation)

		// POST /api/auth/verify-email	-> Flips email_verified for the token owner
		authGroup.POST("/verify-email", a.AuthVerifyEmail)

		// POST /api/auth/send-reset	-> Mails a reset_password deep link
		authGroup.POST("/send-reset", limited, a.AuthSendReset)

		// POST /api/auth/reset-password -> Sets a new password for the token owner
		authGroup.POST("/reset-password", a.AuthResetPassword)
	}

	// One gated group per permission-table entry. Business endpoints for
	// the content entities are registered by their own packages via Mount.
	for _, group := range a.Deps.Perms.Groups() {
		a.groups[group] = main.Group("/"+string(group), a.guard(group))
	}

	// GET /api/profile			-> Returns the caller's own record
	a.groups[rbac.GroupProfile].GET("", a.ProfileFetch)

	a.Deps.Mail.StartWorkerPool()

	return a, nil
}

// Mount registers endpoints under the gated group, or returns false when the
// group isn't part of the permission table.
func (a *API) Mount(group rbac.Group, register func(*gin.RouterGroup)) bool {
	g, ok := a.groups[group]
	if !ok {
		return false
	}
	register(g)
	return true
}

func (a *API) guard(group rbac.Group) gin.HandlerFunc {
	return middleware.NewAuthGuard(a.Deps, group)
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if level, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
