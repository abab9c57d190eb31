package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/api/response"
	"github.com/wuyan/lifescope/internal/auth"
	"github.com/wuyan/lifescope/internal/config"
	"github.com/wuyan/lifescope/internal/observability"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// PipelineConfig bundles the global middleware dependencies.
type PipelineConfig struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
	CORS    config.CORSConfig
	Authn   *auth.AuthMiddleware
	Policy  *auth.Policy
}

// RegisterMiddlewares attaches the global pipeline in order: request id,
// request logging, error translation, CORS, timeout, authentication, authorization.
func RegisterMiddlewares(app *fiber.App, cfg PipelineConfig) {
	app.Use(requestid.New())
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics, userIDFromCtx))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		// AllowHeaders unset: pre-flight echoes Access-Control-Request-Headers.
		ExposeHeaders:    fiber.HeaderXRequestID,
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(cfg.Authn.Handle)
	app.Use(cfg.Policy.Authorize())
}

// NewApp builds a Fiber app whose framework-level errors go through the same translator.
func NewApp(logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return translate(c, err, logger, metrics)
		},
	})
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = translate(c, err, logger, metrics)
			}
		}()
		return c.Next()
	}
}

// translate is the only place that turns an error into a status and envelope.
func translate(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) error {
	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(domainErr))
	}
	return response.Failure(c, domainErr.HTTPStatus, domainErr.Message)
}

func userIDFromCtx(c *fiber.Ctx) (int64, bool) {
	principal, ok := auth.PrincipalFromContext(c)
	return principal.UserID, ok
}

