// Package webserver owns the echo instance: middleware, lifecycle and
// the route registrars the API packages use. Handlers reach the
// application and database through the request context, so tests can
// swap both without touching globals.
package webserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/c-robinson/iplib"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/config"
	"github.com/merchkit/storeadmin/pkg/metrics"
)

const (
	ContextKeyApp = "storeadmin_app"
	ContextKeyDB  = "storeadmin_db"
)

// AppContext is the slice of the application handlers may reach
// through the request context.
type AppContext interface {
	Config() *config.AppConfig
	DB() *gorm.DB
}

type WebServer struct {
	appCtx AppContext
	root   *echo.Echo
}

var server *WebServer

// Init builds the echo instance with the full middleware chain.
func Init(appCtx AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = NewJsonSerializer()
	e.Validator = NewValidator()

	cfg := appCtx.Config()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return random.String(16, random.Hex) },
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	e.Use(middleware.BodyLimit("8M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	if ranges := trustedRanges(cfg.Web.TrustedProxies); len(ranges) > 0 {
		e.IPExtractor = echo.ExtractIPFromXFFHeader(ranges...)
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			metrics.AddCounter(metrics.ApiRequestTotal, 1)
			zap.L().Info("http request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("remote_ip", v.RemoteIP),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.Use(echoprometheus.NewMiddleware("storeadmin"))
	e.GET("/metrics", echoprometheus.NewHandler())

	// inject app and db for handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyApp, appCtx)
			c.Set(ContextKeyDB, appCtx.DB())
			return next(c)
		}
	})

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "Internal server error"
		if he, okhe := err.(*echo.HTTPError); okhe {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}
		if code >= http.StatusInternalServerError {
			zap.L().Error("http error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		_ = c.JSON(code, map[string]any{"code": "HTTP_ERROR", "message": message})
	}

	server = &WebServer{appCtx: appCtx, root: e}
	return server
}

// trustedRanges parses proxy CIDRs into trust options. Bare addresses
// are treated as /32.
func trustedRanges(entries []string) []echo.TrustOption {
	var opts []echo.TrustOption
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			entry += "/32"
		}
		n := iplib.Net4FromStr(entry)
		if n.IP() == nil {
			zap.S().Warnf("ignoring invalid trusted proxy %q", entry)
			continue
		}
		ipnet := net.IPNet{IP: n.IP(), Mask: n.Mask()}
		opts = append(opts, echo.TrustIPRange(&ipnet))
	}
	return opts
}

// Instance returns the underlying echo engine.
func (s *WebServer) Instance() *echo.Echo {
	return s.root
}

// Start listens on the configured address until the server stops.
func (s *WebServer) Start() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("admin api listening on %s", addr)
	err := s.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *WebServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.root.Shutdown(ctx)
}

// Route registrars. API packages call these from their register
// functions; the adminapi group sits under /api.

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET("/api"+path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST("/api"+path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.PUT("/api"+path, h, m...)
}

func ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.PATCH("/api"+path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.DELETE("/api"+path, h, m...)
}

// PubGET registers a route outside the /api admin prefix.
func PubGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

// PubPOST registers a route outside the /api admin prefix.
func PubPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}
