package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// requestID tags the request and its logger with an id, reusing the caller's.
func requestID(log logrus.FieldLogger) gin.HandlerFunc {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return requestid.New(
		requestid.WithGenerator(uuid.NewString),
		requestid.WithCustomHeaderStrKey(headerRequestID),
		requestid.WithHandler(func(c *gin.Context, id string) {
			c.Set(ctxLogger, log.WithField("request_id", id))
		}),
	)
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger(c).WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request served")
	}
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", headerRequestID},
		ExposeHeaders: []string{headerRequestID, headerProviderFailures},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			cfg.AllowAllOrigins = true
		default:
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowOrigins = nil
	}
	return cors.New(cfg)
}

func logger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}

// closedWriter drops body bytes once a request is answered with
// statusClientClosed, so the compressor's trailer never reaches the wire.
type closedWriter struct {
	gin.ResponseWriter
}

func (w closedWriter) Write(b []byte) (int, error) {
	if w.Status() == statusClientClosed {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w closedWriter) WriteString(s string) (int, error) {
	if w.Status() == statusClientClosed {
		return len(s), nil
	}
	return w.ResponseWriter.WriteString(s)
}

// compress gzips responses for clients that accept it. It must run before
// any handler writes; /metrics negotiates its own encoding.
func compress() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			c.Writer = closedWriter{c.Writer}
			c.Next()
		},
		gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPaths([]string{"/metrics"})),
	}
}
