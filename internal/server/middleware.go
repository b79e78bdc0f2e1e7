package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/odontocare/odontocare/internal/clinicctx"
	subscriptiondomain "github.com/odontocare/odontocare/internal/subscription/domain"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	l := log.Named("access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// AuthRequired resolves the session cookie and installs clinic and user
// identity on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("sessão inválida"))
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("sessão inválida"))
			return
		}

		ctx := clinicctx.WithClinicID(c.Request.Context(), sess.ClinicID)
		ctx = clinicctx.WithUserID(ctx, sess.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireActiveSubscription blocks mutating routes for canceled tenants.
func (s *Server) RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := clinicctx.ClinicIDFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("sessão inválida"))
			return
		}

		sub, err := s.subscriptionSvc.Get(c.Request.Context())
		if errors.Is(err, subscriptiondomain.ErrNotFound) {
			// No subscription record means the clinic was never provisioned
			// with billing; treat it as allowed.
			c.Next()
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if sub.Blocked() {
			AbortWithError(c, subscriptiondomain.ErrSubscriptionBlocked)
			return
		}
		c.Next()
	}
}
