package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/auth"
	"github.com/khoahotran/program-catalog/pkg/logger"
	"github.com/khoahotran/program-catalog/pkg/metrics"
)

const (
	GinContextKeyCaller = "caller"
)

// bearerToken returns the token and whether an Authorization header was
// present at all.
func bearerToken(c *gin.Context) (string, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", true, apperror.NewUnauthorized("invalid token format", nil)
	}
	return tokenString, true, nil
}

func callerFromClaims(c *gin.Context, claims *auth.CustomClaims) user.Caller {
	return user.Caller{
		ID:        claims.UserID,
		Role:      user.ParseRole(claims.Role),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func anonymousCaller(c *gin.Context) user.Caller {
	caller := user.Anonymous()
	caller.IPAddress = c.ClientIP()
	caller.UserAgent = c.Request.UserAgent()
	return caller
}

// OptionalAuth attaches the caller when a valid token is presented and an
// anonymous caller otherwise. A malformed or expired token is rejected
// rather than silently downgraded.
func OptionalAuth(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			c.Set(GinContextKeyCaller, anonymousCaller(c))
			c.Next()
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			log.Debug("Rejected token", zap.Error(err))
			abortWithError(c, apperror.NewUnauthorized("invalid or expired token", err))
			return
		}
		c.Set(GinContextKeyCaller, callerFromClaims(c, claims))
		c.Next()
	}
}

func RequireAuth(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			abortWithError(c, apperror.NewUnauthorized("authorization header is required", nil))
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			log.Debug("Rejected token", zap.Error(err))
			abortWithError(c, apperror.NewUnauthorized("invalid or expired token", err))
			return
		}
		c.Set(GinContextKeyCaller, callerFromClaims(c, claims))
		c.Next()
	}
}

func GetCallerFromGinContext(c *gin.Context) user.Caller {
	v, ok := c.Get(GinContextKeyCaller)
	if !ok {
		return anonymousCaller(c)
	}
	caller, ok := v.(user.Caller)
	if !ok {
		return anonymousCaller(c)
	}
	return caller
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorMiddleware renders the last error a handler attached to the context.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unexpected error", err)
		}
		status := apperror.ToHTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err,
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", status))
		}
		c.JSON(status, appErr.ToJSON())
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
