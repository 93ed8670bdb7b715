package transport

import (
	"encoding/json"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/service"
)

const (
	userIDKey     = "userId"
	censoredValue = "$censored"
)

// AuthMiddleware verifies the Authorization header and stores the user id in
// the context. The header carries the raw token; a "Bearer " prefix is
// tolerated.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))

		userID, err := s.auth.Verify(token)
		if err != nil {
			return err
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

func GetUserFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get(userIDKey).(string)
	if !ok || userID == "" {
		return "", errors.Wrap(service.ErrUnauthorized, "no user found in context")
	}
	return userID, nil
}

func accessLog(logger *zap.SugaredLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if userID, ok := c.Get(userIDKey).(string); ok {
				fields = append(fields, "userId", userID)
			}
			logger.Infow("request", fields...)
			return nil
		},
	})
}

func bodyDump(logger *zap.SugaredLogger) echo.MiddlewareFunc {
	return middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			logger.Debugw("request body",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"body", string(censorBody(reqBody)),
			)
		},
	})
}

// censorBody masks a top-level "password" field of a JSON object. Anything
// that is not a JSON object is returned untouched.
func censorBody(body []byte) []byte {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	if _, ok := fields["password"]; !ok {
		return body
	}
	fields["password"], _ = json.Marshal(censoredValue)
	out, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return out
}
