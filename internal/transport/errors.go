package transport

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/service"
)

const serverErrorMessage = "Server error"

type (
	ErrorResp struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors,omitempty"`
	}

	// apiError is an error that already knows its status and wire message.
	apiError struct {
		status  int
		message string
		fields  map[string]string
	}

	// routeErrors holds the per-route wording and status for invalid input
	// and for a resource that is missing or not the caller's.
	routeErrors struct {
		invalidStatus int
		invalid       string
		notFound      string
	}
)

var (
	signupErrors  = routeErrors{invalidStatus: http.StatusLengthRequired, invalid: "Invalid inputs"}
	signinErrors  = routeErrors{invalidStatus: http.StatusBadRequest, invalid: "Invalid inputs"}
	contentErrors = routeErrors{
		invalidStatus: http.StatusLengthRequired,
		invalid:       "Error in inputs",
		notFound:      "Document not found",
	}
	brainErrors   = routeErrors{invalidStatus: http.StatusBadRequest, invalid: "Invalid inputs", notFound: "Invalid link"}
	profileErrors = routeErrors{
		invalidStatus: http.StatusBadRequest,
		invalid:       "Invalid input data",
		notFound:      "User not found",
	}
	publicProfileErrors = routeErrors{notFound: "Profile not found or is private"}
)

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.message)
}

func (r routeErrors) invalidBody() error {
	return &apiError{status: r.invalidStatus, message: r.invalid}
}

// wrap turns validation and availability failures into route-specific
// responses. Everything else is left to the error handler.
func (r routeErrors) wrap(err error) error {
	if err == nil {
		return nil
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) && r.invalidStatus != 0 {
		return &apiError{status: r.invalidStatus, message: r.invalid, fields: verr.Fields}
	}
	if errors.Is(err, service.ErrResourceUnavailable) && r.notFound != "" {
		return &apiError{status: http.StatusNotFound, message: r.notFound}
	}
	return err
}

// classify maps any handler error to a status and body. ok is false for
// errors nobody anticipated; those are logged and reported as a generic 500.
func classify(err error) (status int, resp ErrorResp, ok bool) {
	resp = ErrorResp{Success: false}

	var ae *apiError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		status, resp.Message, resp.Errors = ae.status, ae.message, ae.fields
	case errors.Is(err, service.ErrUnauthorized):
		status, resp.Message = http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, service.ErrUsernameTaken):
		status, resp.Message = http.StatusForbidden, "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, resp.Message = http.StatusForbidden, "Invalid username or password"
	case errors.Is(err, service.ErrResourceUnavailable):
		status, resp.Message = http.StatusNotFound, "Not found"
	case errors.As(err, &he):
		status = he.Code
		if msg, isString := he.Message.(string); isString {
			resp.Message = msg
		} else {
			resp.Message = http.StatusText(he.Code)
		}
	default:
		return http.StatusInternalServerError, ErrorResp{Message: serverErrorMessage}, false
	}
	return status, resp, true
}

func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, resp, ok := classify(err)
	if !ok {
		s.logger.Errorw("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}
