package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

// HeaderRequestID carries the id assigned to each request.
const HeaderRequestID = "X-Request-Id"

const requestIDKey = "request_id"

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
		},
	})
}

// requestID tags every request with a fresh uuid, echoed in the
// X-Request-Id header and used as the report id.
func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Response().Header().Set(HeaderRequestID, id)
		return next(c)
	}
}

func requestIDOf(c *echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok {
		return id
	}
	return uuid.NewString()
}

// readBody reads at most limit bytes of the request body.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, ErrEmptyBody
	}
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, limit)
	}
	if len(buf) == 0 {
		return nil, ErrEmptyBody
	}
	return buf, nil
}

func writeBodyError(c *echo.Context, err error) error {
	if errors.Is(err, ErrBodyTooLarge) {
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", err.Error(), "body_too_large")
	}
	return writeBadRequest(c, err.Error())
}
