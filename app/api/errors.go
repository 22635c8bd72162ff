package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Arihant027/VS-News/app/ai"
	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/news"
	"github.com/Arihant027/VS-News/app/newsletter"
)

var (
	errBadRequest = errors.New("bad request")
	errForbidden  = errors.New("forbidden")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errForbidden, fmt.Sprintf(format, args...))
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, newsletter.ErrValidation),
		errors.Is(err, database.ErrUnknownCategory),
		errors.Is(err, database.ErrNotAdmin),
		errors.Is(err, news.ErrInvalidTimeframe):
		return http.StatusBadRequest
	case errors.Is(err, errForbidden), errors.Is(err, newsletter.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate),
		errors.Is(err, database.ErrStatusConflict),
		errors.Is(err, newsletter.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ai.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Server-side failures are logged
// and replaced with a generic message.
func writeError(c *gin.Context, operation string, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"operation", operation,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)

		message := "Internal server error"
		if status == http.StatusServiceUnavailable {
			message = "AI service unavailable"
		}
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindError turns binding and validation failures into a readable 400 error
func bindError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
		}
		return badRequest("%s", strings.Join(messages, "; "))
	}
	return badRequest("invalid request body: %v", err)
}
