package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	leaderboarddomain "github.com/smallbiznis/kudos/internal/leaderboard/domain"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
	shopdomain "github.com/smallbiznis/kudos/internal/shop/domain"
	streakdomain "github.com/smallbiznis/kudos/internal/streak/domain"
	votedomain "github.com/smallbiznis/kudos/internal/vote/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware converts errors recorded on the context into one
// JSON error response after the handler chain finishes.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, reputationdomain.ErrNotFound),
		errors.Is(err, votedomain.ErrTargetNotFound),
		errors.Is(err, shopdomain.ErrItemNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}

	case errors.Is(err, reputationdomain.ErrDuplicateAction),
		errors.Is(err, shopdomain.ErrLimitReached):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	case errors.Is(err, shopdomain.ErrInsufficientBalance):
		return http.StatusConflict, errorPayload{Type: "insufficient_balance", Message: err.Error()}

	case errors.Is(err, streakdomain.ErrClockSkew):
		return http.StatusConflict, errorPayload{Type: "clock_skew", Message: err.Error()}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, reputationdomain.ErrUnknownAction),
		errors.Is(err, reputationdomain.ErrInvalidSubject),
		errors.Is(err, reputationdomain.ErrInvalidUser),
		errors.Is(err, votedomain.ErrInvalidTarget),
		errors.Is(err, votedomain.ErrInvalidVoter),
		errors.Is(err, votedomain.ErrInvalidVoteState),
		errors.Is(err, votedomain.ErrInvalidOwner),
		errors.Is(err, shopdomain.ErrInvalidUser),
		errors.Is(err, streakdomain.ErrInvalidUser),
		errors.Is(err, leaderboarddomain.ErrInvalidMetric):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: err.Error()}

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, gorm.ErrInvalidDB):
		// Transient storage trouble: callers may retry with backoff.
		return http.StatusServiceUnavailable, errorPayload{Type: "storage_unavailable", Message: "storage unavailable"}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
