package v1

import (
	"errors"
	"io"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/gin-gonic/gin"
)

// bindOptionalJSON binds the request body into req when one is sent.
// State machine actions take an optional body, an empty one keeps the defaults.
func bindOptionalJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation)
	}
	return nil
}
