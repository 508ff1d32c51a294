// Package httperr writes APIErrors as JSON responses.
package httperr

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/apierror"
)

// Write aborts the request with the response that matches err. Errors that are
// not APIErrors become a bare 500.
func Write(c *gin.Context, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.NewErrInternalServerError(err)
	}

	body := gin.H{"error": apiErr.Message}
	for k, v := range apiErr.Fields {
		body[k] = v
	}
	if secs, ok := apiErr.Fields["retry_after"].(int); ok {
		c.Header("Retry-After", strconv.Itoa(secs))
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.HTTPStatus, body)
}
