package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UniversityLister lists supported universities.
type UniversityLister interface {
	Universities() []string
}

// Universities returns the sorted university names for the signup form.
func Universities(lister UniversityLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, lister.Universities())
	}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
