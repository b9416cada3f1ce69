package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipes-api/internal/store"
)

// Health reports liveness and the current number of recipes
func Health(s store.RecipeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := s.Len(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "recipes": n})
	}
}
