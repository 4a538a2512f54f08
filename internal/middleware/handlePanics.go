package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HandlePanics is used with gin.CustomRecovery. It logs the recovered value
// and answers with a generic 500.
func HandlePanics(log zerolog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error().
			Interface("error", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
