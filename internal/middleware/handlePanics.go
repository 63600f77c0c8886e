package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/imagecat/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics turns a panicking handler into a 500 with the usual error body
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		detail := "internal server error"
		if err, ok := recovered.(error); ok {
			detail = err.Error()
		} else if recovered != nil {
			detail = fmt.Sprint(recovered)
		}

		log.Error().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("panic", detail).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorDetail{Detail: detail})
	}
}
