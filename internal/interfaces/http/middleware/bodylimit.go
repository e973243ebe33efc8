package middleware

import (
	"net/http"
	"strings"

	"github.com/estatehub/backend/internal/infrastructure/logger"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// streamed bodies at the same size.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(logger.RequestIDKey),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// BodyLimitWithUploads applies uploadMax to multipart requests and maxBytes to
// everything else, so image uploads can exceed the JSON body limit.
func BodyLimitWithUploads(maxBytes, uploadMax int64) gin.HandlerFunc {
	regular := BodyLimit(maxBytes)
	upload := BodyLimit(uploadMax)
	return func(c *gin.Context) {
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			upload(c)
			return
		}
		regular(c)
	}
}
