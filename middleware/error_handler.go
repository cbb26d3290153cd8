package middleware

import (
	"strconv"

	"github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler renders errors pushed onto the gin context as structured JSON.
// Handlers call c.Error(...) and return; this middleware owns the response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()

		if appError, ok := err.(*errors.AppError); ok {
			statusCode := appError.HTTPStatus

			log.Warnw("Request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"status", statusCode,
				"errorType", appError.Type,
				"error", appError.Message,
				"detail", appError.Detail,
				"requestId", c.GetString(RequestIDKey))

			response := ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
			}

			// Details stay server-side except where the caller can act on
			// them or we are running in debug mode.
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == errors.ValidationError ||
				appError.Type == errors.NotFoundError ||
				appError.Type == errors.LoadNotFoundError ||
				appError.Type == errors.InvalidStatusTransitionError) {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		// Gin binding errors surface as 400s
		if c.Errors.Last().Type == gin.ErrorTypeBind {
			log.Warnw("Request binding failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", err)

			response := ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Code:    "400",
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(400, response)
			return
		}

		log.Errorw("Unexpected server error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
			"requestId", c.GetString(RequestIDKey))

		response := ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal Server Error",
			Code:    "500",
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(500, response)
	}
}
