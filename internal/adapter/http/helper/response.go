package helper

import (
	"net/http"

	. "thingstodo/internal/adapter/http/validation"
	"thingstodo/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

func SendError(c *gin.Context, statusCode int, message string, code string, details ...response.ValidationError) {
	c.JSON(statusCode, response.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// SendValidationError reports the first failing field as the message and
// every failure in details.
func SendValidationError(c *gin.Context, message string, err error) {
	SendError(c, http.StatusBadRequest, message, "VALIDATION_ERROR", FormatValidationErrors(err)...)
}

func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

func SendBadRequestError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message, "BAD_REQUEST")
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message, "NOT_FOUND")
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.MessageResponse{Message: message})
}
