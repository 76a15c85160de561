package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/auth"
	"junkmart/web/internal/cart"
	"junkmart/web/internal/validate"
)

// fail answers err in the backend's own error shape so the browser can show
// error and errors verbatim.
func (h HandlerSet) fail(c *gin.Context, err error) {
	if vErr, ok := validate.As(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  vErr.Message,
			"errors": []apiclient.FieldError{{Field: vErr.Field, Message: vErr.Message}},
		})
		return
	}

	if apiErr, ok := apiclient.AsAPIError(err); ok {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		body := gin.H{"error": apiclient.Message(err)}
		if apiErr.Data.Code != "" {
			body["code"] = apiErr.Data.Code
		}
		if len(apiErr.Data.Errors) > 0 {
			body["errors"] = apiErr.Data.Errors
		}
		c.JSON(status, body)
		return
	}

	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item is not in the cart"})
	case errors.Is(err, auth.ErrRoleNotSupported):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown account type"})
	default:
		_ = c.Error(err)
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes the body and runs its binding rules. A rule failure is
// answered as a field error, anything else as a malformed body.
func (h HandlerSet) bindJSON(c *gin.Context, out any) bool {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return true
	}
	if vErr, ok := validate.As(validate.FromValidator(err)); ok {
		h.fail(c, vErr)
		return false
	}
	badRequest(c, "Invalid request body")
	return false
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
