// Package handlers implements the HTTP endpoints of the risk dashboard.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/sentinel-risk/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError renders an application error with the status its code maps
// to.  Codes the taxonomy does not know collapse to 500 with a masked
// message.  Not-ready responses carry a Retry-After hint because the
// condition clears as soon as the first refresh cycle publishes.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	if code == errors.ErrCodeNotReady {
		c.Header("Retry-After", "5")
	}
	c.JSON(status, ErrorResponse{Code: code.String(), Message: message})
}

// countryRequest is the shared body of the per-country POST endpoints.
type countryRequest struct {
	CountryCode string `json:"countryCode" binding:"required"`
}

// bindCountryRequest parses the shared body and normalizes the code (trim +
// uppercase) so "ua" and " UA " address the same roster entry.
func bindCountryRequest(c *gin.Context) (string, bool) {
	var req countryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, errors.Validation("countryCode is required"))
		return "", false
	}
	code := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if code == "" {
		writeAppError(c, errors.Validation("countryCode is required"))
		return "", false
	}
	return code, true
}
