package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/subscription/pkg/apperr"
	"github.com/fatflowers/subscription/pkg/response"
)

// codeFor maps service errors onto the response taxonomy. Unknown errors
// stay generic so internals never leak through the API.
func codeFor(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, apperr.ErrValidation):
		return response.APIResponseCodeBadRequest
	case errors.Is(err, apperr.ErrDuplicateSubscription), errors.Is(err, apperr.ErrConflict):
		return response.APIResponseCodeConflict
	case errors.Is(err, apperr.ErrInvalidState):
		return response.APIResponseCodeInvalidState
	case errors.Is(err, apperr.ErrMessaging):
		return response.APIResponseCodeMessaging
	default:
		return response.APIResponseCodeError
	}
}

func respondErr(c *gin.Context, err error) {
	c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
}
