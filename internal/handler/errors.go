package handler

import (
	"errors"
	"net/http"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// writeError maps domain errors onto HTTP status codes. The full error is attached to the
// context for the request log; responses only carry the public message.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		providerErr *common.AuthProviderError
		lookupErr   *common.LookupError
		storeErr    *common.StoreError
	)

	switch {
	case errors.Is(err, common.ErrAuthRequired):
		common.V2ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.As(err, &providerErr):
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, common.ErrUserAlreadyExists):
			status = http.StatusConflict
		case errors.Is(err, common.ErrInvalidInput):
			status = http.StatusBadRequest
		}
		common.V2ErrorResponse(c, status, providerErr.Error(), nil)
	case errors.Is(err, common.ErrInvalidToken):
		common.V2ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, common.ErrProductNotFound):
		common.V2ErrorResponse(c, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &lookupErr):
		common.V2ErrorResponse(c, http.StatusBadGateway, lookupErr.Error(), nil)
	case errors.Is(err, common.ErrNotFound):
		common.V2ErrorResponse(c, http.StatusNotFound, "Item not found", err)
	case errors.As(err, &storeErr):
		common.V2ErrorResponse(c, http.StatusInternalServerError, "Could not reach the data store", nil)
	case errors.Is(err, common.ErrInvalidInput):
		common.V2ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	default:
		common.V2ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// bindError reports a request that failed binding or validation
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, common.V2Response{
			Success: false,
			Error: &common.V2Error{
				Code:    "BAD_REQUEST",
				Message: "Invalid request",
				Details: fields,
			},
		})
		return
	}
	common.V2ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
}
