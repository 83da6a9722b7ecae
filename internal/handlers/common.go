// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

// respondServiceError maps domain errors onto HTTP responses. Anything
// unrecognized is logged and reported as a 500 without leaking backend
// detail to the client.
func respondServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Resource")
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrAdminImmutable):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrSKUTaken):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidTransition):
		utils.BadRequestResponse(c, err.Error(), nil)
	case database.IsDuplicateKey(err):
		utils.ConflictResponse(c, "Duplicate value")
	default:
		requestID, _ := c.Get("request_id")
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": requestID,
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}
