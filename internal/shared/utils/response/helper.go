package response

import (
	"errors"

	"venuely/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// BindingErrors turns a gin binding failure into a field-keyed map. Errors
// that are not validator.ValidationErrors fall back to the raw message.
func BindingErrors(err error) interface{} {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	details := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		details[fe.Field()] = "failed on '" + fe.Tag() + "' validation"
	}
	return details
}

// RespondError maps a service error onto the standard envelope using the
// apperr taxonomy, so controllers never string-match error text.
func RespondError(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	c.JSON(code, StandardApiResponse{
		Status:     "error",
		StatusCode: code,
		Message:    err.Error(),
		Errors: gin.H{
			"kind": apperr.KindOf(err),
		},
	})
}
