package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

// SetupValidator points gin's validator at json/form names and registers the
// custom tags used by request types. Call once before serving.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("phone", validPhoneChars)
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// validPhoneChars accepts digits and the separators people type into a phone
// field. Normalising to E.164 happens in the identity domain.
func validPhoneChars(fl validator.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+ -().", r):
		default:
			return false
		}
	}
	return digits >= 6
}

// FormatValidationErrors builds the ERR_VALIDATION response with one detail
// per failed field
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: describe(fe)})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}

var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"numeric":  "Must be numeric",
	"phone":    "Invalid phone number",
	"oneof":    "Must be one of: %s",
	"len":      "Must be exactly %s characters",
	"gt":       "Must be greater than %s",
	"gte":      "Must be greater than or equal to %s",
	"lt":       "Must be less than %s",
	"lte":      "Must be less than or equal to %s",
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be %s %s characters", bound, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must have %s %s items", bound, fe.Param())
		}
		return fmt.Sprintf("Must be %s %s", bound, fe.Param())
	}
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
