package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// input is the standalone validator behind the pure Validate* functions;
// separate from Gin's binding engine so services stay transport-free.
var input = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	return v
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Init configures the global validator used by Gin's binding.
// Errors use JSON tag names so details line up with request payload fields.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

type registerInput struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ValidateRegisterInput checks registration input shape. Pure: no I/O, no
// uniqueness check (that is a storage concern). Errors accumulate per field
// so a caller sees all problems at once.
func ValidateRegisterInput(username, email, password, confirmPassword string) (bool, map[string]string) {
	in := registerInput{
		Username:        strings.TrimSpace(username),
		Email:           strings.TrimSpace(email),
		Password:        password,
		ConfirmPassword: confirmPassword,
	}
	if err := input.Struct(in); err != nil {
		return false, ToDetails(err)
	}
	return true, nil
}

// ValidateLoginInput checks login input shape.
func ValidateLoginInput(username, password string) (bool, map[string]string) {
	in := loginInput{
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := input.Struct(in); err != nil {
		return false, ToDetails(err)
	}
	return true, nil
}

// ToDetails converts validation/binding errors into a map[field]message
// suitable for API error details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	case "len":
		return "must be exactly " + param + " characters long"
	case "eqfield":
		return "must match " + jsonName(param)
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "uuid":
		return "must be a valid UUID"
	default:
		if param != "" {
			return "failed '" + tag + "' validation with parameter '" + param + "'"
		}
		return "failed '" + tag + "' validation"
	}
}

// jsonName lowers a struct field reference (e.g. eqfield=Password) to the
// JSON name used in payloads.
func jsonName(structField string) string {
	t := reflect.TypeOf(registerInput{})
	if f, ok := t.FieldByName(structField); ok {
		if name := jsonTagName(f); name != "" {
			return name
		}
	}
	return strings.ToLower(structField)
}
