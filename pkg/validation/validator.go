package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/online-school/internal/domain/entity"
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// Init configures the global validator used by Gin's binding.
// - Uses form (then JSON) tag names in errors.
// - Registers alias tags and the account specific validators.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs tag names, aliases and custom validators on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)

	v.RegisterAlias("pwd", "min=8") // password minimum length
	v.RegisterAlias("nonzero", "required")

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	// learning_mode accepts the empty string so that required_if decides presence.
	_ = v.RegisterValidation("learning_mode", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || entity.LearningMode(s).Valid()
	})
	_ = v.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return entity.DocumentType(fl.Field().String()).Valid()
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ToDetails converts validation/binding errors into a map[field]message
// shown beside form inputs and in API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

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

// fixed messages per tag; tags with a parameter are handled in formatFieldError
var messages = map[string]string{
	"required":      "is required",
	"nonzero":       "is required",
	"required_if":   "is required for this role",
	"email":         "must be a valid email",
	"e164":          "must be a valid phone number",
	"pwd":           "must be at least 8 characters long",
	"username":      "may contain only letters, digits and @/./+/-/_",
	"learning_mode": "must be one of: Online, In-Person",
}

func formatFieldError(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}

	param := fe.Param()
	unit := " characters long"
	if numeric(fe.Kind()) {
		unit = ""
	}
	switch fe.Tag() {
	case "required_with":
		return "is required when " + param + " is present"
	case "len":
		return "must be exactly " + param + unit
	case "min":
		return "must be at least " + param + unit
	case "max":
		return "must be at most " + param + unit
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "document_type":
		names := make([]string, len(entity.DocumentTypes))
		for i, d := range entity.DocumentTypes {
			names[i] = string(d)
		}
		return "must be one of: " + strings.Join(names, ", ")
	}
	if param != "" {
		return fmt.Sprintf("failed %q (%s)", fe.Tag(), param)
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}

func numeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}
