package v1

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/smartcollab/models"
	"github.com/smartcollab/utils"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags to gin's validator engine
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected validator engine")
			return
		}

		rules := map[string]validator.Func{
			"strongpassword": func(fl validator.FieldLevel) bool {
				return utils.IsStrongPassword(fl.Field().String())
			},
			"role":          parses(models.ParseRole),
			"projectstatus": parses(models.ParseProjectStatus),
			"taskstatus":    parses(models.ParseTaskStatus),
			"priority":      parses(models.ParsePriority),
		}
		for tag, fn := range rules {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

func parses[T any](parse func(string) (T, error)) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := parse(fl.Field().String())
		return err == nil
	}
}

// bindingMessages turns validator failures into sentences; nil when err is not a validation failure
func bindingMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("The %s field is required.", field))
		case "email":
			messages = append(messages, fmt.Sprintf("The %s field is not a valid e-mail address.", field))
		case "max":
			messages = append(messages, fmt.Sprintf("The %s field must be at most %s characters.", field, fe.Param()))
		case "hexcolor":
			messages = append(messages, fmt.Sprintf("The %s field must be a hex color such as #ff0000.", field))
		case "eqfield":
			messages = append(messages, "The password and confirmation password do not match.")
		case "gtefield":
			messages = append(messages, fmt.Sprintf("The %s must not be before the %s.", field, fe.Param()))
		case "strongpassword":
			messages = append(messages, utils.PasswordPolicyViolations(fmt.Sprint(fe.Value()))...)
		case "role", "projectstatus", "taskstatus", "priority":
			messages = append(messages, fmt.Sprintf("Invalid %s '%v'.", strings.ToLower(field), fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("The %s field is invalid.", field))
		}
	}
	return messages
}
