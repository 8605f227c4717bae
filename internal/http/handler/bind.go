package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	translator, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)

	// Report request names instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		var tag string
		for _, key := range []string{"json", "form", "query"} {
			if tag = fld.Tag.Get(key); tag != "" {
				break
			}
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindBody decodes the request body into dst and validates it. A non-nil return
// has already been written to the client.
func bindBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}
	return validateStruct(c, dst)
}

// bindQuery is bindBody for query parameters.
func bindQuery(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.QueryParser(dst); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "malformed query parameters")
	}
	return validateStruct(c, dst)
}

func validateStruct(c *fiber.Ctx, dst any) (bool, error) {
	err := validate.Struct(dst)
	if err == nil {
		return true, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false, writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "invalid request")
	}
	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: fe.Field(), Message: fe.Translate(translator)})
	}
	return false, writeErrorFields(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "invalid request", fields)
}
