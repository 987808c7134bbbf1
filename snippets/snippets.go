package snippets

import (
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func CreateZap() *zap.SugaredLogger {
	return CreateZapWithLevel(zap.DebugLevel)
}

// Same as CreateZap, but only logs at level and above
func CreateZapWithLevel(level zapcore.Level) *zap.SugaredLogger {
	w := zapcore.AddSync(os.Stdout)

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		w,
		level,
	)

	return zap.New(core).Sugar()
}

// Registers the validators below on v under their usual tags
func RegisterValidators(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"http_or_https": ValidatorIsHttpOrHttps,
		"https":         ValidatorIsHttps,
		"nospaces":      ValidatorNoSpaces,
	}

	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	return nil
}

// Some validators
func ValidatorIsHttpOrHttps(fl validator.FieldLevel) bool {
	// get the field value
	switch fl.Field().Kind() {
	case reflect.String:
		value := fl.Field().String()

		return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
	default:
		return false
	}
}

func ValidatorIsHttps(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		return strings.HasPrefix(fl.Field().String(), "https://")
	default:
		return false
	}
}

func ValidatorNoSpaces(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		return !strings.Contains(fl.Field().String(), " ")
	default:
		return false
	}
}
