package config

import (
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("vaultpath", isVaultPath); err != nil {
		return nil, nil, fmt.Errorf("failed to register vaultpath validation: %w", err)
	}
	if err := validate.RegisterTranslation("vaultpath", trans, func(ut ut.Translator) error {
		return ut.Add("vaultpath", "{0} must be a folder inside the vault", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("vaultpath", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register vaultpath translation: %w", err)
	}

	return validate, trans, nil
}

// isVaultPath rejects folders that would resolve outside the vault root.
func isVaultPath(fl validator.FieldLevel) bool {
	p := strings.TrimSpace(strings.ReplaceAll(fl.Field().String(), "\\", "/"))
	if p == "" {
		return false
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return false
		}
	}
	return strings.Trim(path.Clean("/"+p), "/") != ""
}
