// Package validator оборачивает go-playground/validator с правилами для проблем.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/models"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Init создаёт валидатор и регистрирует собственные теги.
// Повторные вызовы ничего не делают.
func Init() {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// В сообщениях используем имена полей из JSON
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("issue_category", func(fl validator.FieldLevel) bool {
			return models.IssueCategory(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("issue_status", func(fl validator.FieldLevel) bool {
			return models.IssueStatus(fl.Field().String()).IsValid()
		})

		instance = v
	})
}

// Struct проверяет структуру и возвращает ошибку, обёрнутую в errs.ErrValidation.
func Struct(s any) error {
	Init()

	err := instance.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, message(fe))
	}
	return fmt.Errorf("%w: %s", errs.ErrValidation, strings.Join(messages, "; "))
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must contain exactly %s values", field, fe.Param())
	case "issue_category":
		return fmt.Sprintf("%s must be one of: %s", field, joinCategories())
	case "issue_status":
		return fmt.Sprintf("%s must be one of: %s", field, joinStatuses())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	}
	return fmt.Sprintf("%s failed on %s", field, fe.Tag())
}

// fieldPath отрезает имя корневой структуры: "CreateIssueInput.location.address" -> "location.address".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func joinCategories() string {
	names := make([]string, 0, len(models.AllCategories()))
	for _, c := range models.AllCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func joinStatuses() string {
	names := make([]string, 0, len(models.AllStatuses()))
	for _, s := range models.AllStatuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
