package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength           = 2
	MaxNameLength           = 100
	MinProblemDetailsLength = 5
	MaxProblemDetailsLength = 2000
	MaxServiceNoLength      = 30
	MaxAreaLength           = 200
	MaxLandmarkLength       = 200
	MaxEstimationTimeLength = 100
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateRequired проверяет, что обязательное поле заполнено.
// Голосовой агент подставляет аргументы из разговора, поэтому пустые и
// пробельные значения здесь нормальная ситуация, а не ошибка программиста.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s обязателен", fieldName)
	}
	return nil
}

// NormalizeOptional обрезает пробелы и превращает пустую строку в nil.
func NormalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
