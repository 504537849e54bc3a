// Package validator はリクエストボディの構造的検証を提供する。
package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator はvalidatorライブラリの薄いラッパー。
type Validator struct {
	validate *validator.Validate
}

// New はValidatorの新しいインスタンスを生成する。
func New() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct は構造体のvalidateタグに基づいて検証を行う。
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
