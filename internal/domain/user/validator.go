package user

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinLoginLen = 3
	MaxLoginLen = 64
)

// Validator проверяет учетные данные тренеров и спортсменов
type Validator interface {
	ValidateRegister(login, password string, role Role) error
	ValidateLogin(login string) error
}

// AccountPolicy требования к паролю для роли
type AccountPolicy struct {
	MinPasswordLen   int
	RequireMixedCase bool
	RequireSymbol    bool
}

// AccountValidator логин общий для всех ролей, пароль зависит от роли.
// Editor может удалять видео на сервере, поэтому его политика строже.
type AccountValidator struct {
	policies map[Role]AccountPolicy
}

func NewAccountValidator() *AccountValidator {
	return &AccountValidator{
		policies: map[Role]AccountPolicy{
			RoleViewer: {MinPasswordLen: 8},
			RoleEditor: {MinPasswordLen: 10, RequireMixedCase: true, RequireSymbol: true},
		},
	}
}

// NormalizeLogin логины сравниваются без учета регистра и пробелов по краям
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

func (v *AccountValidator) ValidateRegister(login, password string, role Role) error {
	if err := v.ValidateLogin(login); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	policy, ok := v.policies[role]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := policy.check(login, password); err != nil {
		return fmt.Errorf("password for %s: %w", role, err)
	}
	return nil
}

// ValidateLogin допускает короткие имена (ana.perez) и почтовые адреса
// (ana.perez+club@rfep.es).
func (v *AccountValidator) ValidateLogin(login string) error {
	n := utf8.RuneCountInString(login)
	if n < MinLoginLen || n > MaxLoginLen {
		return fmt.Errorf("length must be %d..%d characters", MinLoginLen, MaxLoginLen)
	}

	for _, r := range login {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case strings.ContainsRune("._-@+", r):
		default:
			return fmt.Errorf("character %q is not allowed", r)
		}
	}

	if strings.Count(login, "@") > 1 {
		return errors.New("at most one '@'")
	}
	if strings.Contains(login, "..") {
		return errors.New("consecutive dots")
	}
	if strings.ContainsAny(login[:1], ".@-+") || strings.ContainsAny(login[len(login)-1:], ".@-+") {
		return errors.New("must start and end with a letter, digit or '_'")
	}
	if at := strings.IndexByte(login, '@'); at >= 0 && !strings.Contains(login[at:], ".") {
		return errors.New("email domain must contain a dot")
	}
	return nil
}

func (p AccountPolicy) check(login, password string) error {
	if utf8.RuneCountInString(password) < p.MinPasswordLen {
		return fmt.Errorf("must be at least %d characters", p.MinPasswordLen)
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}

	if !(lower || upper) || !digit {
		return errors.New("must contain letters and digits")
	}
	if p.RequireMixedCase && !(lower && upper) {
		return errors.New("must contain upper and lower case letters")
	}
	if p.RequireSymbol && !symbol {
		return errors.New("must contain a symbol")
	}

	name := NormalizeLogin(login)
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	if len(name) >= MinLoginLen && strings.Contains(strings.ToLower(password), name) {
		return errors.New("must not contain the login")
	}
	return nil
}
