package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"credcheck/config"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/service"
)

const defaultMinPasswordLength = 8

// forbiddenWords are rejected anywhere in a new password, case-insensitively.
var forbiddenWords = []string{"password", "admin", "123456", "qwerty", "letmein"}

// passwordPolicy enforces passwordStrength for passwords that are about to be hashed.
// It is never consulted when verifying an existing credential.
type passwordPolicy struct {
	cfg config.PasswordStrengthConfig
}

// NewPasswordPolicy builds the policy from passwordStrength. A missing section
// keeps only the minimum length and the forbidden word list.
func NewPasswordPolicy(cfg *config.Config) service.PasswordPolicy {
	p := &passwordPolicy{cfg: config.PasswordStrengthConfig{MinLength: defaultMinPasswordLength}}
	if cfg != nil && cfg.PasswordStrength != nil {
		p.cfg = *cfg.PasswordStrength
		if p.cfg.MinLength == 0 {
			p.cfg.MinLength = defaultMinPasswordLength
		}
	}

	return p
}

func (p *passwordPolicy) Validate(password string) error {
	length := utf8.RuneCountInString(password)
	if length < p.cfg.MinLength {
		return p.reject(fmt.Sprintf("must be at least %d characters long", p.cfg.MinLength))
	}
	if p.cfg.MaxLength > 0 && length > p.cfg.MaxLength {
		return p.reject(fmt.Sprintf("must be at most %d characters long", p.cfg.MaxLength))
	}
	if p.cfg.RequireLowercase && !p.hasLowercase(password) {
		return p.reject("must contain at least one lowercase letter")
	}
	if p.cfg.RequireUppercase && !p.hasUppercase(password) {
		return p.reject("must contain at least one uppercase letter")
	}
	if p.cfg.RequireNumbers && !p.hasNumbers(password) {
		return p.reject("must contain at least one number")
	}
	if p.cfg.RequireSpecial && !p.hasSpecialChars(password) {
		return p.reject("must contain at least one special character")
	}
	if p.containsForbiddenWords(password, forbiddenWords) {
		return p.reject("contains forbidden words")
	}

	return nil
}

func (p *passwordPolicy) reject(reason string) error {
	return domainerrors.ErrPasswordPolicy.WithDetails("password " + reason)
}

func (p *passwordPolicy) hasUppercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func (p *passwordPolicy) hasLowercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

func (p *passwordPolicy) hasNumbers(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func (p *passwordPolicy) hasSpecialChars(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}

func (p *passwordPolicy) containsForbiddenWords(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}

	return false
}
