// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Policy describes the complexity rules a new password must satisfy.
type Policy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

// DefaultPolicy returns the account password policy: 8 to 256 characters
// with at least one uppercase, lowercase, digit and special character.
func DefaultPolicy() *Policy {
	return &Policy{
		MinLength:        8,
		MaxLength:        256,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RequireSpecial:   true,
	}
}

// Violation is a single failed policy rule.
type Violation struct {
	Code    string
	Message string
}

func (v Violation) Error() string {
	return v.Message
}

// PolicyError wraps all violations of a password.
type PolicyError struct {
	Violations []Violation
}

func (e *PolicyError) Error() string {
	if len(e.Violations) == 0 {
		return "password does not meet requirements"
	}
	return e.Violations[0].Message
}

// Messages returns all violation messages.
func (e *PolicyError) Messages() []string {
	messages := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		messages[i] = v.Message
	}
	return messages
}

// Check returns every rule password violates, in rule order.
func (p *Policy) Check(password string) []Violation {
	var violations []Violation

	length := utf8.RuneCountInString(password)
	if length < p.MinLength {
		violations = append(violations, Violation{
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters.", p.MinLength),
		})
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		violations = append(violations, Violation{
			Code:    "max_length",
			Message: fmt.Sprintf("Password exceeds maximum length of %d.", p.MaxLength),
		})
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	if p.RequireUppercase && !hasUpper {
		violations = append(violations, Violation{Code: "no_uppercase", Message: "Password requires an uppercase letter."})
	}
	if p.RequireLowercase && !hasLower {
		violations = append(violations, Violation{Code: "no_lowercase", Message: "Password requires a lowercase letter."})
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, Violation{Code: "no_digit", Message: "Password requires a number."})
	}
	if p.RequireSpecial && !hasSpecial {
		violations = append(violations, Violation{Code: "no_special", Message: "Password requires a special character."})
	}

	return violations
}

// Validate returns a *PolicyError if password violates the policy.
func (p *Policy) Validate(password string) error {
	if violations := p.Check(password); len(violations) > 0 {
		return &PolicyError{Violations: violations}
	}
	return nil
}
