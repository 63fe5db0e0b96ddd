// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy defines requirements for password strength.
type PasswordPolicy struct {
	// MinLength is the minimum password length in characters.
	MinLength int

	// MaxLength caps the length; bcrypt ignores everything past 72 bytes.
	MaxLength int

	RequireUppercase bool
	RequireLowercase bool
	RequireLetter    bool
	RequireDigit     bool
	RequireSpecial   bool

	// ForbidCommonPasswords blocks well known breached passwords
	ForbidCommonPasswords bool

	// ForbidUsername rejects passwords containing the username
	ForbidUsername bool
}

// UserPasswordPolicy is applied to regular accounts created through the
// API, self registration and password changes.
func UserPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		MaxLength:             72,
		RequireLetter:         true,
		RequireDigit:          true,
		ForbidCommonPasswords: true,
		ForbidUsername:        true,
	}
}

// AdminPasswordPolicy is stricter and applies to admin accounts, including
// the bootstrap admin from configuration.
func AdminPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             12,
		MaxLength:             72,
		RequireUppercase:      true,
		RequireLowercase:      true,
		RequireLetter:         true,
		RequireDigit:          true,
		RequireSpecial:        true,
		ForbidCommonPasswords: true,
		ForbidUsername:        true,
	}
}

// PolicyFor returns the policy matching the account type.
func PolicyFor(admin bool) PasswordPolicy {
	if admin {
		return AdminPasswordPolicy()
	}
	return UserPasswordPolicy()
}

// charClasses holds the results of character class analysis.
type charClasses struct {
	hasUpper   bool
	hasLower   bool
	hasDigit   bool
	hasSpecial bool
}

func analyzeCharClasses(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.hasUpper = true
		case unicode.IsLower(r):
			cc.hasLower = true
		case unicode.IsDigit(r):
			cc.hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			cc.hasSpecial = true
		}
	}
	return cc
}

// Validate returns every violated requirement; an empty slice means the
// password is acceptable.
func (p PasswordPolicy) Validate(password, username string) []string {
	var problems []string

	length := len([]rune(password))
	if length < p.MinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters (got %d)", p.MinLength, length))
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", p.MaxLength))
	}

	cc := analyzeCharClasses(password)
	if p.RequireUppercase && !cc.hasUpper {
		problems = append(problems, "password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !cc.hasLower {
		problems = append(problems, "password must contain at least one lowercase letter")
	}
	if p.RequireLetter && !cc.hasUpper && !cc.hasLower {
		problems = append(problems, "password must contain at least one letter")
	}
	if p.RequireDigit && !cc.hasDigit {
		problems = append(problems, "password must contain at least one digit")
	}
	if p.RequireSpecial && !cc.hasSpecial {
		problems = append(problems, "password must contain at least one special character (!@#$%^&*...)")
	}

	if p.ForbidCommonPasswords && commonPasswords[strings.ToLower(password)] {
		problems = append(problems, "password is too common and easily guessable")
	}
	if p.ForbidUsername && username != "" &&
		strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		problems = append(problems, "password must not contain the username")
	}

	return problems
}

// ValidateWithError is a convenience method that returns an error if validation fails.
func (p PasswordPolicy) ValidateWithError(password, username string) error {
	if problems := p.Validate(password, username); len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// commonPasswords lists breached passwords that pass the character rules.
var commonPasswords = map[string]bool{
	"password1":     true,
	"password123":   true,
	"password1234":  true,
	"passw0rd":      true,
	"p@ssw0rd":      true,
	"p@ssword1":     true,
	"p@ssword123":   true,
	"qwerty123":     true,
	"qwerty1234":    true,
	"abc12345":      true,
	"abcd1234":      true,
	"letmein1":      true,
	"welcome1":      true,
	"welcome123":    true,
	"welcome@123":   true,
	"iloveyou1":     true,
	"admin123":      true,
	"admin1234":     true,
	"changeme1":     true,
	"trustno1":      true,
	"monkey123":     true,
	"dragon123":     true,
	"football1":     true,
	"baseball1":     true,
	"sunshine1":     true,
	"superman1":     true,
	"1q2w3e4r":      true,
	"1qaz2wsx":      true,
	"zaq12wsx":      true,
}
