// Package validate checks signup and login form fields.
//
// Blank detection runs before rule checks and is reported per field. Rule
// failures carry the field too, but callers surface them generically.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

type Field string

const (
	FieldUsername   Field = "username"
	FieldPassword   Field = "password"
	FieldEmail      Field = "email"
	FieldIdentifier Field = "identifier"
)

const (
	MaxUsernameLen   = 20
	MaxIdentifierLen = 20
	MinPasswordLen   = 6
	passwordSpecials = "!@#$%^&*"
)

var (
	ErrBlank   = errors.New("field is required")
	ErrInvalid = errors.New("field does not match requirements")
)

// Error is a validation failure tagged with the offending field.
type Error struct {
	Field Field
	Kind  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Input is one raw form value.
type Input struct {
	Field Field
	Value string
}

// Blank returns an *Error for the first input with an empty value.
func Blank(inputs ...Input) error {
	for _, in := range inputs {
		if strings.TrimSpace(in.Value) == "" {
			return &Error{Field: in.Field, Kind: ErrBlank}
		}
	}
	return nil
}

// Check validates raw against the rules of field. Password rules are the
// signup strength rules.
func Check(field Field, raw string) error {
	if raw == "" {
		return &Error{Field: field, Kind: ErrBlank}
	}
	var ok bool
	switch field {
	case FieldUsername:
		ok = validUsername(raw)
	case FieldPassword:
		ok = strongPassword(raw)
	case FieldEmail:
		ok = validEmail(raw)
	case FieldIdentifier:
		ok = len(raw) <= MaxIdentifierLen
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	if !ok {
		return &Error{Field: field, Kind: ErrInvalid}
	}
	return nil
}

// Signup validates a signup form: blanks first, then each field's rules.
func Signup(username, password, email string) error {
	if err := Blank(
		Input{FieldUsername, username},
		Input{FieldPassword, password},
		Input{FieldEmail, email},
	); err != nil {
		return err
	}
	for _, in := range []Input{{FieldUsername, username}, {FieldEmail, email}, {FieldPassword, password}} {
		if err := Check(in.Field, in.Value); err != nil {
			return err
		}
	}
	return nil
}

// Login validates a login form. Password strength is not re-checked.
func Login(identifier, password string) error {
	if err := Blank(
		Input{FieldIdentifier, identifier},
		Input{FieldPassword, password},
	); err != nil {
		return err
	}
	return Check(FieldIdentifier, identifier)
}

// FieldOf returns the field tag of a validation error.
func FieldOf(err error) (Field, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Field, true
	}
	return "", false
}

func validUsername(s string) bool {
	if len(s) == 0 || len(s) > MaxUsernameLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func strongPassword(s string) bool {
	if len(s) < MinPasswordLen {
		return false
	}
	var upper, digit, special bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.IndexByte(passwordSpecials, c) >= 0:
			special = true
		}
	}
	return upper && digit && special
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}
