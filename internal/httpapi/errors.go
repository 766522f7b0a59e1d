package httpapi

import (
	"errors"
	"net/url"

	"memberportal/web-service/internal/auth"
	"memberportal/web-service/internal/store"
	"memberportal/web-service/internal/validate"
)

// Query parameter values for form failures.
const (
	errBlank         = "blank"
	errPassword      = "password"
	errInvalid       = "invalid"
	errUsernameTaken = "username_taken"
	errEmailTaken    = "email_taken"
)

// signupFailure translates a signup error into redirect query parameters.
// It returns false for errors that are not the user's fault.
func signupFailure(err error) (url.Values, bool) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr) && errors.Is(err, validate.ErrBlank):
		return url.Values{"error": {errBlank}, "field": {string(verr.Field)}}, true
	case errors.As(err, &verr) && verr.Field == validate.FieldPassword:
		return url.Values{"error": {errPassword}}, true
	case errors.As(err, &verr):
		return url.Values{"error": {errInvalid}, "field": {string(verr.Field)}}, true
	case errors.Is(err, store.ErrDuplicateUsername):
		return url.Values{"error": {errUsernameTaken}}, true
	case errors.Is(err, store.ErrDuplicateEmail):
		return url.Values{"error": {errEmailTaken}}, true
	}
	return nil, false
}

// loginFailure is signupFailure for the login form. A malformed identifier
// reads the same as wrong credentials.
func loginFailure(err error) (url.Values, bool) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr) && errors.Is(err, validate.ErrBlank):
		return url.Values{"error": {errBlank}, "field": {string(verr.Field)}}, true
	case errors.As(err, &verr), errors.Is(err, auth.ErrInvalidCredentials):
		return url.Values{"error": {errInvalid}}, true
	}
	return nil, false
}

var fieldLabels = map[string]string{
	string(validate.FieldUsername):   "username",
	string(validate.FieldPassword):   "password",
	string(validate.FieldEmail):      "email",
	string(validate.FieldIdentifier): "username or email",
}

// formMessage renders the error parameters of a form page back into text.
func formMessage(q url.Values, login bool) string {
	label := fieldLabels[q.Get("field")]
	switch q.Get("error") {
	case "":
		return ""
	case errBlank:
		if label == "" {
			return "Please fill in every field."
		}
		return "Please provide a " + label + "."
	case errPassword:
		return "Password must be at least 6 characters and include an uppercase letter, a digit and one of !@#$%^&*."
	case errUsernameTaken:
		return "That username is already taken."
	case errEmailTaken:
		return "That email is already registered."
	case errInvalid:
		if login {
			return auth.ErrInvalidCredentials.Error() + "."
		}
		if label == "" {
			return "Invalid input."
		}
		return "Invalid " + label + "."
	}
	return "Something went wrong, please try again."
}
