// Package errs defines the error kinds reported by the upload pipeline.
//
// Configuration and authentication errors are fatal for a run, remote service errors abort the remaining
// steps of a run and data errors are downgraded to null values by the transformers.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the class of an error. Kinds are strings so they read naturally in logs.
type Kind string

const (
	// KindConfig is a missing or invalid configuration value or secret.
	KindConfig Kind = "CONFIGURATION"

	// KindAuth is a credential that could not be obtained or refreshed.
	KindAuth Kind = "AUTHENTICATION"

	// KindRemote is a failed call to the spreadsheet service.
	KindRemote Kind = "REMOTE_SERVICE"

	// KindData is a value that could not be coerced to its target type.
	KindData Kind = "DATA"
)

// Error is a classified error. Op names the operation that failed and Err is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%v: %v", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind so that errors.Is(err, &Error{Kind: KindAuth}) works as a
// class test.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Op == "" && t.Err == nil
	}

	return false
}

func ConfigError(op string, format string, args ...any) error {
	return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf(format, args...)}
}

func AuthError(op string, err error) error {
	return &Error{Kind: KindAuth, Op: op, Err: err}
}

// RemoteServiceError classifies a failed remote call. A cause that is already a remote service error is returned
// as is. Any other classified cause (e.g. an expired credential) is wrapped and stays visible to IsAuth/IsConfig.
func RemoteServiceError(op string, err error) error {
	if IsRemote(err) {
		return err
	}

	return &Error{Kind: KindRemote, Op: op, Err: err}
}

func DataError(op string, format string, args ...any) error {
	return &Error{Kind: KindData, Op: op, Err: fmt.Errorf(format, args...)}
}

func IsConfig(err error) bool {
	return is(err, KindConfig)
}

func IsAuth(err error) bool {
	return is(err, KindAuth)
}

func IsRemote(err error) bool {
	return is(err, KindRemote)
}

func IsData(err error) bool {
	return is(err, KindData)
}

func is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		} else if e.Kind == kind {
			return true
		}

		err = e.Err
	}

	return false
}
