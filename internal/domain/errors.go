package domain

import (
	"errors"
	"fmt"
)

// FetchError is the single error kind surfaced by the list fetch cycle.
// Network, decode and backend failures all collapse into it.
type FetchError struct {
	Err error
}

func (e FetchError) Error() string {
	if e.Err == nil {
		return "list fetch failed"
	}
	return fmt.Sprintf("list fetch failed: %v", e.Err)
}

func (e FetchError) Unwrap() error { return e.Err }

// Message is the human readable text shown on the error page.
func (e FetchError) Message() string {
	if e.Err == nil {
		return "list fetch failed"
	}
	return e.Err.Error()
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// FetchMessage extracts the display message from a fetch failure.
func FetchMessage(err error) string {
	var fe FetchError
	if errors.As(err, &fe) {
		return fe.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
