package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization_error"
	KindPersistence   ErrorKind = "persistence_error"
)

// Error is the only error type returned by the services. Detail carries
// machine-readable context (field names, ids); callers build any text.
type Error struct {
	Kind   ErrorKind
	Op     string
	Detail map[string]any
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(op string, detail map[string]any) *Error {
	return &Error{Kind: KindValidation, Op: op, Detail: detail}
}

func notFoundError(op, entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Detail: map[string]any{"entity": entity, "id": id}}
}

func authorizationError(op, reason string) *Error {
	return &Error{Kind: KindAuthorization, Op: op, Detail: map[string]any{"reason": reason}}
}

const (
	reasonBaristaRequired    = "barista_required"
	reasonInvalidCredentials = "invalid_credentials"
	reasonInvalidSession     = "invalid_session"
	reasonNotOrderOwner      = "not_order_owner"
)

func persistenceError(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// KindOf returns the kind of err, or "" for errors not produced here.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// wrapDB maps gorm errors: record-not-found becomes NotFound, anything else Persistence.
func wrapDB(op, entity string, id any, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(op, entity, id)
	}
	return persistenceError(op, err)
}

func (e *Error) ErrorKind() string { return string(e.Kind) }

func (e *Error) ErrorDetail() map[string]any { return e.Detail }
