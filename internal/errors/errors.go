// Package errors defines the closed set of failure kinds that finch can surface to a client,
// and the mapping from each kind to an HTTP status and user-facing message prefix.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure kinds. New kinds must be appended before kindCount and
// given an entry in kinds; TestKindsHaveMetadata fails for any kind left without one.
type Kind int

const (
	// StoreExec indicates a statement failed to execute
	StoreExec Kind = iota
	// StoreConnection indicates the store could not be reached or the connection was lost
	StoreConnection
	// StoreSerialization indicates a value could not be encoded or decoded
	StoreSerialization
	// StoreQuery indicates a read query failed
	StoreQuery
	// StoreRecordNotFound indicates a lookup matched no rows
	StoreRecordNotFound
	// StoreType indicates a column could not be converted into the target type
	StoreType
	// StoreCustom indicates a store failure outside the other categories
	StoreCustom
	// StoreDeadline indicates a store call exceeded its deadline
	StoreDeadline
	// TemplateRender indicates a template failed to execute
	TemplateRender
	// TemplateCompile indicates the template set failed to load or parse
	TemplateCompile
	// StaticIO indicates the static file tree could not be read
	StaticIO
	// RouteNotFound indicates no route matched the request
	RouteNotFound
	// Internal indicates an unexpected failure, such as a recovered panic
	Internal

	kindCount
)

type kindInfo struct {
	code   string
	prefix string
	status int
}

var kinds = [...]kindInfo{
	StoreExec:           {"store-execution-failure", "Execution error", http.StatusInternalServerError},
	StoreConnection:     {"store-connection-failure", "Connection error", http.StatusInternalServerError},
	StoreSerialization:  {"store-serialization-failure", "JSON error", http.StatusInternalServerError},
	StoreQuery:          {"store-query-failure", "Query error", http.StatusInternalServerError},
	StoreRecordNotFound: {"store-record-not-found", "Record not found error", http.StatusNotFound},
	StoreType:           {"store-type-mismatch", "Type error", http.StatusInternalServerError},
	StoreCustom:         {"store-custom-failure", "Custom error", http.StatusInternalServerError},
	StoreDeadline:       {"store-deadline-exceeded", "Deadline exceeded error", http.StatusGatewayTimeout},
	TemplateRender:      {"template-render-failure", "", http.StatusInternalServerError},
	TemplateCompile:     {"template-compile-failure", "", http.StatusInternalServerError},
	StaticIO:            {"static-asset-io-failure", "Static service error", http.StatusInternalServerError},
	RouteNotFound:       {"route-not-found", "", http.StatusNotFound},
	Internal:            {"internal-error", "Internal error", http.StatusInternalServerError},
}

// Fails to compile when kinds is shorter than the Kind constants. This catches only a missing
// trailing entry; a gap in the middle is left zero-valued and caught by TestKindsHaveMetadata.
var _ = [1]struct{}{}[len(kinds)-int(kindCount)]

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// String returns the stable code of the kind, e.g. "store-query-failure"
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kinds[k].code
}

// Status returns the HTTP status code a failure of this kind is served with
func (k Kind) Status() int {
	if k < 0 || k >= kindCount {
		return http.StatusInternalServerError
	}
	return kinds[k].status
}

// Prefix returns the user-facing message prefix, or "" when the message is shown as is
func (k Kind) Prefix() string {
	if k < 0 || k >= kindCount {
		return ""
	}
	return kinds[k].prefix
}

// IsStore reports whether the kind originates from the relational store
func (k Kind) IsStore() bool {
	return k >= StoreExec && k <= StoreDeadline
}

// Error is a failure tagged with its Kind
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New creates a new Error
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		cause:   cause,
	}
}

// Store wraps a store failure, using the cause text as the message
func Store(kind Kind, cause error) *Error {
	return New(kind, causeText(cause), cause)
}

// Template wraps a template engine failure, using the cause text as the message
func Template(kind Kind, cause error) *Error {
	return New(kind, causeText(cause), cause)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for the error
func (e *Error) Status() int {
	return e.Kind.Status()
}

// UserMessage returns the text shown to the client, prefixed according to the kind
func (e *Error) UserMessage() string {
	if p := e.Kind.Prefix(); p != "" {
		return p + ": " + e.Message
	}
	return e.Message
}

// From normalizes any error into an *Error. Errors already carrying a kind are returned
// unchanged; deadline expiry becomes StoreDeadline; everything else is Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return Store(StoreDeadline, err)
	}
	return New(Internal, err.Error(), err)
}

// KindOf returns the kind of err after normalization
func KindOf(err error) Kind {
	if e := From(err); e != nil {
		return e.Kind
	}
	return Internal
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
