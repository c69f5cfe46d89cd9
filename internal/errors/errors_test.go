package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestKindsHaveMetadata(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds() {
		code := k.String()
		if code == "" || strings.HasPrefix(code, "kind(") {
			t.Errorf("kind %d has no code", int(k))
		}
		if prev, ok := seen[code]; ok {
			t.Errorf("kinds %d and %d share code %q", int(prev), int(k), code)
		}
		seen[code] = k

		if k.Status() < 400 || k.Status() > 599 {
			t.Errorf("%s: Status() = %d, want an error status", k, k.Status())
		}
	}

	if len(Kinds()) != int(kindCount) {
		t.Errorf("len(Kinds()) = %d, want %d", len(Kinds()), kindCount)
	}
}

func TestStoreKindPrefixes(t *testing.T) {
	tests := []struct {
		kind   Kind
		prefix string
		status int
	}{
		{StoreExec, "Execution error", http.StatusInternalServerError},
		{StoreConnection, "Connection error", http.StatusInternalServerError},
		{StoreSerialization, "JSON error", http.StatusInternalServerError},
		{StoreQuery, "Query error", http.StatusInternalServerError},
		{StoreRecordNotFound, "Record not found error", http.StatusNotFound},
		{StoreType, "Type error", http.StatusInternalServerError},
		{StoreCustom, "Custom error", http.StatusInternalServerError},
		{StoreDeadline, "Deadline exceeded error", http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if !tt.kind.IsStore() {
				t.Errorf("IsStore() = false, want true")
			}
			err := Store(tt.kind, errors.New("boom"))
			want := tt.prefix + ": boom"
			if got := err.UserMessage(); got != want {
				t.Errorf("UserMessage() = %q, want %q", got, want)
			}
			if err.Status() != tt.status {
				t.Errorf("Status() = %d, want %d", err.Status(), tt.status)
			}
		})
	}
}

func TestTemplateMessagesAreUnprefixed(t *testing.T) {
	for _, k := range []Kind{TemplateRender, TemplateCompile} {
		err := Template(k, errors.New(`template "index.html" not found`))
		if err.UserMessage() != `template "index.html" not found` {
			t.Errorf("%s: UserMessage() = %q", k, err.UserMessage())
		}
		if err.Status() != http.StatusInternalServerError {
			t.Errorf("%s: Status() = %d, want 500", k, err.Status())
		}
		if k.IsStore() {
			t.Errorf("%s: IsStore() = true", k)
		}
	}
}

func TestFrom(t *testing.T) {
	typed := Store(StoreQuery, errors.New("no such table: teams"))
	wrapped := fmt.Errorf("list teams: %w", typed)

	if got := From(wrapped); got != typed {
		t.Errorf("From(wrapped) = %v, want the original *Error", got)
	}

	if got := From(fmt.Errorf("query: %w", context.DeadlineExceeded)); got.Kind != StoreDeadline {
		t.Errorf("From(deadline).Kind = %s, want %s", got.Kind, StoreDeadline)
	}

	if got := From(errors.New("plain")); got.Kind != Internal {
		t.Errorf("From(plain).Kind = %s, want %s", got.Kind, Internal)
	}

	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(StoreConnection, "dial store", cause)

	got := err.Error()
	for _, part := range []string{"store-connection-failure", "dial store", "connection refused"} {
		if !strings.Contains(got, part) {
			t.Errorf("Error() = %q, want to contain %q", got, part)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}

	same := Store(StoreConnection, cause)
	if strings.Count(same.Error(), "connection refused") != 1 {
		t.Errorf("Error() repeats the cause: %q", same.Error())
	}
}

func TestUnknownKind(t *testing.T) {
	k := Kind(999)
	if k.Status() != http.StatusInternalServerError {
		t.Errorf("Status() = %d, want 500", k.Status())
	}
	if k.Prefix() != "" {
		t.Errorf("Prefix() = %q, want empty", k.Prefix())
	}
	if k.String() != "kind(999)" {
		t.Errorf("String() = %q", k.String())
	}
}
