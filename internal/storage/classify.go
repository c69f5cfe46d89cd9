package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	stderrors "errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"finch/internal/errors"
)

// classify tags a driver error with the kind that best describes it. fallback is used when the
// error carries no more specific signal, and depends on the operation that failed.
func classify(err error, fallback errors.Kind) error {
	if err == nil {
		return nil
	}

	var tagged *errors.Error
	if stderrors.As(err, &tagged) {
		return err
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Store(errors.StoreDeadline, err)
	case stderrors.Is(err, context.Canceled):
		// The caller went away; nothing timed out.
		return errors.Store(fallback, err)
	case stderrors.Is(err, sql.ErrNoRows):
		return errors.Store(errors.StoreRecordNotFound, err)
	case isConnectionError(err):
		return errors.Store(errors.StoreConnection, err)
	case isSerializationError(err):
		return errors.Store(errors.StoreSerialization, err)
	}

	return errors.Store(fallback, err)
}

func isConnectionError(err error) bool {
	if stderrors.Is(err, sql.ErrConnDone) || stderrors.Is(err, driver.ErrBadConn) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if stderrors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	// database/sql reports use after Close with an unexported error value.
	return strings.Contains(err.Error(), "sql: database is closed")
}

func isSerializationError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr)
}
