package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record conflict")
	ErrRetryable = errors.New("transient database failure")
)

// Map classifies driver errors so callers can branch with errors.Is.
// The original error stays in the chain.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Op: op, Kind: ErrNotFound, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return &Error{Op: op, Kind: ErrConflict, Err: err}
		case "23503": // foreign_key_violation
			return &Error{Op: op, Kind: ErrNotFound, Err: err}
		case "40001", "40P01", "55P03":
			return &Error{Op: op, Kind: ErrRetryable, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return &Error{Op: op, Kind: ErrConflict, Err: err}
	case strings.Contains(msg, "foreign key constraint failed"):
		return &Error{Op: op, Kind: ErrNotFound, Err: err}
	case strings.Contains(msg, "database is locked"):
		return &Error{Op: op, Kind: ErrRetryable, Err: err}
	}
	return &Error{Op: op, Err: err}
}

type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}
