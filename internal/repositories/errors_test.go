package repositories

import (
	"database/sql/driver"
	"errors"
	"testing"
)

func TestDriverFailuresChainToConnection(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"closed handle", errors.New("sql: database is closed")},
		{"unopenable file", errors.New("unable to open database file: no such file or directory")},
		{"locked database", errors.New("database is locked")},
		{"bad connection", driver.ErrBadConn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := NewRepositoryError("list", "invoice", "", tc.err)
			if !IsUnavailable(wrapped) {
				t.Errorf("NewRepositoryError(%v) = %v, want unavailable", tc.err, wrapped)
			}
			txErr := TransactionError("begin", tc.err)
			if !IsUnavailable(txErr) {
				t.Errorf("TransactionError(%v) = %v, want unavailable", tc.err, txErr)
			}
		})
	}
}

func TestOrdinaryErrorsDoNotChainToConnection(t *testing.T) {
	err := NewRepositoryError("list", "invoice", "", errors.New("no such column: nope"))
	if IsUnavailable(err) {
		t.Errorf("NewRepositoryError(statement error) = %v, must not read as unavailable", err)
	}
	if IsUnavailable(TransactionError("commit", errors.New("constraint failed"))) {
		t.Error("TransactionError(constraint) must not read as unavailable")
	}
}
