package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	status, ok := NewService(nil).Status(context.Background())
	if !ok || status["storage"] != "memory" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()
	if status, ok := NewService(db).Status(context.Background()); !ok || status["database"] != "ok" {
		t.Fatalf("unexpected status %+v", status)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	if status, ok := NewService(db).Status(context.Background()); ok || status["database"] != "unreachable" {
		t.Fatalf("unexpected status %+v", status)
	}
}
