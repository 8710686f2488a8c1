package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGStore(db), mock
}

func TestPGFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "role", "first_name", "last_name", "email",
		"password_hash", "account_status", "session_status", "created_at",
	}).AddRow("u-1", "admin", "Ada", "Lovelace", "ada@example.com", "hash", "active", "loggedOff", created)
	mock.ExpectQuery("select (.+) from users where email=").WithArgs("ada@example.com").WillReturnRows(rows)

	u, err := store.Users().FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != "u-1" || u.Role != RoleAdmin || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", u)
	}

	mock.ExpectQuery("select (.+) from users where email=").WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
	if _, err := store.Users().FindByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGSessionUpsert(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Now().UTC()

	mock.ExpectExec("insert into sessions").
		WithArgs("u-1", "fp", sqlmock.AnyArg(), at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Sessions().Upsert(context.Background(), &Session{
		UserID:       "u-1",
		Device:       "fp",
		Token:        "tok",
		LastActivity: at,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGSessionFindNullToken(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"user_id", "device", "token", "last_activity"}).
		AddRow("u-1", "fp", nil, nil)
	mock.ExpectQuery("select user_id, device, token, last_activity from sessions").
		WithArgs("u-1").WillReturnRows(rows)

	s, err := store.Sessions().Find(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if s.Token != "" {
		t.Fatalf("null token must scan as empty, got %q", s.Token)
	}
	if !s.LastActivity.IsZero() {
		t.Fatalf("null activity must scan as zero, got %v", s.LastActivity)
	}
}

func TestPGLogoutTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update users set session_status=").
		WithArgs("u-1", SessionLoggedOff).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update sessions set token=null").
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Sessions().Logout(context.Background(), "u-1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGLogoutUnknownUserRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update users set session_status=").
		WithArgs("ghost", SessionLoggedOff).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := store.Sessions().Logout(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGAuditListNewestFirst(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "user_name", "role", "action", "occurred_at"}).
		AddRow("log-3", "u-1", "Ada Lovelace", "admin", "x", at).
		AddRow("log-2", "u-1", "Ada Lovelace", "admin", "y", at)
	mock.ExpectQuery("select (.+) from audit_log where id < (.+) order by id desc").
		WithArgs("log-4", 2).
		WillReturnRows(rows)

	out, err := store.Audit().List(context.Background(), 2, "log-4")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 || out[0].ID != "log-3" || out[1].ID != "log-2" {
		t.Fatalf("unexpected page: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGAuditAppend(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Now().UTC()

	mock.ExpectExec("insert into audit_log").
		WithArgs("log-1", "u-1", "Ada Lovelace", "admin", "Ada Lovelace logged in from device fp", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Audit().Append(context.Background(), &AuditEntry{
		ID:         "log-1",
		UserID:     "u-1",
		UserName:   "Ada Lovelace",
		Role:       RoleAdmin,
		Action:     "Ada Lovelace logged in from device fp",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
