package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// Open dials PostgreSQL and returns a store with tuned pool defaults.
func Open(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PGStore{db: db}, nil
}

// NewPGStore wraps an existing pool (used by tests with sqlmock).
func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) DB() *sql.DB { return s.db }

func (s *PGStore) Users() UserStore       { return &pgUsers{db: s.db} }
func (s *PGStore) Sessions() SessionStore { return &pgSessions{db: s.db} }
func (s *PGStore) Audit() AuditStore      { return &pgAudit{db: s.db} }

type pgUsers struct {
	db *sql.DB
}

const userColumns = `id, role, first_name, last_name, email, password_hash, account_status, session_status, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Role, &u.FirstName, &u.LastName, &u.Email,
		&u.PasswordHash, &u.AccountStatus, &u.SessionStatus, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *pgUsers) Create(ctx context.Context, u *User) error {
	_, err := p.db.ExecContext(ctx, `
		insert into users(id, role, first_name, last_name, email, password_hash, account_status, session_status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, u.ID, u.Role, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.AccountStatus, u.SessionStatus, u.CreatedAt)
	return err
}

func (p *pgUsers) Find(ctx context.Context, id string) (*User, error) {
	return scanUser(p.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id))
}

func (p *pgUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(p.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email))
}

func (p *pgUsers) List(ctx context.Context, filter UserFilter) ([]*User, error) {
	q := `select ` + userColumns + ` from users`
	var (
		args  []any
		where []string
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.AccountStatus != "" {
		args = append(args, filter.AccountStatus)
		where = append(where, fmt.Sprintf("account_status=$%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			q += " where " + cond
		} else {
			q += " and " + cond
		}
	}
	q += " order by id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" limit $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (p *pgUsers) Update(ctx context.Context, u *User) error {
	res, err := p.db.ExecContext(ctx, `
		update users set role=$2, first_name=$3, last_name=$4, email=$5 where id=$1
	`, u.ID, u.Role, u.FirstName, u.LastName, u.Email)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *pgUsers) SetAccountStatus(ctx context.Context, id, status string) error {
	res, err := p.db.ExecContext(ctx, `update users set account_status=$2 where id=$1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *pgUsers) SetSessionStatus(ctx context.Context, id, status string) error {
	res, err := p.db.ExecContext(ctx, `update users set session_status=$2 where id=$1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *pgUsers) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := p.db.ExecContext(ctx, `update users set password_hash=$2 where id=$1`, id, hash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type pgSessions struct {
	db *sql.DB
}

func (p *pgSessions) Find(ctx context.Context, userID string) (*Session, error) {
	var (
		s        Session
		token    sql.NullString
		activity sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, `
		select user_id, device, token, last_activity from sessions where user_id=$1
	`, userID).Scan(&s.UserID, &s.Device, &token, &activity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Token = token.String
	if activity.Valid {
		s.LastActivity = activity.Time
	}
	return &s, nil
}

func (p *pgSessions) Upsert(ctx context.Context, s *Session) error {
	_, err := p.db.ExecContext(ctx, `
		insert into sessions(user_id, device, token, last_activity)
		values ($1,$2,$3,$4)
		on conflict (user_id) do update
		set device = excluded.device, token = excluded.token, last_activity = excluded.last_activity
	`, s.UserID, s.Device, nullString(s.Token), s.LastActivity)
	return err
}

func (p *pgSessions) UpdateToken(ctx context.Context, userID, token string) error {
	_, err := p.db.ExecContext(ctx, `
		insert into sessions(user_id, token)
		values ($1,$2)
		on conflict (user_id) do update set token = excluded.token
	`, userID, nullString(token))
	return err
}

func (p *pgSessions) Touch(ctx context.Context, userID string, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `
		insert into sessions(user_id, last_activity)
		values ($1,$2)
		on conflict (user_id) do update set last_activity = excluded.last_activity
	`, userID, at)
	return err
}

func (p *pgSessions) Logout(ctx context.Context, userID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `update users set session_status=$2 where id=$1`, userID, SessionLoggedOff)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `update sessions set token=null where user_id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type pgAudit struct {
	db *sql.DB
}

func (p *pgAudit) Append(ctx context.Context, entry *AuditEntry) error {
	_, err := p.db.ExecContext(ctx, `
		insert into audit_log(id, user_id, user_name, role, action, occurred_at)
		values ($1,$2,$3,$4,$5,$6)
	`, entry.ID, entry.UserID, entry.UserName, entry.Role, entry.Action, entry.OccurredAt)
	return err
}

// List pages newest first; ULID ids order by creation time, so descending id
// order is descending time order.
func (p *pgAudit) List(ctx context.Context, limit int, afterID string) ([]*AuditEntry, error) {
	q := `select id, user_id, user_name, role, action, occurred_at from audit_log`
	var args []any
	if afterID != "" {
		args = append(args, afterID)
		q += " where id < $1"
	}
	q += " order by id desc"
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" limit $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Role, &e.Action, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
