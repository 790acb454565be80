package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const userColumns = `id, email, password, name, phone, createdAt`

type userRepository struct {
	store *Store
}

func (r *userRepository) Register(ctx context.Context, user *User) (int64, error) {
	if user == nil {
		return 0, fmt.Errorf("register user: user is nil")
	}
	db, err := r.store.conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("register user: %w", err)
	}

	user.CreatedAt = r.store.nowUTC()
	result, err := db.ExecContext(ctx, `
		INSERT INTO users(email, password, name, phone, createdAt)
		VALUES(?, ?, ?, ?, ?)
	`, user.Email, user.Password, user.Name, user.Phone, toMillis(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("register user: %w: %s", ErrDuplicateEmail, user.Email)
		}
		return 0, fmt.Errorf("register user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("register user: last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

// FindByCredentials matches email and password exactly as stored.
func (r *userRepository) FindByCredentials(ctx context.Context, email, password string) (*User, error) {
	return r.getOne(ctx, "find user by credentials",
		`SELECT `+userColumns+` FROM users WHERE email = ? AND password = ?`, email, password)
}

func (r *userRepository) Get(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "get user", `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) getOne(ctx context.Context, op, query string, args ...any) (*User, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var row userRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}
