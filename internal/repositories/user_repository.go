package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "useradmin/internal/config"
	intdb "useradmin/internal/db"
	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
)

const (
	defaultLimit = 10
	maxLimit     = 200
	maxPage      = 1_000_000
)

// likeEscaper quotes LIKE wildcards so a search term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGINT AUTO_INCREMENT PRIMARY KEY,
	username      VARCHAR(100) NOT NULL UNIQUE,
	name          VARCHAR(150) NOT NULL,
	lastname      VARCHAR(150) NOT NULL,
	status        VARCHAR(20)  NOT NULL DEFAULT 'active',
	password_hash VARCHAR(255) NOT NULL,
	created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// UserFilter narrows a users listing.
type UserFilter struct {
	Status string
	Query  string
	Page   int
	Limit  int
}

// normalized clamps paging like the other list endpoints: page >= 1,
// 1 <= limit <= 200. Page is capped so the offset cannot overflow.
func (f UserFilter) normalized() UserFilter {
	f.Status = strings.TrimSpace(f.Status)
	f.Query = strings.TrimSpace(f.Query)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > maxPage {
		f.Page = maxPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// EnsureSchema creates the users table on first start.
func (r UserRepository) EnsureSchema(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	if intdb.HasTable(ctx, db, "users") {
		return nil
	}
	if _, err := db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// List returns one page of users plus the total matching count.
func (r UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, int, error) {
	f = f.normalized()
	db := r.db()
	if db == nil {
		return nil, 0, fmt.Errorf("database not connected")
	}

	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Query != "" {
		where = append(where, "(username LIKE ? OR name LIKE ? OR lastname LIKE ?)")
		like := "%" + likeEscaper.Replace(f.Query) + "%"
		args = append(args, like, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `
		SELECT id, username, name, lastname, status
		FROM users` + clause + `
		ORDER BY id DESC
		LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), f.Limit, (f.Page-1)*f.Limit)

	rows, err := db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	list := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Lastname, &u.Status); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return list, total, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, `
		SELECT id, username, name, lastname, status
		FROM users
		WHERE id = ? LIMIT 1`, id).Scan(&u.ID, &u.Username, &u.Name, &u.Lastname, &u.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// UsernameTaken reports whether another user (not exceptID) owns username.
func (r UserRepository) UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`, username, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User, passwordHash string) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (username, name, lastname, status, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())`,
		u.Username, u.Name, u.Lastname, u.Status, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// Update rewrites the profile fields. An empty passwordHash keeps the
// stored one.
func (r UserRepository) Update(ctx context.Context, u models.User, passwordHash string) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE users
		SET username = ?, name = ?, lastname = ?, status = ?,
		    password_hash = COALESCE(?, password_hash), updated_at = NOW()
		WHERE id = ?`,
		u.Username, u.Name, u.Lastname, u.Status, intdb.NullIfEmpty(passwordHash), u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return requireAffected(res, u.ID)
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}
