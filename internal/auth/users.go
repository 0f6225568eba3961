package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-tasks/internal/db"
	"github.com/mind-engage/mindengage-tasks/internal/rbac"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

const bcryptCost = 12

var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrUsernameTaken      = &validate.Error{Field: "username", Msg: "is already taken"}
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username" validate:"required,max=150"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool { return u.Role == rbac.RoleAdmin }

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    int64  `db:"created_at"`
}

func (r userRow) user() User {
	return User{ID: r.ID, Username: r.Username, Role: r.Role, CreatedAt: time.Unix(0, r.CreatedAt)}
}

// Users is the SQL-backed account store.
type Users struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUsers(h *sqlx.DB) *Users { return &Users{db: h, now: time.Now} }

// Create hashes password and inserts a new account.
func (s *Users) Create(ctx context.Context, username, password, role string) (User, error) {
	u := User{Username: username, Role: role, CreatedAt: s.now()}
	if err := validate.Struct(u); err != nil {
		return User{}, err
	}
	if !rbac.ValidRole(role) {
		return User{}, validate.Errorf("role", "must be one of: %s, %s", rbac.RoleAdmin, rbac.RoleUser)
	}
	if len(password) < 8 {
		return User{}, validate.Errorf("password", "must be at least 8 characters")
	}
	if _, err := s.byUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	q := s.db.Rebind(`INSERT INTO users (username, password_hash, role, created_at) VALUES (?,?,?,?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, u.Username, string(hash), u.Role, u.CreatedAt.UnixNano()).Scan(&u.ID); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when password matches, ErrInvalidCredentials otherwise.
func (s *Users) Authenticate(ctx context.Context, username, password string) (User, error) {
	row, err := s.byUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return row.user(), nil
}

func (s *Users) GetByID(ctx context.Context, id int64) (User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM users WHERE id=?`), id)
	if db.IsNoRows(err) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return row.user(), nil
}

func (s *Users) byUsername(ctx context.Context, username string) (userRow, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM users WHERE username=?`), username)
	if db.IsNoRows(err) {
		return userRow{}, ErrUserNotFound
	}
	if err != nil {
		return userRow{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return row, nil
}
