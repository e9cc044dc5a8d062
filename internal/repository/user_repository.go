package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/database"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// UserRepository defines user directory lookups used by authentication and
// by the notification sender.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserSQLRepository is the sqlx-backed implementation over the users table.
type UserSQLRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a SQL user repository.
func NewUserRepository(db *sqlx.DB) *UserSQLRepository {
	return &UserSQLRepository{db: db}
}

const userColumns = `id, login, email, first_name, last_name, password, role, valid_id, created_at`

// Create inserts a new user.
func (r *UserSQLRepository) Create(ctx context.Context, user *models.User) error {
	query := database.ConvertPlaceholders(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Login, user.Email, user.FirstName, user.LastName,
		user.Password, user.Role, user.ValidID, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves one user.
func (r *UserSQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByLogin retrieves one user by login name.
func (r *UserSQLRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getWhere(ctx, "login = ?", login)
}

// GetByEmail retrieves one user by email address.
func (r *UserSQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getWhere(ctx, "email = ?", email)
}

func (r *UserSQLRepository) getWhere(ctx context.Context, where string, arg any) (*models.User, error) {
	query := database.ConvertPlaceholders(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
