package sqlite

import (
	"context"
	"database/sql"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// UserRepository implements the repositories.UserRepository interface
// for SQLite
type UserRepository struct {
	baseRepository
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(db *sql.DB, logger *logrus.Logger) repositories.UserRepository {
	return &UserRepository{
		baseRepository: newBaseRepository(db, "users", logger),
	}
}

const userColumns = `
	id, username, name, email, phone, role, password_hash, created_at, updated_at`

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	query := `
		INSERT INTO users (` + userColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		user.ID,
		user.Username,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("user", "username", user.Username)
		}
		return err
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	row := r.executeQueryRow(ctx, "get_by_id", query, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("user", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "user", id, err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	row := r.executeQueryRow(ctx, "get_by_username", query, username)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("user", username)
		}
		return nil, repositories.NewRepositoryError("get_by_username", "user", username, err)
	}

	return user, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	query := `
		UPDATE users
		SET username = ?, name = ?, email = ?, phone = ?, role = ?,
			password_hash = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		user.Username,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", user.ID)
}

// Delete deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "delete", "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", id)
}

// List retrieves all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.executeQuery(ctx, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListByRole retrieves users with the given role
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ? ORDER BY username`

	rows, err := r.executeQuery(ctx, "list_by_role", query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// DeleteByRole removes every user with the given role
func (r *UserRepository) DeleteByRole(ctx context.Context, role models.Role) error {
	_, err := r.executeExec(ctx, "delete_by_role", "DELETE FROM users WHERE role = ?", role)
	return err
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	row := r.executeQueryRow(ctx, "count", "SELECT COUNT(*) FROM users")
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", "user", "", err)
	}
	return count, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func collectUsers(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("scan", "user", "", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("scan", "user", "", err)
	}
	return users, nil
}
