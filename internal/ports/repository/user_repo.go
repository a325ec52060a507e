package repository

import (
	"context"
	"database/sql"
	"errors"

	"graficaos.service/internal/core/model"
)

// UserPostgresRepository reads users; user management lives elsewhere.
type UserPostgresRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &UserPostgresRepository{DB: db}
}

// GetByID fetches a user by id.
func (r *UserPostgresRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, name, email, role, initials, avatar_color, active
	          FROM users WHERE id = $1`

	u := &model.User{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.Initials, &u.AvatarColor, &u.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
