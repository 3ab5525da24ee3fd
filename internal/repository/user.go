package repository

import (
	"database/sql"

	"github.com/emilianohg/cyclence/internal/models"
)

type UserRepo struct {
	db Querier
}

func NewUserRepo(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

// GetOrCreate returns the user with email, creating it when missing. An
// existing user's name is updated when name is not empty.
func (r *UserRepo) GetOrCreate(email, name string) (*models.User, error) {
	_, err := r.db.Exec(`
		INSERT INTO users (email, name) VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET name = excluded.name WHERE excluded.name != ''
	`, email, name)
	if err != nil {
		return nil, err
	}
	return r.GetByEmail(email)
}

func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(
		"SELECT email, name, created_at FROM users WHERE email = ?",
		email,
	).Scan(&u.Email, &u.Name, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetAll() ([]models.User, error) {
	rows, err := r.db.Query("SELECT email, name, created_at FROM users ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
