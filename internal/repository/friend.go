package repository

import (
	"github.com/emilianohg/cyclence/internal/models"
)

type FriendRepo struct {
	db Querier
}

func NewFriendRepo(db Querier) *FriendRepo {
	return &FriendRepo{db: db}
}

// Add makes a and b friends of each other.
func (r *FriendRepo) Add(a, b string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO friendships (user_email, friend_email) VALUES (?, ?), (?, ?)
	`, a, b, b, a)
	return err
}

func (r *FriendRepo) AreFriends(a, b string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM friendships WHERE user_email = ? AND friend_email = ?",
		a, b,
	).Scan(&n)
	return n > 0, err
}

func (r *FriendRepo) ListFriends(email string) ([]models.User, error) {
	rows, err := r.db.Query(`
		SELECT u.email, u.name, u.created_at
		FROM friendships f
		JOIN users u ON u.email = f.friend_email
		WHERE f.user_email = ?
		ORDER BY u.name, u.email
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}
