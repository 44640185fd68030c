package db

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/padraicbc/thunderbolt/models"
)

// Users reads and writes API users.
type Users struct {
	db bun.IDB
}

func NewUsers(db bun.IDB) *Users {
	return &Users{db: db}
}

// ByUsername returns sql.ErrNoRows when the user does not exist.
func (u *Users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := u.db.NewSelect().Model(user).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Upsert creates the user or replaces its password hash.
func (u *Users) Upsert(ctx context.Context, username, passwordHash string) error {
	user := &models.User{Username: username, Password: passwordHash}
	q := u.db.NewInsert().Model(user)
	if u.db.Dialect().Name() == dialect.MySQL {
		q = q.On("DUPLICATE KEY UPDATE").Set("password = VALUES(password)")
	} else {
		q = q.On("CONFLICT (username) DO UPDATE").Set("password = EXCLUDED.password")
	}
	_, err := q.Exec(ctx)
	return err
}
