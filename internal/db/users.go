package db

import (
	"context"
	"fmt"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetUser looks up a user by username.
func GetUser(ctx context.Context, db *gorm.DB, username string) (*model.User, error) {
	wrapMsg := fmt.Sprintf("unable to look up user '%s'", username)

	var user model.User
	err := db.WithContext(ctx).
		Preload("Laboratory").
		Preload("Laboratory.QuotaGroup").
		Where("username = ?", username).
		First(&user).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &user, nil
}

// EnsureUser looks up a user by username, creating the row if it doesn't exist yet.
func EnsureUser(ctx context.Context, db *gorm.DB, username string) (*model.User, error) {
	wrapMsg := fmt.Sprintf("unable to ensure that user '%s' exists", username)

	user, err := GetUser(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &model.User{Username: username}
	err = db.WithContext(ctx).Create(user).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return user, nil
}
