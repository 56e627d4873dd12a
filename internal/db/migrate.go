package db

import (
	"context" // Request-scoped database work
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Username normalization

	"account_service/internal/domain" // Importing domain models
	"account_service/internal/utils"  // Password hashing

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table managed by the service, parents first
var Models = []any{&domain.User{}, &domain.Profile{}, &domain.Address{}, &domain.Order{}}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	logrus.Info("Migration completed.")
	return nil
}

// ErrAdminLoginTaken is returned when the bootstrap admin name belongs to a regular account
var ErrAdminLoginTaken = errors.New("bootstrap admin login is taken by a non-admin account")

// SeedAdmin makes sure the bootstrap admin account exists with the admin role.
// The password is stored as a bcrypt hash like any other account. An existing
// admin keeps its password. A regular account with the same name is never
// promoted: seeding fails and the operator has to resolve the clash.
func SeedAdmin(ctx context.Context, db *gorm.DB, login, password string) error {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil // No bootstrap admin configured
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.User
		err := tx.Where("username = ?", login).First(&existing).Error
		if err == nil {
			if existing.Role == domain.RoleAdmin {
				return nil // Already seeded
			}
			logrus.WithField("username", login).Error("Bootstrap admin login belongs to a regular account")
			return fmt.Errorf("%w: %q", ErrAdminLoginTaken, login)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		admin := domain.User{
			Username:     login,
			Email:        login + "@admin.local",
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			Profile:      &domain.Profile{},
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		logrus.WithField("username", login).Info("Bootstrap admin created")
		return nil
	})
}
