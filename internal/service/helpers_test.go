package service

import (
	"context"
	"testing"

	"account_service/internal/config"
	"account_service/internal/db"
	"account_service/internal/store"
	"account_service/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(&config.Config{DBDriver: config.DriverSQLite, DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func strPtr(s string) *string { return &s }

type fixture struct {
	db        *gorm.DB
	users     *UserService
	profiles  *ProfileService
	addresses *AddressService
	orders    *OrderService
	auth      *AuthService
	tokens    *utils.TokenService
	blacklist *store.MemoryBlacklist
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gdb := setupDB(t)
	tokens := utils.NewTokenService("test-secret")
	blacklist := store.NewMemoryBlacklist()
	return fixture{
		db:        gdb,
		users:     NewUserService(gdb),
		profiles:  NewProfileService(gdb),
		addresses: NewAddressService(gdb),
		orders:    NewOrderService(gdb),
		auth:      NewAuthService(gdb, tokens, blacklist),
		tokens:    tokens,
		blacklist: blacklist,
	}
}

func (f fixture) createAlice(t *testing.T) {
	t.Helper()
	_, err := f.users.Create(context.Background(), CreateUserInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "secret123",
	})
	require.NoError(t, err)
}
