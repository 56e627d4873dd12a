package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"account_service/internal/apperr"
	"account_service/internal/domain"
	"account_service/internal/store"
	"account_service/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperr.Unauthorized("invalid credentials")

// AuthService verifies credentials and manages the bearer token lifecycle
type AuthService struct {
	db        *gorm.DB
	tokens    *utils.TokenService
	blacklist store.Blacklist
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenService, blacklist store.Blacklist) *AuthService {
	return &AuthService{db: db, tokens: tokens, blacklist: blacklist}
}

// VerifyCredentials looks the user up by its unique username and checks the
// password against the stored hash. Any mismatch is reported as Unauthorized.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (domain.User, error) {
	normalized := NormalizeUsername(username)
	if normalized == "" {
		utils.BurnPasswordCheck(password)
		return domain.User{}, errInvalidCredentials
	}

	var user domain.User
	err := s.db.WithContext(ctx).Preload("Profile").Where("username = ?", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.BurnPasswordCheck(password)
		return domain.User{}, errInvalidCredentials
	}
	if err != nil {
		return domain.User{}, apperr.Wrap(err, "VerifyCredentials")
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(normalized), []byte(user.Username)) == 1
	passwordOK := utils.CheckPassword(password, user.PasswordHash)
	if !usernameOK || !passwordOK {
		if !utils.IsBcryptHash(user.PasswordHash) {
			logrus.WithField("username", user.Username).Warn("Stored password hash is not bcrypt")
		}
		return domain.User{}, errInvalidCredentials
	}
	return user, nil
}

// LoginResult is the bearer credential issued on login
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	User        domain.User
}

// Login verifies credentials and mints an access token for the user
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username": NormalizeUsername(username),
			"error":    err.Error(),
		}).Warn("Login failed")
		return LoginResult{}, err
	}
	token, err := s.tokens.Mint(user.Username)
	if err != nil {
		return LoginResult{}, apperr.Wrap(err, "Login")
	}
	logrus.WithField("username", user.Username).Info("User logged in")
	return LoginResult{AccessToken: token, TokenType: "bearer", ExpiresIn: s.tokens.TTL(), User: user}, nil
}

// Logout revokes a still-valid token until it would have expired
func (s *AuthService) Logout(ctx context.Context, token string) error {
	expiresAt, err := s.tokens.ExpiresAt(token)
	if err != nil {
		return err
	}
	if err := s.blacklist.Revoke(ctx, token, expiresAt); err != nil {
		return apperr.Wrap(err, "Logout")
	}
	logrus.WithField("expires_at", expiresAt.Format(time.RFC3339)).Info("Token revoked")
	return nil
}

// ResolveToken verifies a bearer token, rejects revoked ones and loads the
// subject's current user row.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (domain.User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, err
	}
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return domain.User{}, apperr.Wrap(err, "IsRevoked")
	}
	if revoked {
		return domain.User{}, apperr.Unauthorized("token has been revoked")
	}

	var user domain.User
	err = s.db.WithContext(ctx).Preload("Profile").Where("username = ?", subject).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, apperr.Unauthorized("unknown token subject")
	}
	if err != nil {
		return domain.User{}, apperr.Wrap(err, "ResolveToken")
	}
	return user, nil
}
