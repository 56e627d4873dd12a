package service

import (
	"context"

	"account_service/internal/apperr"
	"account_service/internal/domain"
	"account_service/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateUserInput holds a new account and its initial profile
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Profile  ProfileInput
}

// UpdateUserInput changes only the fields that are set
type UpdateUserInput struct {
	Email    *string
	Password *string
	Role     *string
}

// UserService implements account CRUD
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create stores the user and its profile in one transaction.
// A duplicate username or email yields a Conflict and writes nothing.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	username := NormalizeUsername(in.Username)
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, apperr.Wrap(err, "HashPassword")
	}
	user := domain.User{
		Username:     username,
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("user")
		}
		if err := tx.Omit("Profile").Create(&user).Error; err != nil {
			return err
		}
		profile := domain.Profile{UserID: user.ID}
		in.Profile.apply(&profile)
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return domain.User{}, translate(err, "user", "CreateUser")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User created")
	return user, nil
}

// Get loads a user and its profile by username
func (s *UserService) Get(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Preload("Profile").
		Where("username = ?", NormalizeUsername(username)).
		First(&user).Error
	if err != nil {
		return domain.User{}, translate(err, "user", "GetUser")
	}
	return user, nil
}

// List returns a page of users ordered by id
func (s *UserService) List(ctx context.Context, p Page) (PageResult[domain.User], error) {
	return listPage[domain.User](ctx, s.db, p, "ListUsers", "Profile")
}

// ListWithRelations is List with addresses and orders loaded for the admin panel
func (s *UserService) ListWithRelations(ctx context.Context, p Page) (PageResult[domain.User], error) {
	return listPage[domain.User](ctx, s.db, p, "ListUsersWithRelations", "Profile", "Addresses", "Orders")
}

// Update applies the set fields of in to the user named username
func (s *UserService) Update(ctx context.Context, username string, in UpdateUserInput) (domain.User, error) {
	updates := map[string]any{}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return domain.User{}, apperr.Wrap(err, "HashPassword")
		}
		updates["password_hash"] = hash
	}
	if in.Role != nil {
		if *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
			return domain.User{}, apperr.InvalidArgument("role must be user or admin")
		}
		updates["role"] = *in.Role
	}

	var user domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", NormalizeUsername(username)).First(&user).Error; err != nil {
			return err
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			var count int64
			if err := tx.Model(&domain.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict("email")
			}
			updates["email"] = email
		}
		if len(updates) == 0 {
			return tx.Preload("Profile").First(&user, user.ID).Error
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("Profile").First(&user, user.ID).Error
	})
	if err != nil {
		return domain.User{}, translate(err, "user", "UpdateUser")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User updated")
	return user, nil
}

// Delete removes the user together with its profile, addresses and orders
func (s *UserService) Delete(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Profile").Where("username = ?", NormalizeUsername(username)).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ?", user.ID).Delete(&domain.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&domain.Address{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&domain.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, user.ID).Error
	})
	if err != nil {
		return domain.User{}, translate(err, "user", "DeleteUser")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User deleted")
	return user, nil
}
