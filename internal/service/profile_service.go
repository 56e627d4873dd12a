package service

import (
	"context"
	"errors"

	"account_service/internal/domain"

	"gorm.io/gorm"
)

// ProfileInput changes only the fields that are set
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func (in ProfileInput) apply(p *domain.Profile) {
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
}

// ProfileService manages the one-to-one user profile
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (domain.Profile, error) {
	var profile domain.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return domain.Profile{}, translate(err, "profile", "GetProfile")
	}
	return profile, nil
}

// Upsert updates the user's profile, creating it when the row is missing
func (s *ProfileService) Upsert(ctx context.Context, userID uint, in ProfileInput) (domain.Profile, error) {
	var profile domain.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = domain.Profile{UserID: userID}
			in.apply(&profile)
			return tx.Create(&profile).Error
		}
		if err != nil {
			return err
		}
		in.apply(&profile)
		return tx.Model(&profile).Select("FirstName", "LastName", "Phone").Updates(&profile).Error
	})
	if err != nil {
		return domain.Profile{}, translate(err, "profile", "UpsertProfile")
	}
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context, p Page) (PageResult[domain.Profile], error) {
	return listPage[domain.Profile](ctx, s.db, p, "ListProfiles")
}
