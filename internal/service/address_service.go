package service

import (
	"context"

	"account_service/internal/apperr"
	"account_service/internal/domain"

	"gorm.io/gorm"
)

type AddressInput struct {
	AddressType string
	Street      string
	City        string
	Status      string
	Country     string
	PostIndex   string
}

// AddressService manages the addresses a user owns
type AddressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

func (s *AddressService) ListForUser(ctx context.Context, userID uint) ([]domain.Address, error) {
	addresses := []domain.Address{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&addresses).Error; err != nil {
		return nil, apperr.Wrap(err, "ListAddresses")
	}
	return addresses, nil
}

func (s *AddressService) Create(ctx context.Context, userID uint, in AddressInput) (domain.Address, error) {
	address := domain.Address{
		UserID:      userID,
		AddressType: in.AddressType,
		Street:      in.Street,
		City:        in.City,
		Status:      in.Status,
		Country:     in.Country,
		PostIndex:   in.PostIndex,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&address).Error
	})
	if err != nil {
		return domain.Address{}, translate(err, "address", "CreateAddress")
	}
	return address, nil
}

// Delete removes an address only when it belongs to userID
func (s *AddressService) Delete(ctx context.Context, userID, addressID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", addressID, userID).Delete(&domain.Address{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("address")
		}
		return nil
	})
	return translate(err, "address", "DeleteAddress")
}

func (s *AddressService) List(ctx context.Context, p Page) (PageResult[domain.Address], error) {
	return listPage[domain.Address](ctx, s.db, p, "ListAllAddresses")
}
