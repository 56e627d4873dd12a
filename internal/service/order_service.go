package service

import (
	"context"

	"account_service/internal/apperr"
	"account_service/internal/domain"

	"gorm.io/gorm"
)

// OrderService manages the orders a user owns
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

func (s *OrderService) ListForOwner(ctx context.Context, ownerID uint) ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(err, "ListOrders")
	}
	return orders, nil
}

func (s *OrderService) Create(ctx context.Context, ownerID uint, name string) (domain.Order, error) {
	order := domain.Order{OwnerID: ownerID, Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return domain.Order{}, translate(err, "order", "CreateOrder")
	}
	return order, nil
}

// Delete removes an order only when it belongs to ownerID
func (s *OrderService) Delete(ctx context.Context, ownerID, orderID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", orderID, ownerID).Delete(&domain.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("order")
		}
		return nil
	})
	return translate(err, "order", "DeleteOrder")
}

func (s *OrderService) List(ctx context.Context, p Page) (PageResult[domain.Order], error) {
	return listPage[domain.Order](ctx, s.db, p, "ListAllOrders")
}
