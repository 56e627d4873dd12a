// Package service implements account operations on top of GORM.
// Every mutating call runs in a single transaction: commit on success,
// rollback on any error.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"account_service/internal/apperr"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing. Zero values fall back to defaults.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResult is one window of a listing plus totals
type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// NormalizeUsername is the canonical stored form of a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// usernamePattern matches a normalized username usable as a URL path segment
var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,15}$`)

// validateUsername checks the normalized form, which is what gets stored
func validateUsername(normalized string) error {
	if !usernamePattern.MatchString(normalized) {
		return apperr.InvalidArgument("username must be 3-15 letters, digits, '.', '_' or '-'")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// translate maps GORM errors to the application taxonomy. Errors that already
// belong to the taxonomy pass through untouched.
func translate(err error, resource, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrUnauthorized),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrInvalidArgument),
		errors.Is(err, apperr.ErrInternal):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(resource)
	default:
		return apperr.Wrap(err, op)
	}
}

// listPage loads one page of model rows ordered by id
func listPage[T any](ctx context.Context, db *gorm.DB, p Page, op string, preload ...string) (PageResult[T], error) {
	p = p.normalize()
	var total int64
	var model T
	if err := db.WithContext(ctx).Model(&model).Count(&total).Error; err != nil {
		return PageResult[T]{}, apperr.Wrap(err, op)
	}
	query := db.WithContext(ctx).Order("id").Offset(p.offset()).Limit(p.PageSize)
	for _, rel := range preload {
		query = query.Preload(rel)
	}
	items := make([]T, 0, p.PageSize)
	if err := query.Find(&items).Error; err != nil {
		return PageResult[T]{}, apperr.Wrap(err, op)
	}
	return PageResult[T]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: int((total + int64(p.PageSize) - 1) / int64(p.PageSize)),
	}, nil
}
