package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(tx *gorm.DB, cart *model.Cart) error
	FindHeldByCashier(cashierID string) ([]model.Cart, error)
	// LockHeldByID locks a held cart for completion or voiding.
	LockHeldByID(tx *gorm.DB, id uuid.UUID) (*model.Cart, error)
	CountHeldByCashier(tx *gorm.DB, cashierID string) (int64, error)
	Save(tx *gorm.DB, cart *model.Cart) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) Create(tx *gorm.DB, cart *model.Cart) error {
	return tx.Create(cart).Error
}

func (r *cartRepo) FindHeldByCashier(cashierID string) ([]model.Cart, error) {
	var carts []model.Cart
	err := r.db.Preload("Items").Preload("Items.Product").
		Where("cashier_id = ? AND status = ?", cashierID, model.CartHeld).
		Order("created_at DESC").
		Find(&carts).Error
	return carts, err
}

func (r *cartRepo) LockHeldByID(tx *gorm.DB, id uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&cart, "id = ? AND status = ?", id, model.CartHeld).Error
	return &cart, err
}

func (r *cartRepo) CountHeldByCashier(tx *gorm.DB, cashierID string) (int64, error) {
	var count int64
	err := tx.Model(&model.Cart{}).
		Where("cashier_id = ? AND status = ?", cashierID, model.CartHeld).
		Count(&count).Error
	return count, err
}

func (r *cartRepo) Save(tx *gorm.DB, cart *model.Cart) error {
	return tx.Omit(clause.Associations).Save(cart).Error
}
