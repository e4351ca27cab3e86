package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	// Signed delta: positive adds stock, negative removes it.
	Quantity int    `json:"quantity" validate:"required"`
	Note     string `json:"note" validate:"required"`
}

type InventoryService interface {
	CreateProduct(req *model.Product, userID string) error
	UpdateProduct(id uuid.UUID, req *model.Product, userID string) (*model.Product, error)
	// AdjustStock applies a manual correction to the aggregate quantity
	// and appends the matching ledger entry.
	AdjustStock(req *AdjustStockRequest, userID string) (*model.Product, error)
	GetAllProducts() ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetLowStockProducts() ([]model.Product, error)
	GetMovements(limit int) ([]model.StockMovement, error)
	GetMovementsByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type inventoryService struct {
	db           TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	wsHub        *ws.Hub
}

func NewInventoryService(db TxRunner, pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, hub *ws.Hub) InventoryService {
	return &inventoryService{
		db:           db,
		productRepo:  pRepo,
		movementRepo: mRepo,
		wsHub:        hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// Cek duplikasi SKU
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("SKU already exists")
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.broadcastStock("product_created", req, userID)
	return nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, userID string) (*model.Product, error) {
	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return ErrProductNotFound
		}

		existing.Name = req.Name
		existing.SKU = req.SKU
		existing.Barcode = req.Barcode
		existing.Unit = req.Unit
		existing.Description = req.Description
		existing.CostPrice = req.CostPrice
		existing.SellingPrice = req.SellingPrice
		existing.WholesalePrice = req.WholesalePrice
		existing.WholesaleMinQty = req.WholesaleMinQty
		existing.LowStockThreshold = req.LowStockThreshold
		existing.IsActive = req.IsActive
		existing.UpdatedBy = userID
		existing.UpdatedByUserID = &userID

		if err := s.productRepo.Save(tx, existing); err != nil {
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("product_updated", updated, userID)
	return updated, nil
}

func (s *inventoryService) AdjustStock(req *AdjustStockRequest, userID string) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	var adjusted *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByID(tx, req.ProductID)
		if err != nil {
			return ErrProductNotFound
		}

		newStock := product.Stock + req.Quantity
		if newStock < 0 {
			return ErrNegativeStock
		}

		if err := s.productRepo.UpdateStock(tx, product.ID, newStock, userID); err != nil {
			return err
		}
		product.Stock = newStock

		movement := &model.StockMovement{
			ProductID:       product.ID,
			Type:            model.MovementAdjustment,
			Quantity:        req.Quantity,
			Cause:           model.CauseManualAdjustment,
			Note:            req.Note,
			CreatedByUserID: &userID,
		}
		movement.CreatedBy = userID
		movement.UpdatedBy = userID
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}

		adjusted = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("stock_adjusted", adjusted, userID)
	return adjusted, nil
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) GetLowStockProducts() ([]model.Product, error) {
	return s.productRepo.FindLowStock()
}

func (s *inventoryService) GetMovements(limit int) ([]model.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.movementRepo.FindAll(limit)
}

func (s *inventoryService) GetMovementsByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.movementRepo.FindByProduct(productID, limit)
}

func (s *inventoryService) broadcastStock(action string, product *model.Product, userID string) {
	if s.wsHub == nil || product == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"product": map[string]interface{}{
				"id":        product.ID,
				"sku":       product.SKU,
				"name":      product.Name,
				"stock":     product.Stock,
				"low_stock": product.IsLowStock(),
			},
			"user_id": userID,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
