package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchTake is one step of a depletion plan: take Quantity units from
// the batch at index Index of the planned slice.
type BatchTake struct {
	Batch    *model.Batch
	Quantity int
}

// PlanDepletion greedily builds a depletion plan over the given batches:
// soonest expiry first, batches without an expiry date last, older
// purchase date breaking ties. Ineligible batches are skipped even when
// the caller's query should already have filtered them. Returns the plan
// and the unfilled remainder.
func PlanDepletion(batches []model.Batch, quantity int, today time.Time) ([]BatchTake, int) {
	eligible := make([]*model.Batch, 0, len(batches))
	for i := range batches {
		if batches[i].EligibleAt(today) {
			eligible = append(eligible, &batches[i])
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.PurchaseDate.Before(b.PurchaseDate)
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.PurchaseDate.Before(b.PurchaseDate)
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	})

	var plan []BatchTake
	remaining := quantity
	for _, batch := range eligible {
		if remaining <= 0 {
			break
		}
		take := batch.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, BatchTake{Batch: batch, Quantity: take})
		remaining -= take
	}
	return plan, remaining
}

type CreateBatchRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"uuid_required"`
	BatchNumber  string    `json:"batch_number" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	CostPrice    *int64    `json:"cost_price"`
	ExpiryDate   string    `json:"expiry_date"`   // YYYY-MM-DD, optional
	PurchaseDate string    `json:"purchase_date"` // YYYY-MM-DD, defaults to today
	SupplierName string    `json:"supplier_name"`
}

type BatchService interface {
	CreateBatch(req *CreateBatchRequest, userID string) (*model.Batch, error)
	GetBatchesByProduct(productID uuid.UUID) ([]model.Batch, error)
	// Receive marks an ordered batch as received and adds its quantity to
	// the product's aggregate stock. actualQuantity overrides the ordered
	// quantity when the delivery differs.
	Receive(batchID uuid.UUID, actualQuantity *int, userID string) (*model.Batch, error)
	// ExpireBatches zeroes out every received batch past its expiry date
	// and removes the remainder from aggregate stock. Returns how many
	// batches were expired.
	ExpireBatches(userID string) (int, error)
}

type batchService struct {
	db           TxRunner
	batchRepo    repository.BatchRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func NewBatchService(db TxRunner, bRepo repository.BatchRepository, pRepo repository.ProductRepository, mRepo repository.StockMovementRepository) BatchService {
	return &batchService{
		db:           db,
		batchRepo:    bRepo,
		productRepo:  pRepo,
		movementRepo: mRepo,
	}
}

func (s *batchService) CreateBatch(req *CreateBatchRequest, userID string) (*model.Batch, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	purchaseDate := startOfDay(time.Now())
	if req.PurchaseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, errors.New("invalid purchase_date, use YYYY-MM-DD")
		}
		purchaseDate = parsed
	}

	var expiryDate *time.Time
	if req.ExpiryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return nil, errors.New("invalid expiry_date, use YYYY-MM-DD")
		}
		expiryDate = &parsed
	}

	if _, err := s.productRepo.FindByID(req.ProductID); err != nil {
		return nil, ErrProductNotFound
	}

	batch := &model.Batch{
		ProductID:    req.ProductID,
		BatchNumber:  req.BatchNumber,
		Quantity:     req.Quantity,
		CostPrice:    req.CostPrice,
		ExpiryDate:   expiryDate,
		PurchaseDate: purchaseDate,
		Status:       model.BatchOrdered,
		SupplierName: req.SupplierName,
	}
	batch.CreatedBy = userID
	batch.UpdatedBy = userID

	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *batchService) GetBatchesByProduct(productID uuid.UUID) ([]model.Batch, error) {
	return s.batchRepo.FindByProduct(productID)
}

func (s *batchService) Receive(batchID uuid.UUID, actualQuantity *int, userID string) (*model.Batch, error) {
	var received *model.Batch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		batch, err := s.batchRepo.LockByID(tx, batchID)
		if err != nil {
			return ErrBatchNotFound
		}
		if batch.Status == model.BatchReceived {
			return ErrBatchAlreadyReceived
		}

		quantityToAdd := batch.Quantity
		if actualQuantity != nil {
			quantityToAdd = *actualQuantity
			batch.Quantity = *actualQuantity
		}

		today := startOfDay(time.Now())
		batch.Status = model.BatchReceived
		if batch.ReceivedDate == nil {
			batch.ReceivedDate = &today
		}
		batch.UpdatedBy = userID
		if err := s.batchRepo.Save(tx, batch); err != nil {
			return err
		}

		product, err := s.productRepo.LockByID(tx, batch.ProductID)
		if err != nil {
			return ErrProductNotFound
		}
		if err := s.productRepo.UpdateStock(tx, product.ID, product.Stock+quantityToAdd, userID); err != nil {
			return err
		}

		movement := &model.StockMovement{
			ProductID:       batch.ProductID,
			Type:            model.MovementIn,
			Quantity:        quantityToAdd,
			Cause:           model.CauseBatchReceived,
			ReferenceID:     &batch.ID,
			Note:            fmt.Sprintf("Batch %s received", batch.BatchNumber),
			CreatedByUserID: &userID,
		}
		movement.CreatedBy = userID
		movement.UpdatedBy = userID
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}

		received = batch
		return nil
	})

	if err != nil {
		return nil, err
	}
	return received, nil
}

func (s *batchService) ExpireBatches(userID string) (int, error) {
	expired := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		today := startOfDay(time.Now())
		batches, err := s.batchRepo.LockExpiredReceived(tx, today)
		if err != nil {
			return err
		}

		for i := range batches {
			batch := &batches[i]
			remainder := batch.Quantity

			batch.Status = model.BatchExpired
			batch.Quantity = 0
			batch.UpdatedBy = userID
			if err := s.batchRepo.Save(tx, batch); err != nil {
				return err
			}
			expired++

			if remainder <= 0 {
				continue
			}

			product, err := s.productRepo.LockByID(tx, batch.ProductID)
			if err != nil {
				return err
			}
			newStock := product.Stock - remainder
			if newStock < 0 {
				newStock = 0
			}
			if err := s.productRepo.UpdateStock(tx, product.ID, newStock, userID); err != nil {
				return err
			}

			movement := &model.StockMovement{
				ProductID:       batch.ProductID,
				Type:            model.MovementAdjustment,
				Quantity:        -remainder,
				Cause:           model.CauseBatchExpired,
				ReferenceID:     &batch.ID,
				Note:            fmt.Sprintf("Batch %s expired", batch.BatchNumber),
				CreatedByUserID: &userID,
			}
			movement.CreatedBy = userID
			movement.UpdatedBy = userID
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return expired, nil
}

// startOfDay truncates to the calendar date for expiry comparisons.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
