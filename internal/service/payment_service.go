package service

import (
	"errors"
	"fmt"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordPaymentRequest struct {
	SaleID    uuid.UUID           `json:"sale_id" validate:"uuid_required"`
	Method    model.PaymentMethod `json:"method" validate:"required,oneof=cash card mobile"`
	Amount    int64               `json:"amount" validate:"required,gt=0"`
	Reference string              `json:"reference"`
}

type PaymentService interface {
	// Record persists one payment row against a completed sale. Voided
	// sales are rejected.
	Record(req *RecordPaymentRequest, userID string) (*model.Payment, error)
	GetBySale(saleID uuid.UUID) ([]model.Payment, error)
}

type paymentService struct {
	db          TxRunner
	paymentRepo repository.PaymentRepository
	saleRepo    repository.SaleRepository
}

func NewPaymentService(db TxRunner, payRepo repository.PaymentRepository, saleRepo repository.SaleRepository) PaymentService {
	return &paymentService{
		db:          db,
		paymentRepo: payRepo,
		saleRepo:    saleRepo,
	}
}

func (s *paymentService) Record(req *RecordPaymentRequest, userID string) (*model.Payment, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	sale, err := s.saleRepo.FindByID(req.SaleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if sale.Voided {
		return nil, ErrAlreadyVoided
	}

	payment := &model.Payment{
		SaleID:    sale.ID,
		Method:    req.Method,
		Amount:    req.Amount,
		Reference: req.Reference,
	}
	payment.CreatedBy = userID
	payment.UpdatedBy = userID

	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) GetBySale(saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		payments, err = s.paymentRepo.FindBySale(tx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}
