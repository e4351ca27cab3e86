package service

import (
	"errors"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"gorm.io/gorm"
)

// ShiftReconciliation is returned on close so the terminal can show the
// drawer count against the recorded totals.
type ShiftReconciliation struct {
	OpeningBalance      int64  `json:"opening_balance"`
	CashSales           int64  `json:"cash_sales"`
	CardSales           int64  `json:"card_sales"`
	MobileSales         int64  `json:"mobile_sales"`
	TotalSales          int64  `json:"total_sales"`
	ExpectedClosingCash int64  `json:"expected_closing_cash"`
	ActualClosingCash   int64  `json:"actual_closing_cash"`
	Discrepancy         int64  `json:"discrepancy"`
	DiscrepancyType     string `json:"discrepancy_type"` // overage, shortage, balanced
}

type ShiftService interface {
	// Open starts a working session for the cashier. A second concurrent
	// open shift is rejected.
	Open(cashierID string, openingBalance int64) (*model.Shift, error)
	// Close reconciles the drawer and closes the cashier's open shift.
	// Blocked while the cashier still has held orders.
	Close(cashierID string, actualClosingCash int64) (*model.Shift, *ShiftReconciliation, error)
	Current(cashierID string) (*model.Shift, error)
	GetShifts(startDate, endDate time.Time) ([]model.ShiftResponse, error)
}

type shiftService struct {
	db        TxRunner
	shiftRepo repository.ShiftRepository
	cartRepo  repository.CartRepository
}

func NewShiftService(db TxRunner, shiftRepo repository.ShiftRepository, cartRepo repository.CartRepository) ShiftService {
	return &shiftService{
		db:        db,
		shiftRepo: shiftRepo,
		cartRepo:  cartRepo,
	}
}

func (s *shiftService) Open(cashierID string, openingBalance int64) (*model.Shift, error) {
	if _, err := s.shiftRepo.FindOpenByCashier(cashierID); err == nil {
		return nil, ErrShiftAlreadyOpen
	}

	shift := &model.Shift{
		CashierID:      cashierID,
		StartTime:      time.Now(),
		OpeningBalance: openingBalance,
		Status:         model.ShiftOpen,
	}
	shift.CreatedBy = cashierID
	shift.UpdatedBy = cashierID

	if err := s.shiftRepo.Create(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) Close(cashierID string, actualClosingCash int64) (*model.Shift, *ShiftReconciliation, error) {
	var shift *model.Shift
	var recon *ShiftReconciliation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		shift, err = s.shiftRepo.LockOpenByCashier(tx, cashierID)
		if err != nil {
			return ErrNoActiveShift
		}

		heldCount, err := s.cartRepo.CountHeldByCashier(tx, cashierID)
		if err != nil {
			return err
		}
		if heldCount > 0 {
			return ErrHeldOrdersPending
		}

		expected := shift.ExpectedClosingCash()
		discrepancy := actualClosingCash - expected

		now := time.Now()
		shift.EndTime = &now
		shift.ClosingBalance = &actualClosingCash
		shift.Discrepancy = &discrepancy
		shift.Status = model.ShiftClosed
		shift.UpdatedBy = cashierID
		if err := s.shiftRepo.Save(tx, shift); err != nil {
			return err
		}

		discrepancyType := "balanced"
		if discrepancy > 0 {
			discrepancyType = "overage"
		} else if discrepancy < 0 {
			discrepancyType = "shortage"
		}
		recon = &ShiftReconciliation{
			OpeningBalance:      shift.OpeningBalance,
			CashSales:           shift.CashSales,
			CardSales:           shift.CardSales,
			MobileSales:         shift.MobileSales,
			TotalSales:          shift.TotalSales,
			ExpectedClosingCash: expected,
			ActualClosingCash:   actualClosingCash,
			Discrepancy:         discrepancy,
			DiscrepancyType:     discrepancyType,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return shift, recon, nil
}

func (s *shiftService) Current(cashierID string) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindOpenByCashier(cashierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveShift
		}
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) GetShifts(startDate, endDate time.Time) ([]model.ShiftResponse, error) {
	shifts, err := s.shiftRepo.FindRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	responses := make([]model.ShiftResponse, len(shifts))
	for i := range shifts {
		responses[i] = shifts[i].ToResponse()
	}
	return responses, nil
}
