package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64     `json:"unit_price" validate:"gte=0"`
	Discount  int64     `json:"discount"`
}

// PaymentSplit allocates a split payment across the shift buckets.
type PaymentSplit struct {
	Cash   int64 `json:"cash"`
	Card   int64 `json:"card"`
	Mobile int64 `json:"mobile"`
}

type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	SaleType       model.SaleType    `json:"sale_type"`
	TaxAmount      int64             `json:"tax_amount"`
	DiscountAmount int64             `json:"discount_amount"`
	// Overrides subtotal + tax - discount when set.
	FinalAmount   *int64        `json:"total_amount"`
	ReceiptNumber string        `json:"receipt_number"`
	PaymentMethod string        `json:"payment_method"`
	Split         *PaymentSplit `json:"split_data"`
	CustomerName  string        `json:"customer_name"`
}

type CompleteHeldOrderRequest struct {
	SaleType       model.SaleType `json:"sale_type"`
	TaxAmount      int64          `json:"tax_amount"`
	DiscountAmount int64          `json:"discount_amount"`
	FinalAmount    *int64         `json:"total_amount"`
	ReceiptNumber  string         `json:"receipt_number"`
	PaymentMethod  string         `json:"payment_method"`
	Split          *PaymentSplit  `json:"split_data"`
}

type SaleService interface {
	// Create turns a cart into a persisted sale with all stock and shift
	// side effects, atomically: either everything below commits or
	// nothing does.
	Create(req *CreateSaleRequest, cashierID string) (*model.Sale, error)
	// Hold parks the cart without creating a sale or touching stock.
	Hold(req *CreateSaleRequest, cashierID string) (*model.Cart, error)
	HeldOrders(cashierID string) ([]model.Cart, error)
	CompleteHeldOrder(cartID uuid.UUID, req *CompleteHeldOrderRequest, cashierID string) (*model.Sale, error)
	VoidHeldOrder(cartID uuid.UUID, reason, cashierID string) error
	// Void reverses a completed sale: restores product and batch
	// quantities, appends compensating movements, and subtracts the
	// amount from the shift totals. The sale row is kept for audit.
	Void(saleID uuid.UUID, reason, actorID string) (*model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
	GetSales(startDate, endDate time.Time) ([]model.Sale, error)
}

type saleService struct {
	db              TxRunner
	productRepo     repository.ProductRepository
	batchRepo       repository.BatchRepository
	movementRepo    repository.StockMovementRepository
	historyRepo     repository.SalesHistoryRepository
	saleRepo        repository.SaleRepository
	cartRepo        repository.CartRepository
	paymentRepo     repository.PaymentRepository
	shiftRepo       repository.ShiftRepository
	wsHub           *ws.Hub
	wholesaleMinQty int
}

func NewSaleService(
	db TxRunner,
	pRepo repository.ProductRepository,
	bRepo repository.BatchRepository,
	mRepo repository.StockMovementRepository,
	hRepo repository.SalesHistoryRepository,
	sRepo repository.SaleRepository,
	cRepo repository.CartRepository,
	payRepo repository.PaymentRepository,
	shiftRepo repository.ShiftRepository,
	hub *ws.Hub,
	wholesaleMinQty int,
) SaleService {
	if wholesaleMinQty < 1 {
		wholesaleMinQty = 1
	}
	return &saleService{
		db:              db,
		productRepo:     pRepo,
		batchRepo:       bRepo,
		movementRepo:    mRepo,
		historyRepo:     hRepo,
		saleRepo:        sRepo,
		cartRepo:        cRepo,
		paymentRepo:     payRepo,
		shiftRepo:       shiftRepo,
		wsHub:           hub,
		wholesaleMinQty: wholesaleMinQty,
	}
}

// checkoutParams carries the money/payment context shared by Create and
// CompleteHeldOrder.
type checkoutParams struct {
	saleType       model.SaleType
	taxAmount      int64
	discountAmount int64
	finalAmount    *int64
	receiptNumber  string
	paymentMethod  string
	split          *PaymentSplit
	customerName   string
}

func (s *saleService) Create(req *CreateSaleRequest, cashierID string) (*model.Sale, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var sale *model.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		shift, err := s.shiftRepo.LockOpenByCashier(tx, cashierID)
		if err != nil {
			return ErrNoActiveShift
		}

		cart := s.buildCart(req, cashierID, model.CartClosed)
		if err := s.cartRepo.Create(tx, cart); err != nil {
			return err
		}

		sale, err = s.checkout(tx, cart, shift, checkoutParams{
			saleType:       req.SaleType,
			taxAmount:      req.TaxAmount,
			discountAmount: req.DiscountAmount,
			finalAmount:    req.FinalAmount,
			receiptNumber:  req.ReceiptNumber,
			paymentMethod:  req.PaymentMethod,
			split:          req.Split,
			customerName:   req.CustomerName,
		}, cashierID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.broadcastSale(sale, "sale_completed", cashierID)
	return sale, nil
}

func (s *saleService) Hold(req *CreateSaleRequest, cashierID string) (*model.Cart, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var cart *model.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.shiftRepo.LockOpenByCashier(tx, cashierID); err != nil {
			return ErrNoActiveShift
		}
		cart = s.buildCart(req, cashierID, model.CartHeld)
		return s.cartRepo.Create(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *saleService) HeldOrders(cashierID string) ([]model.Cart, error) {
	if _, err := s.shiftRepo.FindOpenByCashier(cashierID); err != nil {
		return nil, ErrNoActiveShift
	}
	return s.cartRepo.FindHeldByCashier(cashierID)
}

func (s *saleService) CompleteHeldOrder(cartID uuid.UUID, req *CompleteHeldOrderRequest, cashierID string) (*model.Sale, error) {
	var sale *model.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		shift, err := s.shiftRepo.LockOpenByCashier(tx, cashierID)
		if err != nil {
			return ErrNoActiveShift
		}

		cart, err := s.cartRepo.LockHeldByID(tx, cartID)
		if err != nil {
			return ErrCartNotFound
		}
		if cart.CashierID == nil || *cart.CashierID != cashierID {
			return ErrCartNotOwned
		}

		sale, err = s.checkout(tx, cart, shift, checkoutParams{
			saleType:       req.SaleType,
			taxAmount:      req.TaxAmount,
			discountAmount: req.DiscountAmount,
			finalAmount:    req.FinalAmount,
			receiptNumber:  req.ReceiptNumber,
			paymentMethod:  req.PaymentMethod,
			split:          req.Split,
			customerName:   cart.CustomerName,
		}, cashierID)
		if err != nil {
			return err
		}

		cart.Status = model.CartClosed
		cart.UpdatedBy = cashierID
		return s.cartRepo.Save(tx, cart)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastSale(sale, "sale_completed", cashierID)
	return sale, nil
}

func (s *saleService) VoidHeldOrder(cartID uuid.UUID, reason, cashierID string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrMissingVoidReason
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.LockHeldByID(tx, cartID)
		if err != nil {
			return ErrCartNotFound
		}
		if cart.CashierID == nil || *cart.CashierID != cashierID {
			return ErrCartNotOwned
		}
		cart.Status = model.CartVoided
		cart.VoidReason = reason
		cart.UpdatedBy = cashierID
		return s.cartRepo.Save(tx, cart)
	})
}

// checkout runs the whole engine inside the caller's transaction:
// validate lines, create the sale, bump shift totals, deplete stock
// batch by batch, and append ledger and history rows.
func (s *saleService) checkout(tx *gorm.DB, cart *model.Cart, shift *model.Shift, p checkoutParams, cashierID string) (*model.Sale, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if p.saleType == "" {
		p.saleType = model.SaleRetail
	}

	// Validate availability and wholesale policy per line before any write.
	products := make(map[uuid.UUID]*model.Product, len(cart.Items))
	totalQuantity := 0
	for _, item := range cart.Items {
		product, err := s.productRepo.LockByID(tx, item.ProductID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		products[item.ProductID] = product
		totalQuantity += item.Quantity

		if product.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
		}

		if p.saleType == model.SaleWholesale && product.HasWholesalePrice() {
			minQty := s.wholesaleMinQty
			if product.WholesaleMinQty > minQty {
				minQty = product.WholesaleMinQty
			}
			if item.Quantity < minQty {
				return nil, fmt.Errorf("%w: product %q requires minimum %d units, requested %d",
					ErrWholesaleMinimumNotMet, product.Name, minQty, item.Quantity)
			}
		}
	}
	if p.saleType == model.SaleWholesale && totalQuantity < s.wholesaleMinQty {
		return nil, fmt.Errorf("%w: orders require minimum %d items total, current total %d",
			ErrWholesaleMinimumNotMet, s.wholesaleMinQty, totalQuantity)
	}

	var subtotal int64
	for _, item := range cart.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	finalAmount := subtotal + p.taxAmount - p.discountAmount
	if p.finalAmount != nil {
		finalAmount = *p.finalAmount
	}

	now := time.Now()
	receiptNumber := p.receiptNumber
	if receiptNumber == "" {
		receiptNumber = "POS-" + now.Format("20060102150405")
	}

	sale := &model.Sale{
		CartID:         cart.ID,
		ShiftID:        &shift.ID,
		CustomerName:   p.customerName,
		SaleType:       p.saleType,
		TotalAmount:    subtotal,
		TaxAmount:      p.taxAmount,
		DiscountAmount: p.discountAmount,
		FinalAmount:    finalAmount,
		ReceiptNumber:  receiptNumber,
		SaleDate:       now,
	}
	sale.CreatedBy = cashierID
	sale.UpdatedBy = cashierID
	for _, item := range cart.Items {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}
	if err := s.saleRepo.Create(tx, sale); err != nil {
		return nil, err
	}

	cash, card, mobile := allocatePayment(p.paymentMethod, p.split, finalAmount)
	if err := s.shiftRepo.AddSales(tx, shift.ID, cash, card, mobile, finalAmount); err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		if err := s.deplete(tx, products[item.ProductID], item, sale, cashierID); err != nil {
			return nil, err
		}
	}

	return sale, nil
}

// deplete takes one cart line out of stock, FIFO-by-expiry across the
// product's batches, falling back to the aggregate quantity only for
// products that have never been batch tracked.
func (s *saleService) deplete(tx *gorm.DB, product *model.Product, item model.CartItem, sale *model.Sale, cashierID string) error {
	today := startOfDay(time.Now())

	batches, err := s.batchRepo.LockEligible(tx, product.ID, today)
	if err != nil {
		return err
	}

	plan, remainder := PlanDepletion(batches, item.Quantity, today)
	if remainder > 0 {
		if len(batches) == 0 {
			totalBatches, err := s.batchRepo.CountByProduct(tx, product.ID)
			if err != nil {
				return err
			}
			if totalBatches == 0 && product.Stock >= item.Quantity {
				return s.depleteUntracked(tx, product, item, sale, cashierID)
			}
		}
		return &InsufficientStockError{
			ProductName: product.Name,
			Available:   item.Quantity - remainder,
			Requested:   item.Quantity,
		}
	}

	newStock := product.Stock
	for _, take := range plan {
		take.Batch.Quantity -= take.Quantity
		take.Batch.UpdatedBy = cashierID
		if err := s.batchRepo.Save(tx, take.Batch); err != nil {
			return err
		}
		newStock -= take.Quantity

		movement := &model.StockMovement{
			ProductID:       product.ID,
			Type:            model.MovementOut,
			Quantity:        -take.Quantity,
			Cause:           model.CauseSale,
			ReferenceID:     &sale.ID,
			Note:            fmt.Sprintf("Sale %s - Batch %s", sale.ReceiptNumber, take.Batch.BatchNumber),
			CreatedByUserID: &cashierID,
		}
		movement.CreatedBy = cashierID
		movement.UpdatedBy = cashierID
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}

		history := &model.SalesHistory{
			ProductID:     product.ID,
			BatchID:       &take.Batch.ID,
			Quantity:      take.Quantity,
			UnitPrice:     item.UnitPrice,
			CostPrice:     take.Batch.CostPrice,
			TotalPrice:    item.UnitPrice * int64(take.Quantity),
			ReceiptNumber: sale.ReceiptNumber,
			SaleDate:      sale.SaleDate,
		}
		history.CreatedBy = cashierID
		history.UpdatedBy = cashierID
		if err := s.historyRepo.Create(tx, history); err != nil {
			return err
		}
	}

	if err := s.productRepo.UpdateStock(tx, product.ID, newStock, cashierID); err != nil {
		return err
	}
	product.Stock = newStock
	return nil
}

// depleteUntracked is the legacy path for products without any batches:
// the aggregate quantity is deducted directly and the history row
// carries no batch and no cost basis.
func (s *saleService) depleteUntracked(tx *gorm.DB, product *model.Product, item model.CartItem, sale *model.Sale, cashierID string) error {
	newStock := product.Stock - item.Quantity
	if err := s.productRepo.UpdateStock(tx, product.ID, newStock, cashierID); err != nil {
		return err
	}
	product.Stock = newStock

	movement := &model.StockMovement{
		ProductID:       product.ID,
		Type:            model.MovementOut,
		Quantity:        -item.Quantity,
		Cause:           model.CauseSale,
		ReferenceID:     &sale.ID,
		Note:            fmt.Sprintf("Sale %s - No batch tracking", sale.ReceiptNumber),
		CreatedByUserID: &cashierID,
	}
	movement.CreatedBy = cashierID
	movement.UpdatedBy = cashierID
	if err := s.movementRepo.Create(tx, movement); err != nil {
		return err
	}

	history := &model.SalesHistory{
		ProductID:     product.ID,
		BatchID:       nil,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice,
		CostPrice:     nil,
		TotalPrice:    item.UnitPrice * int64(item.Quantity),
		ReceiptNumber: sale.ReceiptNumber,
		SaleDate:      sale.SaleDate,
	}
	history.CreatedBy = cashierID
	history.UpdatedBy = cashierID
	return s.historyRepo.Create(tx, history)
}

func (s *saleService) Void(saleID uuid.UUID, reason, actorID string) (*model.Sale, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingVoidReason
	}

	var sale *model.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		sale, err = s.saleRepo.LockByID(tx, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if sale.Voided {
			return ErrAlreadyVoided
		}

		now := time.Now()
		sale.Voided = true
		sale.VoidReason = reason
		sale.VoidedAt = &now
		sale.VoidedByUserID = &actorID
		sale.UpdatedBy = actorID
		if err := s.saleRepo.Save(tx, sale); err != nil {
			return err
		}

		// Restore aggregate stock per item.
		for _, item := range sale.Items {
			product, err := s.productRepo.LockByID(tx, item.ProductID)
			if err != nil {
				return ErrProductNotFound
			}
			if err := s.productRepo.UpdateStock(tx, product.ID, product.Stock+item.Quantity, actorID); err != nil {
				return err
			}

			movement := &model.StockMovement{
				ProductID:       item.ProductID,
				Type:            model.MovementIn,
				Quantity:        item.Quantity,
				Cause:           model.CauseSaleVoid,
				ReferenceID:     &sale.ID,
				Note:            fmt.Sprintf("Sale void %s - %s", sale.ReceiptNumber, reason),
				CreatedByUserID: &actorID,
			}
			movement.CreatedBy = actorID
			movement.UpdatedBy = actorID
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}
		}

		// Restore batch quantities from the history rows that carry one.
		histories, err := s.historyRepo.FindByReceipt(tx, sale.ReceiptNumber)
		if err != nil {
			return err
		}
		for _, history := range histories {
			if history.BatchID == nil {
				continue
			}
			batch, err := s.batchRepo.LockByID(tx, *history.BatchID)
			if err != nil {
				return ErrBatchNotFound
			}
			batch.Quantity += history.Quantity
			batch.UpdatedBy = actorID
			if err := s.batchRepo.Save(tx, batch); err != nil {
				return err
			}
		}

		// Reverse shift totals per the recorded payments; a sale without
		// payment rows counts as cash.
		if sale.ShiftID != nil {
			payments, err := s.paymentRepo.FindBySale(tx, sale.ID)
			if err != nil {
				return err
			}
			cash, card, mobile := voidAllocation(payments, sale.FinalAmount)
			if err := s.shiftRepo.AddSales(tx, *sale.ShiftID, -cash, -card, -mobile, -sale.FinalAmount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastSale(sale, "sale_voided", actorID)
	return sale, nil
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) GetSales(startDate, endDate time.Time) ([]model.Sale, error) {
	return s.saleRepo.FindRange(startDate, endDate)
}

func (s *saleService) buildCart(req *CreateSaleRequest, cashierID string, status model.CartStatus) *model.Cart {
	cart := &model.Cart{
		CashierID:    &cashierID,
		CustomerName: req.CustomerName,
		Status:       status,
	}
	cart.CreatedBy = cashierID
	cart.UpdatedBy = cashierID
	for _, item := range req.Items {
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}
	return cart
}

// allocatePayment maps a payment method (or split map) onto the shift
// buckets. Unknown methods land in the cash bucket, matching the
// original terminal behavior.
func allocatePayment(method string, split *PaymentSplit, amount int64) (cash, card, mobile int64) {
	switch strings.ToLower(method) {
	case "split":
		if split != nil {
			return split.Cash, split.Card, split.Mobile
		}
		return amount, 0, 0
	case "card":
		return 0, amount, 0
	case "mobile", "mpesa":
		return 0, 0, amount
	default:
		return amount, 0, 0
	}
}

// voidAllocation reverses buckets from the persisted payment rows.
func voidAllocation(payments []model.Payment, finalAmount int64) (cash, card, mobile int64) {
	if len(payments) == 0 {
		return finalAmount, 0, 0
	}
	for _, payment := range payments {
		switch payment.Method {
		case model.PayCard:
			card += payment.Amount
		case model.PayMobile:
			mobile += payment.Amount
		default:
			cash += payment.Amount
		}
	}
	return cash, card, mobile
}

func (s *saleService) broadcastSale(sale *model.Sale, action, userID string) {
	if s.wsHub == nil || sale == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "sale_update",
			"action": action,
			"sale": map[string]interface{}{
				"id":             sale.ID,
				"receipt_number": sale.ReceiptNumber,
				"final_amount":   sale.FinalAmount,
				"voided":         sale.Voided,
			},
			"user_id": userID,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
