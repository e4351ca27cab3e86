package service

import (
	"errors"
	"testing"
	"time"

	"go-pos-backend/internal/model"
)

func TestCreateSaleDepletesBatchesByExpiry(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	shift := env.openShift(cashier, 5000)

	product := env.addProduct("SKU-1", "Kopi Bubuk", 15)
	soon := datePtr(time.Now().AddDate(0, 0, 3))
	later := datePtr(time.Now().AddDate(0, 1, 0))
	b1 := env.addReceivedBatch(product.ID, "B1", 5, int64Ptr(400), soon, time.Now().AddDate(0, 0, -10))
	b2 := env.addReceivedBatch(product.ID, "B2", 10, int64Ptr(450), later, time.Now().AddDate(0, 0, -5))

	sale, err := svc.Create(&CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: 8, UnitPrice: 1000},
		},
		PaymentMethod: "cash",
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := env.store.batches[b1.ID].Quantity; got != 0 {
		t.Errorf("B1 quantity = %d, want 0", got)
	}
	if got := env.store.batches[b2.ID].Quantity; got != 7 {
		t.Errorf("B2 quantity = %d, want 7", got)
	}
	if got := env.store.products[product.ID].Stock; got != 7 {
		t.Errorf("product stock = %d, want 7", got)
	}

	if len(env.store.histories) != 2 {
		t.Fatalf("history rows = %d, want 2", len(env.store.histories))
	}
	first, second := env.store.histories[0], env.store.histories[1]
	if first.BatchID == nil || *first.BatchID != b1.ID || first.Quantity != 5 {
		t.Errorf("first deduction = batch %v qty %d, want B1 qty 5", first.BatchID, first.Quantity)
	}
	if second.BatchID == nil || *second.BatchID != b2.ID || second.Quantity != 3 {
		t.Errorf("second deduction = batch %v qty %d, want B2 qty 3", second.BatchID, second.Quantity)
	}
	if first.Profit == nil || *first.Profit != (1000-400)*5 {
		t.Errorf("first profit = %v, want %d", first.Profit, (1000-400)*5)
	}

	if len(env.store.movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(env.store.movements))
	}
	for _, m := range env.store.movements {
		if m.Cause != model.CauseSale || m.Quantity >= 0 {
			t.Errorf("movement cause=%s qty=%d, want sale cause with negative qty", m.Cause, m.Quantity)
		}
		if m.ReferenceID == nil || *m.ReferenceID != sale.ID {
			t.Errorf("movement reference = %v, want sale %s", m.ReferenceID, sale.ID)
		}
	}

	updated := env.store.shifts[shift.ID]
	if updated.CashSales != 8000 || updated.TotalSales != 8000 {
		t.Errorf("shift cash=%d total=%d, want 8000/8000", updated.CashSales, updated.TotalSales)
	}
}

func TestCreateSaleAtomicOnMidCartFailure(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	shift := env.openShift(cashier, 0)

	good := env.addProduct("SKU-1", "Teh Celup", 20)
	env.addReceivedBatch(good.ID, "G1", 20, int64Ptr(300), nil, time.Now().AddDate(0, 0, -1))
	short := env.addProduct("SKU-2", "Gula Pasir", 2)
	env.addReceivedBatch(short.ID, "S1", 2, int64Ptr(500), nil, time.Now().AddDate(0, 0, -1))

	_, err := svc.Create(&CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: good.ID, Quantity: 5, UnitPrice: 1000},
			{ProductID: short.ID, Quantity: 5, UnitPrice: 1500},
		},
	}, cashier)

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.ProductName != "Gula Pasir" {
		t.Errorf("failing product = %q, want Gula Pasir", insufficient.ProductName)
	}

	// Nothing from the first line may survive the rollback.
	if got := env.store.products[good.ID].Stock; got != 20 {
		t.Errorf("good product stock = %d, want 20", got)
	}
	if len(env.store.sales) != 0 {
		t.Errorf("sales persisted = %d, want 0", len(env.store.sales))
	}
	if len(env.store.movements) != 0 {
		t.Errorf("movements persisted = %d, want 0", len(env.store.movements))
	}
	if len(env.store.histories) != 0 {
		t.Errorf("history rows persisted = %d, want 0", len(env.store.histories))
	}
	if got := env.store.shifts[shift.ID].TotalSales; got != 0 {
		t.Errorf("shift total = %d, want 0", got)
	}
}

func TestCreateSaleRequiresOpenShift(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	product := env.addProduct("SKU-1", "Sabun", 10)

	_, err := svc.Create(&CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 1, UnitPrice: 500}},
	}, "cashier-1")
	if !errors.Is(err, ErrNoActiveShift) {
		t.Fatalf("err = %v, want ErrNoActiveShift", err)
	}
}

func TestCreateSaleUntrackedFallback(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	env.openShift(cashier, 0)

	// Product predates batch tracking entirely.
	product := env.addProduct("SKU-1", "Garam", 10)

	_, err := svc.Create(&CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 4, UnitPrice: 800}},
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := env.store.products[product.ID].Stock; got != 6 {
		t.Errorf("product stock = %d, want 6", got)
	}
	if len(env.store.histories) != 1 {
		t.Fatalf("history rows = %d, want 1", len(env.store.histories))
	}
	h := env.store.histories[0]
	if h.BatchID != nil || h.CostPrice != nil || h.Profit != nil {
		t.Errorf("untracked history batch=%v cost=%v profit=%v, want all nil", h.BatchID, h.CostPrice, h.Profit)
	}
}

func TestCreateSaleExpiredBatchBlocksFallback(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	env.openShift(cashier, 0)

	// Aggregate stock says 10 but the only batch expired yesterday: the
	// sale must fail instead of silently selling expired goods.
	product := env.addProduct("SKU-1", "Susu UHT", 10)
	yesterday := datePtr(time.Now().AddDate(0, 0, -1))
	env.addReceivedBatch(product.ID, "EXP1", 10, int64Ptr(700), yesterday, time.Now().AddDate(0, -1, 0))

	_, err := svc.Create(&CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 2, UnitPrice: 1200}},
	}, cashier)

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if got := env.store.products[product.ID].Stock; got != 10 {
		t.Errorf("product stock = %d, want 10 untouched", got)
	}
}

func TestWholesaleMinimumEnforced(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(3)

	cashier := "cashier-1"
	env.openShift(cashier, 0)

	product := env.addProduct("SKU-1", "Beras 5kg", 50)
	p := env.store.products[product.ID]
	p.WholesalePrice = int64Ptr(900)
	p.WholesaleMinQty = 5
	env.store.products[product.ID] = p
	env.addReceivedBatch(product.ID, "W1", 50, int64Ptr(600), nil, time.Now().AddDate(0, 0, -1))

	_, err := svc.Create(&CreateSaleRequest{
		Items:    []SaleItemRequest{{ProductID: product.ID, Quantity: 2, UnitPrice: 900}},
		SaleType: model.SaleWholesale,
	}, cashier)
	if !errors.Is(err, ErrWholesaleMinimumNotMet) {
		t.Fatalf("err = %v, want ErrWholesaleMinimumNotMet", err)
	}

	if _, err := svc.Create(&CreateSaleRequest{
		Items:    []SaleItemRequest{{ProductID: product.ID, Quantity: 5, UnitPrice: 900}},
		SaleType: model.SaleWholesale,
	}, cashier); err != nil {
		t.Fatalf("Create at minimum: %v", err)
	}
}

func TestSplitPaymentBucketsShiftTotals(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	shift := env.openShift(cashier, 0)

	product := env.addProduct("SKU-1", "Minyak Goreng", 10)
	env.addReceivedBatch(product.ID, "M1", 10, int64Ptr(1100), nil, time.Now().AddDate(0, 0, -1))

	_, err := svc.Create(&CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 2, UnitPrice: 1500}},
		PaymentMethod: "split",
		Split:         &PaymentSplit{Cash: 1000, Card: 2000},
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated := env.store.shifts[shift.ID]
	if updated.CashSales != 1000 || updated.CardSales != 2000 || updated.TotalSales != 3000 {
		t.Errorf("shift cash=%d card=%d total=%d, want 1000/2000/3000",
			updated.CashSales, updated.CardSales, updated.TotalSales)
	}
}

func TestVoidSaleRestoresStockAndShift(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	shift := env.openShift(cashier, 0)

	product := env.addProduct("SKU-1", "Kecap", 10)
	soon := datePtr(time.Now().AddDate(0, 0, 5))
	batch := env.addReceivedBatch(product.ID, "K1", 10, int64Ptr(800), soon, time.Now().AddDate(0, 0, -2))

	sale, err := svc.Create(&CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 4, UnitPrice: 1300}},
		PaymentMethod: "cash",
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := env.store.products[product.ID].Stock; got != 6 {
		t.Fatalf("stock after sale = %d, want 6", got)
	}

	voided, err := svc.Void(sale.ID, "customer returned goods", "manager-1")
	if err != nil {
		t.Fatalf("Void: %v", err)
	}
	if !voided.Voided || voided.VoidReason != "customer returned goods" {
		t.Errorf("voided=%v reason=%q, want true with reason kept", voided.Voided, voided.VoidReason)
	}

	if got := env.store.products[product.ID].Stock; got != 10 {
		t.Errorf("stock after void = %d, want 10", got)
	}
	if got := env.store.batches[batch.ID].Quantity; got != 10 {
		t.Errorf("batch quantity after void = %d, want 10", got)
	}

	updated := env.store.shifts[shift.ID]
	if updated.CashSales != 0 || updated.TotalSales != 0 {
		t.Errorf("shift cash=%d total=%d after void, want 0/0", updated.CashSales, updated.TotalSales)
	}

	var voidMovements int
	for _, m := range env.store.movements {
		if m.Cause == model.CauseSaleVoid {
			voidMovements++
			if m.Quantity != 4 {
				t.Errorf("void movement qty = %d, want +4", m.Quantity)
			}
		}
	}
	if voidMovements != 1 {
		t.Errorf("void movements = %d, want 1", voidMovements)
	}

	// Sale row survives for audit.
	if _, ok := env.store.sales[sale.ID]; !ok {
		t.Error("sale row deleted on void, want kept")
	}
}

func TestVoidSaleGuards(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	env.openShift(cashier, 0)
	product := env.addProduct("SKU-1", "Roti", 10)
	env.addReceivedBatch(product.ID, "R1", 10, int64Ptr(200), nil, time.Now().AddDate(0, 0, -1))

	sale, err := svc.Create(&CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 1, UnitPrice: 500}},
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Void(sale.ID, "   ", "manager-1"); !errors.Is(err, ErrMissingVoidReason) {
		t.Errorf("blank reason err = %v, want ErrMissingVoidReason", err)
	}

	if _, err := svc.Void(sale.ID, "damaged", "manager-1"); err != nil {
		t.Fatalf("first void: %v", err)
	}
	if _, err := svc.Void(sale.ID, "again", "manager-1"); !errors.Is(err, ErrAlreadyVoided) {
		t.Errorf("second void err = %v, want ErrAlreadyVoided", err)
	}
	if got := env.store.products[product.ID].Stock; got != 10 {
		t.Errorf("stock after double void = %d, want 10 (restored once)", got)
	}
}

func TestVoidReversesRecordedPaymentBuckets(t *testing.T) {
	env := newFakeEnv()
	saleSvc := env.saleService(1)
	paySvc := NewPaymentService(env.db, env.payments, env.sales)

	cashier := "cashier-1"
	shift := env.openShift(cashier, 0)
	product := env.addProduct("SKU-1", "Telur", 30)
	env.addReceivedBatch(product.ID, "T1", 30, int64Ptr(900), nil, time.Now().AddDate(0, 0, -1))

	sale, err := saleSvc.Create(&CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 2, UnitPrice: 1000}},
		PaymentMethod: "card",
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := paySvc.Record(&RecordPaymentRequest{
		SaleID: sale.ID,
		Method: model.PayCard,
		Amount: 2000,
	}, cashier); err != nil {
		t.Fatalf("Record payment: %v", err)
	}

	if _, err := saleSvc.Void(sale.ID, "wrong order", "manager-1"); err != nil {
		t.Fatalf("Void: %v", err)
	}

	updated := env.store.shifts[shift.ID]
	if updated.CardSales != 0 || updated.TotalSales != 0 {
		t.Errorf("shift card=%d total=%d after void, want 0/0", updated.CardSales, updated.TotalSales)
	}
	if updated.CashSales != 0 {
		t.Errorf("shift cash=%d after card void, want 0", updated.CashSales)
	}
}

func TestHeldOrderLifecycle(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	env.openShift(cashier, 0)
	product := env.addProduct("SKU-1", "Mie Instan", 24)
	env.addReceivedBatch(product.ID, "M1", 24, int64Ptr(250), nil, time.Now().AddDate(0, 0, -1))

	cart, err := svc.Hold(&CreateSaleRequest{
		Items:        []SaleItemRequest{{ProductID: product.ID, Quantity: 6, UnitPrice: 350}},
		CustomerName: "Budi",
	}, cashier)
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}

	// Holding moves no stock.
	if got := env.store.products[product.ID].Stock; got != 24 {
		t.Errorf("stock after hold = %d, want 24", got)
	}
	held, err := svc.HeldOrders(cashier)
	if err != nil || len(held) != 1 {
		t.Fatalf("HeldOrders = %d orders, err %v, want 1", len(held), err)
	}

	// Another cashier cannot complete it.
	env.openShift("cashier-2", 0)
	if _, err := svc.CompleteHeldOrder(cart.ID, &CompleteHeldOrderRequest{}, "cashier-2"); !errors.Is(err, ErrCartNotOwned) {
		t.Errorf("foreign complete err = %v, want ErrCartNotOwned", err)
	}

	sale, err := svc.CompleteHeldOrder(cart.ID, &CompleteHeldOrderRequest{PaymentMethod: "cash"}, cashier)
	if err != nil {
		t.Fatalf("CompleteHeldOrder: %v", err)
	}
	if sale.CustomerName != "Budi" {
		t.Errorf("customer = %q, want carried over from cart", sale.CustomerName)
	}
	if got := env.store.products[product.ID].Stock; got != 18 {
		t.Errorf("stock after completion = %d, want 18", got)
	}
	if got := env.store.carts[cart.ID].Status; got != model.CartClosed {
		t.Errorf("cart status = %s, want closed", got)
	}

	// Completing again fails: the cart is no longer held.
	if _, err := svc.CompleteHeldOrder(cart.ID, &CompleteHeldOrderRequest{}, cashier); !errors.Is(err, ErrCartNotFound) {
		t.Errorf("re-complete err = %v, want ErrCartNotFound", err)
	}
}

func TestVoidHeldOrder(t *testing.T) {
	env := newFakeEnv()
	svc := env.saleService(1)

	cashier := "cashier-1"
	env.openShift(cashier, 0)
	product := env.addProduct("SKU-1", "Sarden", 12)

	cart, err := svc.Hold(&CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 2, UnitPrice: 2000}},
	}, cashier)
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}

	if err := svc.VoidHeldOrder(cart.ID, "", cashier); !errors.Is(err, ErrMissingVoidReason) {
		t.Errorf("blank reason err = %v, want ErrMissingVoidReason", err)
	}
	if err := svc.VoidHeldOrder(cart.ID, "customer left", cashier); err != nil {
		t.Fatalf("VoidHeldOrder: %v", err)
	}
	if got := env.store.carts[cart.ID].Status; got != model.CartVoided {
		t.Errorf("cart status = %s, want voided", got)
	}
	if got := env.store.products[product.ID].Stock; got != 12 {
		t.Errorf("stock = %d, want 12 untouched", got)
	}
}
