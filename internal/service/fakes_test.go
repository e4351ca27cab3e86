package service

import (
	"database/sql"
	"sort"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStore is a shared in-memory backing for the fake repositories, so
// one test can observe the combined effect of a multi-repo transaction.
type fakeStore struct {
	products  map[uuid.UUID]model.Product
	batches   map[uuid.UUID]model.Batch
	movements []model.StockMovement
	histories []model.SalesHistory
	sales     map[uuid.UUID]model.Sale
	carts     map[uuid.UUID]model.Cart
	payments  []model.Payment
	shifts    map[uuid.UUID]model.Shift
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[uuid.UUID]model.Product),
		batches:  make(map[uuid.UUID]model.Batch),
		sales:    make(map[uuid.UUID]model.Sale),
		carts:    make(map[uuid.UUID]model.Cart),
		shifts:   make(map[uuid.UUID]model.Shift),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.batches {
		snap.batches[k] = v
	}
	for k, v := range s.sales {
		snap.sales[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = v
	}
	for k, v := range s.shifts {
		snap.shifts[k] = v
	}
	snap.movements = append([]model.StockMovement(nil), s.movements...)
	snap.histories = append([]model.SalesHistory(nil), s.histories...)
	snap.payments = append([]model.Payment(nil), s.payments...)
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.products = snap.products
	s.batches = snap.batches
	s.sales = snap.sales
	s.carts = snap.carts
	s.shifts = snap.shifts
	s.movements = snap.movements
	s.histories = snap.histories
	s.payments = snap.payments
}

// fakeDB implements TxRunner by snapshotting the store before the
// callback and rolling back on error, so atomicity tests are honest.
type fakeDB struct {
	store *fakeStore
}

func (f *fakeDB) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	snap := f.store.snapshot()
	if err := fc(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

func assignID(base *model.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
}

// ---- ProductRepository ----

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(product *model.Product) error {
	assignID(&product.BaseModel)
	r.s.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) FindAll() ([]model.Product, error) {
	products := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindBySKU(sku string) (*model.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) FindLowStock() ([]model.Product, error) {
	var products []model.Product
	for _, p := range r.s.products {
		if p.IsActive && p.Stock <= p.LowStockThreshold {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *fakeProductRepo) Save(tx *gorm.DB, product *model.Product) error {
	r.s.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(id)
}

func (r *fakeProductRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	p.UpdatedBy = updatedBy
	r.s.products[id] = p
	return nil
}

// ---- BatchRepository ----

type fakeBatchRepo struct{ s *fakeStore }

func (r *fakeBatchRepo) Create(batch *model.Batch) error {
	assignID(&batch.BaseModel)
	r.s.batches[batch.ID] = *batch
	return nil
}

func (r *fakeBatchRepo) FindByID(id uuid.UUID) (*model.Batch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *fakeBatchRepo) FindByProduct(productID uuid.UUID) ([]model.Batch, error) {
	var batches []model.Batch
	for _, b := range r.s.batches {
		if b.ProductID == productID {
			batches = append(batches, b)
		}
	}
	sortBatches(batches)
	return batches, nil
}

func (r *fakeBatchRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Batch, error) {
	return r.FindByID(id)
}

func (r *fakeBatchRepo) LockEligible(tx *gorm.DB, productID uuid.UUID, today time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	for _, b := range r.s.batches {
		if b.ProductID != productID || b.Status != model.BatchReceived || b.Quantity <= 0 {
			continue
		}
		if b.ExpiryDate != nil && b.ExpiryDate.Before(today) {
			continue
		}
		batches = append(batches, b)
	}
	sortBatches(batches)
	return batches, nil
}

func (r *fakeBatchRepo) LockExpiredReceived(tx *gorm.DB, today time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	for _, b := range r.s.batches {
		if b.Status == model.BatchReceived && b.ExpiryDate != nil && b.ExpiryDate.Before(today) {
			batches = append(batches, b)
		}
	}
	return batches, nil
}

func (r *fakeBatchRepo) CountByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var count int64
	for _, b := range r.s.batches {
		if b.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBatchRepo) Save(tx *gorm.DB, batch *model.Batch) error {
	r.s.batches[batch.ID] = *batch
	return nil
}

func sortBatches(batches []model.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
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
}

// ---- StockMovementRepository ----

type fakeMovementRepo struct{ s *fakeStore }

func (r *fakeMovementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	assignID(&movement.BaseModel)
	movement.CreatedAt = time.Now()
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			movements = append(movements, m)
		}
	}
	if limit > 0 && len(movements) > limit {
		movements = movements[:limit]
	}
	return movements, nil
}

func (r *fakeMovementRepo) FindAll(limit int) ([]model.StockMovement, error) {
	movements := append([]model.StockMovement(nil), r.s.movements...)
	if limit > 0 && len(movements) > limit {
		movements = movements[:limit]
	}
	return movements, nil
}

func (r *fakeMovementRepo) GetDailyMovement(startDate, endDate time.Time) ([]repository.DailyMovement, error) {
	byDate := make(map[string]*repository.DailyMovement)
	var dates []string
	for _, m := range r.s.movements {
		if m.CreatedAt.Before(startDate) || m.CreatedAt.After(endDate) {
			continue
		}
		date := m.CreatedAt.Format("2006-01-02")
		entry, ok := byDate[date]
		if !ok {
			entry = &repository.DailyMovement{Date: date}
			byDate[date] = entry
			dates = append(dates, date)
		}
		if m.Quantity > 0 {
			entry.Inbound += m.Quantity
		} else {
			entry.Outbound += -m.Quantity
		}
	}
	sort.Strings(dates)
	var results []repository.DailyMovement
	for _, date := range dates {
		results = append(results, *byDate[date])
	}
	return results, nil
}

// ---- SalesHistoryRepository ----

type fakeHistoryRepo struct{ s *fakeStore }

func (r *fakeHistoryRepo) Create(tx *gorm.DB, history *model.SalesHistory) error {
	// Same as the GORM hook: generate the ID and the profit snapshot.
	if err := history.BeforeCreate(nil); err != nil {
		return err
	}
	r.s.histories = append(r.s.histories, *history)
	return nil
}

func (r *fakeHistoryRepo) FindByReceipt(tx *gorm.DB, receiptNumber string) ([]model.SalesHistory, error) {
	var histories []model.SalesHistory
	for _, h := range r.s.histories {
		if h.ReceiptNumber == receiptNumber {
			histories = append(histories, h)
		}
	}
	return histories, nil
}

func (r *fakeHistoryRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.SalesHistory, error) {
	var histories []model.SalesHistory
	for _, h := range r.s.histories {
		if h.ProductID == productID {
			histories = append(histories, h)
		}
	}
	if limit > 0 && len(histories) > limit {
		histories = histories[:limit]
	}
	return histories, nil
}

func (r *fakeHistoryRepo) GetProfitSummary(startDate, endDate time.Time) (*repository.ProfitSummary, error) {
	var summary repository.ProfitSummary
	for _, h := range r.s.histories {
		if h.SaleDate.Before(startDate) || h.SaleDate.After(endDate) {
			continue
		}
		summary.TotalRevenue += h.TotalPrice
		summary.UnitsSold += int64(h.Quantity)
		if h.Profit != nil {
			summary.TotalProfit += *h.Profit
		}
		if h.CostPrice == nil {
			summary.UntrackedRows++
		}
	}
	return &summary, nil
}

// ---- SaleRepository ----

type fakeSaleRepo struct{ s *fakeStore }

func (r *fakeSaleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	for _, existing := range r.s.sales {
		if existing.ReceiptNumber == sale.ReceiptNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	assignID(&sale.BaseModel)
	for i := range sale.Items {
		assignID(&sale.Items[i].BaseModel)
		sale.Items[i].SaleID = sale.ID
	}
	r.s.sales[sale.ID] = *sale
	return nil
}

func (r *fakeSaleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sale, nil
}

func (r *fakeSaleRepo) FindByReceipt(receiptNumber string) (*model.Sale, error) {
	for _, sale := range r.s.sales {
		if sale.ReceiptNumber == receiptNumber {
			found := sale
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) FindRange(startDate, endDate time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	for _, sale := range r.s.sales {
		if !sale.SaleDate.Before(startDate) && !sale.SaleDate.After(endDate) {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func (r *fakeSaleRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(id)
}

func (r *fakeSaleRepo) Save(tx *gorm.DB, sale *model.Sale) error {
	r.s.sales[sale.ID] = *sale
	return nil
}

// ---- CartRepository ----

type fakeCartRepo struct{ s *fakeStore }

func (r *fakeCartRepo) Create(tx *gorm.DB, cart *model.Cart) error {
	assignID(&cart.BaseModel)
	for i := range cart.Items {
		assignID(&cart.Items[i].BaseModel)
		cart.Items[i].CartID = cart.ID
	}
	r.s.carts[cart.ID] = *cart
	return nil
}

func (r *fakeCartRepo) FindHeldByCashier(cashierID string) ([]model.Cart, error) {
	var carts []model.Cart
	for _, cart := range r.s.carts {
		if cart.Status == model.CartHeld && cart.CashierID != nil && *cart.CashierID == cashierID {
			carts = append(carts, cart)
		}
	}
	return carts, nil
}

func (r *fakeCartRepo) LockHeldByID(tx *gorm.DB, id uuid.UUID) (*model.Cart, error) {
	cart, ok := r.s.carts[id]
	if !ok || cart.Status != model.CartHeld {
		return nil, gorm.ErrRecordNotFound
	}
	return &cart, nil
}

func (r *fakeCartRepo) CountHeldByCashier(tx *gorm.DB, cashierID string) (int64, error) {
	var count int64
	for _, cart := range r.s.carts {
		if cart.Status == model.CartHeld && cart.CashierID != nil && *cart.CashierID == cashierID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCartRepo) Save(tx *gorm.DB, cart *model.Cart) error {
	r.s.carts[cart.ID] = *cart
	return nil
}

// ---- PaymentRepository ----

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(payment *model.Payment) error {
	assignID(&payment.BaseModel)
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

func (r *fakePaymentRepo) FindBySale(tx *gorm.DB, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	for _, p := range r.s.payments {
		if p.SaleID == saleID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// ---- ShiftRepository ----

type fakeShiftRepo struct{ s *fakeStore }

func (r *fakeShiftRepo) Create(shift *model.Shift) error {
	assignID(&shift.BaseModel)
	r.s.shifts[shift.ID] = *shift
	return nil
}

func (r *fakeShiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	shift, ok := r.s.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &shift, nil
}

func (r *fakeShiftRepo) FindOpenByCashier(cashierID string) (*model.Shift, error) {
	for _, shift := range r.s.shifts {
		if shift.CashierID == cashierID && shift.Status == model.ShiftOpen {
			found := shift
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShiftRepo) LockOpenByCashier(tx *gorm.DB, cashierID string) (*model.Shift, error) {
	return r.FindOpenByCashier(cashierID)
}

func (r *fakeShiftRepo) AddSales(tx *gorm.DB, shiftID uuid.UUID, cash, card, mobile, total int64) error {
	shift, ok := r.s.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	shift.CashSales += cash
	shift.CardSales += card
	shift.MobileSales += mobile
	shift.TotalSales += total
	r.s.shifts[shiftID] = shift
	return nil
}

func (r *fakeShiftRepo) Save(tx *gorm.DB, shift *model.Shift) error {
	r.s.shifts[shift.ID] = *shift
	return nil
}

func (r *fakeShiftRepo) FindRange(startDate, endDate time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	for _, shift := range r.s.shifts {
		if !shift.StartTime.Before(startDate) && !shift.StartTime.After(endDate) {
			shifts = append(shifts, shift)
		}
	}
	return shifts, nil
}

// fakeEnv bundles the store with one fake repo of each kind.
type fakeEnv struct {
	db       *fakeDB
	store    *fakeStore
	products *fakeProductRepo
	batches  *fakeBatchRepo
	moves    *fakeMovementRepo
	history  *fakeHistoryRepo
	sales    *fakeSaleRepo
	carts    *fakeCartRepo
	payments *fakePaymentRepo
	shifts   *fakeShiftRepo
}

func newFakeEnv() *fakeEnv {
	store := newFakeStore()
	return &fakeEnv{
		db:       &fakeDB{store: store},
		store:    store,
		products: &fakeProductRepo{s: store},
		batches:  &fakeBatchRepo{s: store},
		moves:    &fakeMovementRepo{s: store},
		history:  &fakeHistoryRepo{s: store},
		sales:    &fakeSaleRepo{s: store},
		carts:    &fakeCartRepo{s: store},
		payments: &fakePaymentRepo{s: store},
		shifts:   &fakeShiftRepo{s: store},
	}
}

func (e *fakeEnv) saleService(wholesaleMinQty int) SaleService {
	return NewSaleService(e.db, e.products, e.batches, e.moves, e.history,
		e.sales, e.carts, e.payments, e.shifts, nil, wholesaleMinQty)
}

func (e *fakeEnv) addProduct(sku, name string, stock int) *model.Product {
	product := &model.Product{
		SKU:          sku,
		Name:         name,
		SellingPrice: 1000,
		Stock:        stock,
		IsActive:     true,
	}
	e.products.Create(product)
	return product
}

func (e *fakeEnv) addReceivedBatch(productID uuid.UUID, number string, qty int, costPrice *int64, expiry *time.Time, purchase time.Time) *model.Batch {
	received := purchase
	batch := &model.Batch{
		ProductID:    productID,
		BatchNumber:  number,
		Quantity:     qty,
		CostPrice:    costPrice,
		ExpiryDate:   expiry,
		PurchaseDate: purchase,
		ReceivedDate: &received,
		Status:       model.BatchReceived,
	}
	e.batches.Create(batch)
	return batch
}

func (e *fakeEnv) openShift(cashierID string, openingBalance int64) *model.Shift {
	shift := &model.Shift{
		CashierID:      cashierID,
		StartTime:      time.Now(),
		OpeningBalance: openingBalance,
		Status:         model.ShiftOpen,
	}
	e.shifts.Create(shift)
	return shift
}

func datePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }
