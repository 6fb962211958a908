package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
)

// インメモリのテスト用ストア。
// WithinTxはmutexで直列化し、fnがエラーを返したら開始時点の状態へ巻き戻す。
// 実DBのトランザクション境界と同じ見え方をusecaseに与える。
type fakeStore struct {
	mu sync.Mutex

	products           map[int64]model.Product
	deletedProducts    map[int64]bool
	mutations          []model.StockMutation
	transactions       map[int64]model.Transaction
	transactionItems   []model.TransactionItem
	vendors            map[int64]model.Vendor
	purchaseOrders     map[int64]model.PurchaseOrder
	purchaseOrderItems map[int64]model.PurchaseOrderItem
	adjustments        []model.InventoryAdjustment
	sequences          map[string]int64
	users              map[int64]model.User

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:           map[int64]model.Product{},
		deletedProducts:    map[int64]bool{},
		transactions:       map[int64]model.Transaction{},
		vendors:            map[int64]model.Vendor{},
		purchaseOrders:     map[int64]model.PurchaseOrder{},
		purchaseOrderItems: map[int64]model.PurchaseOrderItem{},
		sequences:          map[string]int64{},
		users:              map[int64]model.User{},
	}
}

func (s *fakeStore) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	cp.nextID = s.nextID
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.deletedProducts {
		cp.deletedProducts[k] = v
	}
	cp.mutations = append(cp.mutations, s.mutations...)
	for k, v := range s.transactions {
		cp.transactions[k] = v
	}
	cp.transactionItems = append(cp.transactionItems, s.transactionItems...)
	for k, v := range s.vendors {
		cp.vendors[k] = v
	}
	for k, v := range s.purchaseOrders {
		cp.purchaseOrders[k] = v
	}
	for k, v := range s.purchaseOrderItems {
		cp.purchaseOrderItems[k] = v
	}
	cp.adjustments = append(cp.adjustments, s.adjustments...)
	for k, v := range s.sequences {
		cp.sequences[k] = v
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	return cp
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.products = snap.products
	s.deletedProducts = snap.deletedProducts
	s.mutations = snap.mutations
	s.transactions = snap.transactions
	s.transactionItems = snap.transactionItems
	s.vendors = snap.vendors
	s.purchaseOrders = snap.purchaseOrders
	s.purchaseOrderItems = snap.purchaseOrderItems
	s.adjustments = snap.adjustments
	s.sequences = snap.sequences
	s.users = snap.users
	s.nextID = snap.nextID
}

// テスト準備用。tx外から直接入れる。
func (s *fakeStore) seedProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.newID()
	}
	s.products[p.ID] = p
	return p
}

func (s *fakeStore) seedVendor(v model.Vendor) model.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.newID()
	}
	s.vendors[v.ID] = v
	return v
}

func (s *fakeStore) productQuantity(productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].QuantityInStock
}

func (s *fakeStore) mutationsFor(productID int64) []model.StockMutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockMutation
	for _, m := range s.mutations {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

type fakeTxManager struct {
	store *fakeStore
}

func newFakeTxManager(store *fakeStore) *fakeTxManager {
	return &fakeTxManager{store: store}
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(fakeRepos{s: m.store}); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeRepos struct {
	s *fakeStore
}

func (r fakeRepos) Products() repo.ProductRepository                   { return fakeProductRepo{s: r.s} }
func (r fakeRepos) StockMutations() repo.StockMutationRepository       { return fakeMutationRepo{s: r.s} }
func (r fakeRepos) Transactions() repo.TransactionRepository           { return fakeTransactionRepo{s: r.s} }
func (r fakeRepos) TransactionItems() repo.TransactionItemRepository   { return fakeTransactionItemRepo{s: r.s} }
func (r fakeRepos) Vendors() repo.VendorRepository                     { return fakeVendorRepo{s: r.s} }
func (r fakeRepos) PurchaseOrders() repo.PurchaseOrderRepository       { return fakePurchaseOrderRepo{s: r.s} }
func (r fakeRepos) PurchaseOrderItems() repo.PurchaseOrderItemRepository {
	return fakePurchaseOrderItemRepo{s: r.s}
}
func (r fakeRepos) Adjustments() repo.AdjustmentRepository { return fakeAdjustmentRepo{s: r.s} }
func (r fakeRepos) Sequences() repo.SequenceRepository     { return fakeSequenceRepo{s: r.s} }

type fakeProductRepo struct {
	s *fakeStore
}

func (r fakeProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var all []model.Product
	for id, p := range r.s.products {
		if r.s.deletedProducts[id] {
			continue
		}
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		if q.LowStockOnly && !p.NeedsReorder() {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) &&
			!strings.Contains(strings.ToLower(p.SKU), strings.ToLower(q.Q)) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start >= len(all) {
		return []model.Product{}, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r fakeProductRepo) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	p, ok := r.s.products[productID]
	if !ok || r.s.deletedProducts[productID] {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r fakeProductRepo) FindByIDForUpdate(ctx context.Context, productID int64) (model.Product, error) {
	// 本物はUnscopedで引くので削除済みでも返す。
	p, ok := r.s.products[productID]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r fakeProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = r.s.newID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = p
	return p, nil
}

func (r fakeProductRepo) Update(ctx context.Context, p model.Product) error {
	existing, ok := r.s.products[p.ID]
	if !ok || r.s.deletedProducts[p.ID] {
		return repo.ErrNotFound
	}
	p.QuantityInStock = existing.QuantityInStock
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	r.s.products[p.ID] = p
	return nil
}

func (r fakeProductRepo) SoftDelete(ctx context.Context, productID int64) error {
	if _, ok := r.s.products[productID]; !ok || r.s.deletedProducts[productID] {
		return repo.ErrNotFound
	}
	r.s.deletedProducts[productID] = true
	return nil
}

func (r fakeProductRepo) UpdateQuantity(ctx context.Context, productID int64, quantity int64) error {
	p, ok := r.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.QuantityInStock = quantity
	p.UpdatedAt = time.Now()
	r.s.products[productID] = p
	return nil
}

type fakeMutationRepo struct {
	s *fakeStore
}

func (r fakeMutationRepo) Create(ctx context.Context, m model.StockMutation) (model.StockMutation, error) {
	m.ID = r.s.newID()
	m.CreatedAt = time.Now()
	r.s.mutations = append(r.s.mutations, m)
	return m, nil
}

func (r fakeMutationRepo) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.StockMutation, error) {
	var out []model.StockMutation
	for i := len(r.s.mutations) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.mutations[i].ProductID == productID {
			out = append(out, r.s.mutations[i])
		}
	}
	return out, nil
}

func (r fakeMutationRepo) SumDeltaByProductID(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	for _, m := range r.s.mutations {
		if m.ProductID == productID {
			sum += m.Delta
		}
	}
	return sum, nil
}

type fakeTransactionRepo struct {
	s *fakeStore
}

func (r fakeTransactionRepo) Create(ctx context.Context, t model.Transaction) (int64, error) {
	// idempotency_keyのユニーク制約を模す。
	for _, ex := range r.s.transactions {
		if ex.IdempotencyKey == t.IdempotencyKey {
			return 0, errors.New("duplicate key value violates unique constraint")
		}
	}
	t.ID = r.s.newID()
	r.s.transactions[t.ID] = t
	return t.ID, nil
}

func (r fakeTransactionRepo) FindByID(ctx context.Context, transactionID int64) (model.Transaction, error) {
	t, ok := r.s.transactions[transactionID]
	if !ok {
		return model.Transaction{}, repo.ErrNotFound
	}
	return t, nil
}

func (r fakeTransactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (model.Transaction, bool, error) {
	for _, t := range r.s.transactions {
		if t.IdempotencyKey == key {
			return t, true, nil
		}
	}
	return model.Transaction{}, false, nil
}

func (r fakeTransactionRepo) MarkVoided(ctx context.Context, transactionID int64, reason string, voidedAt time.Time) error {
	t, ok := r.s.transactions[transactionID]
	if !ok {
		return repo.ErrNotFound
	}
	t.Status = model.TransactionStatusVoided
	t.VoidReason = reason
	t.VoidedAt = &voidedAt
	t.UpdatedAt = voidedAt
	r.s.transactions[transactionID] = t
	return nil
}

func (r fakeTransactionRepo) List(ctx context.Context, page int, limit int) ([]model.Transaction, int64, error) {
	var all []model.Transaction
	for _, t := range r.s.transactions {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Transaction{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

type fakeTransactionItemRepo struct {
	s *fakeStore
}

func (r fakeTransactionItemRepo) CreateBulk(ctx context.Context, transactionID int64, items []model.TransactionItem) error {
	for _, it := range items {
		it.ID = r.s.newID()
		it.TransactionID = transactionID
		r.s.transactionItems = append(r.s.transactionItems, it)
	}
	return nil
}

func (r fakeTransactionItemRepo) ListByTransactionID(ctx context.Context, transactionID int64) ([]model.TransactionItem, error) {
	var out []model.TransactionItem
	for _, it := range r.s.transactionItems {
		if it.TransactionID == transactionID {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeVendorRepo struct {
	s *fakeStore
}

func (r fakeVendorRepo) FindByID(ctx context.Context, vendorID int64) (model.Vendor, error) {
	v, ok := r.s.vendors[vendorID]
	if !ok {
		return model.Vendor{}, repo.ErrNotFound
	}
	return v, nil
}

func (r fakeVendorRepo) Create(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	v.ID = r.s.newID()
	r.s.vendors[v.ID] = v
	return v, nil
}

func (r fakeVendorRepo) List(ctx context.Context, page int, limit int) ([]model.Vendor, int64, error) {
	var all []model.Vendor
	for _, v := range r.s.vendors {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, int64(len(all)), nil
}

type fakePurchaseOrderRepo struct {
	s *fakeStore
}

func (r fakePurchaseOrderRepo) Create(ctx context.Context, po model.PurchaseOrder) (int64, error) {
	po.ID = r.s.newID()
	r.s.purchaseOrders[po.ID] = po
	return po.ID, nil
}

func (r fakePurchaseOrderRepo) FindByID(ctx context.Context, poID int64) (model.PurchaseOrder, error) {
	po, ok := r.s.purchaseOrders[poID]
	if !ok {
		return model.PurchaseOrder{}, repo.ErrNotFound
	}
	return po, nil
}

func (r fakePurchaseOrderRepo) UpdateStatus(ctx context.Context, poID int64, status model.PurchaseOrderStatus) error {
	po, ok := r.s.purchaseOrders[poID]
	if !ok {
		return repo.ErrNotFound
	}
	po.Status = status
	po.UpdatedAt = time.Now()
	r.s.purchaseOrders[poID] = po
	return nil
}

func (r fakePurchaseOrderRepo) List(ctx context.Context, q repo.PurchaseOrderListQuery) ([]model.PurchaseOrder, int64, error) {
	var all []model.PurchaseOrder
	for _, po := range r.s.purchaseOrders {
		if q.Status != "" && po.Status != q.Status {
			continue
		}
		all = append(all, po)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start >= len(all) {
		return []model.PurchaseOrder{}, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

type fakePurchaseOrderItemRepo struct {
	s *fakeStore
}

func (r fakePurchaseOrderItemRepo) CreateBulk(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error {
	for i := range items {
		items[i].ID = r.s.newID()
		items[i].PurchaseOrderID = poID
		r.s.purchaseOrderItems[items[i].ID] = items[i]
	}
	return nil
}

func (r fakePurchaseOrderItemRepo) ListByPurchaseOrderID(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error) {
	var out []model.PurchaseOrderItem
	for _, it := range r.s.purchaseOrderItems {
		if it.PurchaseOrderID == poID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakePurchaseOrderItemRepo) AddReceived(ctx context.Context, itemID int64, qty int64, notes string) (bool, error) {
	it, ok := r.s.purchaseOrderItems[itemID]
	if !ok {
		return false, nil
	}
	if it.QuantityReceived+qty > it.QuantityOrdered {
		return false, nil
	}
	it.QuantityReceived += qty
	if notes != "" {
		it.ReceivingNotes = notes
	}
	it.UpdatedAt = time.Now()
	r.s.purchaseOrderItems[itemID] = it
	return true, nil
}

type fakeAdjustmentRepo struct {
	s *fakeStore
}

func (r fakeAdjustmentRepo) Create(ctx context.Context, adj model.InventoryAdjustment) (model.InventoryAdjustment, error) {
	adj.ID = r.s.newID()
	adj.CreatedAt = time.Now()
	r.s.adjustments = append(r.s.adjustments, adj)
	return adj, nil
}

func (r fakeAdjustmentRepo) ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.InventoryAdjustment, int64, error) {
	var all []model.InventoryAdjustment
	for _, adj := range r.s.adjustments {
		if adj.ProductID == productID {
			all = append(all, adj)
		}
	}

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []model.InventoryAdjustment{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

type fakeSequenceRepo struct {
	s *fakeStore
}

func (r fakeSequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	r.s.sequences[name]++
	return r.s.sequences[name], nil
}

type fakeUserRepo struct {
	s *fakeStore
}

func (r fakeUserRepo) FindByID(ctx context.Context, userID int64) (model.User, error) {
	u, ok := r.s.users[userID]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r fakeUserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (r fakeUserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = r.s.newID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return u, nil
}
