package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	StockMutations() StockMutationRepository
	Transactions() TransactionRepository
	TransactionItems() TransactionItemRepository
	Vendors() VendorRepository
	PurchaseOrders() PurchaseOrderRepository
	PurchaseOrderItems() PurchaseOrderItemRepository
	Adjustments() AdjustmentRepository
	Sequences() SequenceRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全てロールバックされる。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
