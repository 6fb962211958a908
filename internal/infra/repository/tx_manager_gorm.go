package repository

import (
	"context"

	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products           repo.ProductRepository
	stockMutations     repo.StockMutationRepository
	transactions       repo.TransactionRepository
	transactionItems   repo.TransactionItemRepository
	vendors            repo.VendorRepository
	purchaseOrders     repo.PurchaseOrderRepository
	purchaseOrderItems repo.PurchaseOrderItemRepository
	adjustments        repo.AdjustmentRepository
	sequences          repo.SequenceRepository
}

func (r *txReposGorm) Products() repo.ProductRepository                     { return r.products }
func (r *txReposGorm) StockMutations() repo.StockMutationRepository         { return r.stockMutations }
func (r *txReposGorm) Transactions() repo.TransactionRepository             { return r.transactions }
func (r *txReposGorm) TransactionItems() repo.TransactionItemRepository     { return r.transactionItems }
func (r *txReposGorm) Vendors() repo.VendorRepository                       { return r.vendors }
func (r *txReposGorm) PurchaseOrders() repo.PurchaseOrderRepository         { return r.purchaseOrders }
func (r *txReposGorm) PurchaseOrderItems() repo.PurchaseOrderItemRepository { return r.purchaseOrderItems }
func (r *txReposGorm) Adjustments() repo.AdjustmentRepository               { return r.adjustments }
func (r *txReposGorm) Sequences() repo.SequenceRepository                   { return r.sequences }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			products:           NewProductGormRepository(tx),
			stockMutations:     NewStockMutationGormRepository(tx),
			transactions:       NewTransactionGormRepository(tx),
			transactionItems:   NewTransactionItemGormRepository(tx),
			vendors:            NewVendorGormRepository(tx),
			purchaseOrders:     NewPurchaseOrderGormRepository(tx),
			purchaseOrderItems: NewPurchaseOrderItemGormRepository(tx),
			adjustments:        NewAdjustmentGormRepository(tx),
			sequences:          NewSequenceGormRepository(tx),
		}
		return fn(r)
	})
}
