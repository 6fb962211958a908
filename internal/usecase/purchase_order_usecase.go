package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
)

type PurchaseOrderUsecase struct {
	tx     repo.TransactionManager
	ledger *StockLedger
	seq    *SequenceGenerator
}

func NewPurchaseOrderUsecase(tx repo.TransactionManager, ledger *StockLedger, seq *SequenceGenerator) *PurchaseOrderUsecase {
	return &PurchaseOrderUsecase{tx: tx, ledger: ledger, seq: seq}
}

type PurchaseOrderItemInput struct {
	ProductID       int64
	QuantityOrdered int64
	UnitCost        int64
}

type CreatePurchaseOrderInput struct {
	VendorID        int64
	CreatedByUserID int64
	ShippingCost    int64
	Notes           string
	Items           []PurchaseOrderItemInput
}

type ReceiveLineInput struct {
	ItemID   int64
	Quantity int64
	Notes    string
}

type PurchaseOrderItemOutput struct {
	ID               int64  `json:"id"`
	ProductID        int64  `json:"product_id"`
	Name             string `json:"name"`
	QuantityOrdered  int64  `json:"quantity_ordered"`
	QuantityReceived int64  `json:"quantity_received"`
	UnitCost         int64  `json:"unit_cost"`
	StockAfter       int64  `json:"stock_after,omitempty"`
}

type PurchaseOrderOutput struct {
	ID           int64                     `json:"id"`
	Number       string                    `json:"number"`
	VendorID     int64                     `json:"vendor_id"`
	Status       string                    `json:"status"`
	ShippingCost int64                     `json:"shipping_cost"`
	Notes        string                    `json:"notes,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	Items        []PurchaseOrderItemOutput `json:"items"`
}

// CreatePurchaseOrder は発注の起票。DRAFTで始まる。
func (u *PurchaseOrderUsecase) CreatePurchaseOrder(ctx context.Context, in CreatePurchaseOrderInput) (PurchaseOrderOutput, error) {
	if in.CreatedByUserID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.VendorID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid vendor_id")
	}
	if len(in.Items) == 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "empty items")
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 || item.QuantityOrdered <= 0 || item.UnitCost < 0 {
			return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}
	if in.ShippingCost < 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_cost")
	}

	var out PurchaseOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		vendor, err := r.Vendors().FindByID(ctx, in.VendorID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && !vendor.IsActive) {
			return NewHTTPError(http.StatusBadRequest, "invalid vendor")
		}
		if err != nil {
			return err
		}

		// 商品の存在チェックと名前のスナップショット
		items := make([]model.PurchaseOrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			p, err := r.Products().FindByID(ctx, item.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return err
			}
			items = append(items, model.PurchaseOrderItem{
				ProductID:           item.ProductID,
				ProductNameSnapshot: p.Name,
				QuantityOrdered:     item.QuantityOrdered,
				UnitCost:            item.UnitCost,
			})
		}

		number, err := u.seq.Next(ctx, r, SeqPurchaseOrder)
		if err != nil {
			return err
		}

		now := time.Now()
		poID, err := r.PurchaseOrders().Create(ctx, model.PurchaseOrder{
			Number:          number,
			VendorID:        in.VendorID,
			Status:          model.PurchaseOrderStatusDraft,
			ShippingCost:    in.ShippingCost,
			Notes:           strings.TrimSpace(in.Notes),
			CreatedByUserID: in.CreatedByUserID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		if err := r.PurchaseOrderItems().CreateBulk(ctx, poID, items); err != nil {
			return err
		}

		created := model.PurchaseOrder{
			ID:           poID,
			Number:       number,
			VendorID:     in.VendorID,
			Status:       model.PurchaseOrderStatusDraft,
			ShippingCost: in.ShippingCost,
			Notes:        strings.TrimSpace(in.Notes),
			CreatedAt:    now,
		}
		out = toPurchaseOrderOutput(created, items, nil)
		return nil
	})

	if err != nil {
		return PurchaseOrderOutput{}, err
	}
	return out, nil
}

func (u *PurchaseOrderUsecase) SubmitPurchaseOrder(ctx context.Context, poID int64) (PurchaseOrderOutput, error) {
	return u.transition(ctx, poID,
		[]model.PurchaseOrderStatus{model.PurchaseOrderStatusDraft},
		model.PurchaseOrderStatusSubmitted)
}

func (u *PurchaseOrderUsecase) ApprovePurchaseOrder(ctx context.Context, poID int64) (PurchaseOrderOutput, error) {
	return u.transition(ctx, poID,
		[]model.PurchaseOrderStatus{model.PurchaseOrderStatusSubmitted},
		model.PurchaseOrderStatusApproved)
}

func (u *PurchaseOrderUsecase) ClosePurchaseOrder(ctx context.Context, poID int64) (PurchaseOrderOutput, error) {
	return u.transition(ctx, poID,
		[]model.PurchaseOrderStatus{model.PurchaseOrderStatusReceived},
		model.PurchaseOrderStatusClosed)
}

// CancelPurchaseOrder は受領が一度でも始まった発注には使えない。
// 受け取った在庫の巻き戻しは扱わない。
func (u *PurchaseOrderUsecase) CancelPurchaseOrder(ctx context.Context, poID int64) (PurchaseOrderOutput, error) {
	return u.transition(ctx, poID,
		[]model.PurchaseOrderStatus{
			model.PurchaseOrderStatusDraft,
			model.PurchaseOrderStatusSubmitted,
			model.PurchaseOrderStatusApproved,
		},
		model.PurchaseOrderStatusCanceled)
}

func (u *PurchaseOrderUsecase) transition(ctx context.Context, poID int64, from []model.PurchaseOrderStatus, to model.PurchaseOrderStatus) (PurchaseOrderOutput, error) {
	if poID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out PurchaseOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.PurchaseOrders().FindByID(ctx, poID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		allowed := false
		for _, s := range from {
			if po.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return &InvalidTransitionError{
				Entity: "purchase_order",
				From:   string(po.Status),
				To:     string(to),
			}
		}

		if err := r.PurchaseOrders().UpdateStatus(ctx, po.ID, to); err != nil {
			return err
		}

		items, err := r.PurchaseOrderItems().ListByPurchaseOrderID(ctx, po.ID)
		if err != nil {
			return err
		}

		po.Status = to
		out = toPurchaseOrderOutput(po, items, nil)
		return nil
	})

	if err != nil {
		return PurchaseOrderOutput{}, err
	}
	return out, nil
}

// ReceivePurchaseOrder は入荷の記録。部分入荷を何度でも受けられる。
// 冪等ではない：1回の呼び出しが1回の物理的な入荷。同じ入荷を再送しないのは呼び出し側の責任。
// Ledgerへは今回新しく受けた数だけを渡す（累計を渡すと二重計上になる）。
func (u *PurchaseOrderUsecase) ReceivePurchaseOrder(ctx context.Context, poID int64, lines []ReceiveLineInput) (PurchaseOrderOutput, error) {
	if poID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if len(lines) == 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "empty lines")
	}
	for _, line := range lines {
		if line.ItemID <= 0 || line.Quantity <= 0 {
			return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid line")
		}
	}

	var out PurchaseOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.PurchaseOrders().FindByID(ctx, poID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		if po.Status != model.PurchaseOrderStatusApproved &&
			po.Status != model.PurchaseOrderStatusPartiallyReceived {
			return &InvalidTransitionError{
				Entity: "purchase_order",
				From:   string(po.Status),
				To:     string(model.PurchaseOrderStatusPartiallyReceived),
			}
		}

		items, err := r.PurchaseOrderItems().ListByPurchaseOrderID(ctx, po.ID)
		if err != nil {
			return err
		}
		itemsByID := make(map[int64]model.PurchaseOrderItem, len(items))
		for _, it := range items {
			itemsByID[it.ID] = it
		}

		// 全行を先に検証：存在・発注数超過
		for _, line := range lines {
			it, ok := itemsByID[line.ItemID]
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "invalid item_id")
			}
			if it.QuantityReceived+line.Quantity > it.QuantityOrdered {
				return &OverReceiptError{
					ItemID:          it.ID,
					ProductID:       it.ProductID,
					QuantityOrdered: it.QuantityOrdered,
					AlreadyReceived: it.QuantityReceived,
					Receiving:       line.Quantity,
				}
			}
		}

		// 今回新しく受けた数だけをLedgerへ
		entries := make([]LedgerEntry, 0, len(lines))
		for _, line := range lines {
			it := itemsByID[line.ItemID]
			entries = append(entries, LedgerEntry{
				ProductID:  it.ProductID,
				Delta:      line.Quantity,
				SourceKind: model.MutationSourcePOReceipt,
				SourceRef:  po.Number,
			})
		}

		results, err := u.ledger.ApplyBatch(ctx, r, entries)
		if err != nil {
			return err
		}

		// 受領数の加算。条件付きUPDATEが超過をもう一度守る。
		for _, line := range lines {
			ok, err := r.PurchaseOrderItems().AddReceived(ctx, line.ItemID, line.Quantity, strings.TrimSpace(line.Notes))
			if err != nil {
				return err
			}
			if !ok {
				it := itemsByID[line.ItemID]
				return &OverReceiptError{
					ItemID:          it.ID,
					ProductID:       it.ProductID,
					QuantityOrdered: it.QuantityOrdered,
					AlreadyReceived: it.QuantityReceived,
					Receiving:       line.Quantity,
				}
			}
		}

		// statusの再計算。全item満了ならRECEIVED、進捗ありならPARTIALLY_RECEIVED。
		// statusが後退することはない。
		updated, err := r.PurchaseOrderItems().ListByPurchaseOrderID(ctx, po.ID)
		if err != nil {
			return err
		}
		allFull := true
		for _, it := range updated {
			if !it.FullyReceived() {
				allFull = false
				break
			}
		}

		next := model.PurchaseOrderStatusPartiallyReceived
		if allFull {
			next = model.PurchaseOrderStatusReceived
		}
		if err := r.PurchaseOrders().UpdateStatus(ctx, po.ID, next); err != nil {
			return err
		}

		po.Status = next
		out = toPurchaseOrderOutput(po, updated, results)
		return nil
	})

	if err != nil {
		return PurchaseOrderOutput{}, err
	}
	return out, nil
}

func (u *PurchaseOrderUsecase) GetPurchaseOrder(ctx context.Context, poID int64) (PurchaseOrderOutput, error) {
	if poID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out PurchaseOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.PurchaseOrders().FindByID(ctx, poID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		items, err := r.PurchaseOrderItems().ListByPurchaseOrderID(ctx, po.ID)
		if err != nil {
			return err
		}

		out = toPurchaseOrderOutput(po, items, nil)
		return nil
	})

	if err != nil {
		return PurchaseOrderOutput{}, err
	}
	return out, nil
}

type PurchaseOrderListOutput struct {
	Items []PurchaseOrderOutput `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func (u *PurchaseOrderUsecase) ListPurchaseOrders(ctx context.Context, page int, limit int, status string) (PurchaseOrderListOutput, error) {
	if page < 1 {
		return PurchaseOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return PurchaseOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out PurchaseOrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.PurchaseOrders().List(ctx, repo.PurchaseOrderListQuery{
			Page:   page,
			Limit:  limit,
			Status: model.PurchaseOrderStatus(status),
		})
		if err != nil {
			return err
		}

		items := make([]PurchaseOrderOutput, 0, len(orders))
		for _, po := range orders {
			lines, err := r.PurchaseOrderItems().ListByPurchaseOrderID(ctx, po.ID)
			if err != nil {
				return err
			}
			items = append(items, toPurchaseOrderOutput(po, lines, nil))
		}

		out = PurchaseOrderListOutput{Items: items, Total: total, Page: page, Limit: limit}
		return nil
	})

	if err != nil {
		return PurchaseOrderListOutput{}, err
	}
	return out, nil
}

// resultsはnil可。あれば商品ごとの適用後在庫を出力に載せる。
func toPurchaseOrderOutput(po model.PurchaseOrder, items []model.PurchaseOrderItem, results []LedgerResult) PurchaseOrderOutput {
	stockAfter := make(map[int64]int64, len(results))
	for _, res := range results {
		stockAfter[res.ProductID] = res.ResultingQuantity
	}

	outItems := make([]PurchaseOrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, PurchaseOrderItemOutput{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Name:             it.ProductNameSnapshot,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			UnitCost:         it.UnitCost,
			StockAfter:       stockAfter[it.ProductID],
		})
	}

	return PurchaseOrderOutput{
		ID:           po.ID,
		Number:       po.Number,
		VendorID:     po.VendorID,
		Status:       string(po.Status),
		ShippingCost: po.ShippingCost,
		Notes:        po.Notes,
		CreatedAt:    po.CreatedAt,
		Items:        outItems,
	}
}
