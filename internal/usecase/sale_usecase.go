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

// Createのユニーク制約違反をWithinTxの外へ伝えるための内部センチネル。
var errIdempotencyRace = errors.New("idempotency key race")

type SaleUsecase struct {
	tx     repo.TransactionManager
	ledger *StockLedger
	seq    *SequenceGenerator
}

func NewSaleUsecase(tx repo.TransactionManager, ledger *StockLedger, seq *SequenceGenerator) *SaleUsecase {
	return &SaleUsecase{tx: tx, ledger: ledger, seq: seq}
}

type SaleLineInput struct {
	ProductID int64
	Quantity  int64
}

type CompleteSaleInput struct {
	CashierUserID  int64
	IdempotencyKey string
	Lines          []SaleLineInput
}

type SaleItemOutput struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	UnitPrice      int64  `json:"unit_price"`
	Quantity       int64  `json:"quantity"`
	RemainingStock int64  `json:"remaining_stock"`
}

type SaleOutput struct {
	ID         int64            `json:"id"`
	Number     string           `json:"number"`
	Status     string           `json:"status"`
	TotalPrice int64            `json:"total_price"`
	VoidReason string           `json:"void_reason,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	Items      []SaleItemOutput `json:"items"`
}

// CompleteSale は会計確定。明細全行の在庫減算＋取引作成を1トランザクションで行う。
// どれか1行でも在庫不足なら何も persist されない。
func (u *SaleUsecase) CompleteSale(ctx context.Context, in CompleteSaleInput) (SaleOutput, error) {
	if in.CashierUserID <= 0 {
		return SaleOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	if len(in.Lines) == 0 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "empty lines")
	}
	for _, line := range in.Lines {
		if line.ProductID <= 0 || line.Quantity <= 0 {
			return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid line")
		}
	}

	var (
		out       SaleOutput
		createErr error
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ取引を返す（在庫は二重に減らさない）
		existing, found, err := r.Transactions().FindByIdempotencyKey(ctx, key)
		if err != nil {
			return err
		}
		if found {
			items, err := r.TransactionItems().ListByTransactionID(ctx, existing.ID)
			if err != nil {
				return err
			}
			out = toSaleOutput(existing, items, nil)
			return nil
		}

		// 商品の存在・公開チェック
		products := make(map[int64]model.Product, len(in.Lines))
		for _, line := range in.Lines {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return err
			}
			products[line.ProductID] = p
		}

		number, err := u.seq.Next(ctx, r, SeqTransaction)
		if err != nil {
			return err
		}

		// Ledgerへは負のdeltaで一括適用
		entries := make([]LedgerEntry, 0, len(in.Lines))
		for _, line := range in.Lines {
			entries = append(entries, LedgerEntry{
				ProductID:  line.ProductID,
				Delta:      -line.Quantity,
				SourceKind: model.MutationSourceSale,
				SourceRef:  number,
			})
		}

		results, err := u.ledger.ApplyBatch(ctx, r, entries)
		if err != nil {
			return err
		}

		// 明細のスナップショットと合計
		items := make([]model.TransactionItem, 0, len(in.Lines))
		var total int64
		for _, line := range in.Lines {
			p := products[line.ProductID]
			items = append(items, model.TransactionItem{
				ProductID:           line.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            line.Quantity,
			})
			total += p.Price * line.Quantity
		}

		now := time.Now()
		transactionID, err := r.Transactions().Create(ctx, model.Transaction{
			Number:         number,
			CashierUserID:  in.CashierUserID,
			Status:         model.TransactionStatusCompleted,
			TotalPrice:     total,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			// 同じキーの同時INSERTに負けた可能性がある。ユニーク制約違反で
			// トランザクションは失効しているので、全体を巻き戻してから
			// 外側の新しいトランザクションで勝った方を引き直す。
			createErr = err
			return errIdempotencyRace
		}

		if err := r.TransactionItems().CreateBulk(ctx, transactionID, items); err != nil {
			return err
		}

		created := model.Transaction{
			ID:         transactionID,
			Number:     number,
			Status:     model.TransactionStatusCompleted,
			TotalPrice: total,
			CreatedAt:  now,
		}
		out = toSaleOutput(created, items, results)
		return nil
	})

	if errors.Is(err, errIdempotencyRace) {
		return u.findCompletedByKey(ctx, key, createErr)
	}
	if err != nil {
		return SaleOutput{}, err
	}
	return out, nil
}

// INSERTの競合で負けた側の引き直し。元のトランザクションはロールバック済み
// なので新しいトランザクションで検索する。見つからなければ競合以外の失敗
// だったとみなし、Createのエラーをそのまま返す。
func (u *SaleUsecase) findCompletedByKey(ctx context.Context, key string, createErr error) (SaleOutput, error) {
	var out SaleOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Transactions().FindByIdempotencyKey(ctx, key)
		if err != nil {
			return err
		}
		if !found {
			return createErr
		}
		items, err := r.TransactionItems().ListByTransactionID(ctx, existing.ID)
		if err != nil {
			return err
		}
		out = toSaleOutput(existing, items, nil)
		return nil
	})

	if err != nil {
		return SaleOutput{}, err
	}
	return out, nil
}

// VoidTransaction は確定済み取引の取消。
// 元の明細数量をそのまま正のdeltaで戻す（現在のカタログ状態は見ない）。
func (u *SaleUsecase) VoidTransaction(ctx context.Context, transactionID int64, reason string) (SaleOutput, error) {
	if transactionID <= 0 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	var out SaleOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Transactions().FindByID(ctx, transactionID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		// COMPLETED以外（VOIDED/REFUNDED/DRAFT）は取消できない
		if t.Status != model.TransactionStatusCompleted {
			return &AlreadyVoidedError{TransactionID: t.ID, Status: t.Status}
		}

		items, err := r.TransactionItems().ListByTransactionID(ctx, t.ID)
		if err != nil {
			return err
		}

		// 減算の鏡像を適用する。商品が非公開になっていても戻す。
		entries := make([]LedgerEntry, 0, len(items))
		for _, it := range items {
			entries = append(entries, LedgerEntry{
				ProductID:  it.ProductID,
				Delta:      it.Quantity,
				SourceKind: model.MutationSourceVoid,
				SourceRef:  t.Number,
			})
		}

		results, err := u.ledger.ApplyBatch(ctx, r, entries)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := r.Transactions().MarkVoided(ctx, t.ID, reason, now); err != nil {
			return err
		}

		t.Status = model.TransactionStatusVoided
		t.VoidReason = reason
		t.VoidedAt = &now
		out = toSaleOutput(t, items, results)
		return nil
	})

	if err != nil {
		return SaleOutput{}, err
	}
	return out, nil
}

func (u *SaleUsecase) GetTransaction(ctx context.Context, transactionID int64) (SaleOutput, error) {
	if transactionID <= 0 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out SaleOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Transactions().FindByID(ctx, transactionID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		items, err := r.TransactionItems().ListByTransactionID(ctx, t.ID)
		if err != nil {
			return err
		}

		out = toSaleOutput(t, items, nil)
		return nil
	})

	if err != nil {
		return SaleOutput{}, err
	}
	return out, nil
}

type SaleListOutput struct {
	Items []SaleOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *SaleUsecase) ListTransactions(ctx context.Context, page int, limit int) (SaleListOutput, error) {
	if page < 1 {
		return SaleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return SaleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out SaleListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		transactions, total, err := r.Transactions().List(ctx, page, limit)
		if err != nil {
			return err
		}

		items := make([]SaleOutput, 0, len(transactions))
		for _, t := range transactions {
			lines, err := r.TransactionItems().ListByTransactionID(ctx, t.ID)
			if err != nil {
				return err
			}
			items = append(items, toSaleOutput(t, lines, nil))
		}

		out = SaleListOutput{Items: items, Total: total, Page: page, Limit: limit}
		return nil
	})

	if err != nil {
		return SaleListOutput{}, err
	}
	return out, nil
}

// resultsはnil可。あれば商品ごとの適用後在庫を出力に載せる。
func toSaleOutput(t model.Transaction, items []model.TransactionItem, results []LedgerResult) SaleOutput {
	remaining := make(map[int64]int64, len(results))
	for _, res := range results {
		remaining[res.ProductID] = res.ResultingQuantity
	}

	outItems := make([]SaleItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, SaleItemOutput{
			ProductID:      it.ProductID,
			Name:           it.ProductNameSnapshot,
			UnitPrice:      it.UnitPriceSnapshot,
			Quantity:       it.Quantity,
			RemainingStock: remaining[it.ProductID],
		})
	}

	return SaleOutput{
		ID:         t.ID,
		Number:     t.Number,
		Status:     string(t.Status),
		TotalPrice: t.TotalPrice,
		VoidReason: t.VoidReason,
		CreatedAt:  t.CreatedAt,
		Items:      outItems,
	}
}
