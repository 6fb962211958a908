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

type AdjustmentUsecase struct {
	tx     repo.TransactionManager
	ledger *StockLedger
	seq    *SequenceGenerator
}

func NewAdjustmentUsecase(tx repo.TransactionManager, ledger *StockLedger, seq *SequenceGenerator) *AdjustmentUsecase {
	return &AdjustmentUsecase{tx: tx, ledger: ledger, seq: seq}
}

type AdjustInput struct {
	ProductID       int64
	Type            model.AdjustmentType
	Delta           int64
	Reason          string
	Notes           string
	CreatedByUserID int64
}

type AdjustmentOutput struct {
	ID             int64     `json:"id"`
	Number         string    `json:"number"`
	ProductID      int64     `json:"product_id"`
	Type           string    `json:"type"`
	Delta          int64     `json:"delta"`
	Reason         string    `json:"reason"`
	Notes          string    `json:"notes,omitempty"`
	RemainingStock int64     `json:"remaining_stock"`
	CreatedAt      time.Time `json:"created_at"`
}

// Adjust は手動在庫調整。Ledger適用と調整履歴の作成は1トランザクション。
// 負の調整は在庫0までしか下げられない。
func (u *AdjustmentUsecase) Adjust(ctx context.Context, in AdjustInput) (AdjustmentOutput, error) {
	if in.CreatedByUserID <= 0 {
		return AdjustmentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return AdjustmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if !model.ValidAdjustmentType(in.Type) {
		return AdjustmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid type")
	}
	if in.Delta == 0 {
		return AdjustmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid delta")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return AdjustmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	var out AdjustmentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 調整は生きている商品にのみ。Ledgerの行ロックは削除済みの行も
		// 引くので、ここで存在チェックする。
		if _, err := r.Products().FindByID(ctx, in.ProductID); errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		} else if err != nil {
			return err
		}

		number, err := u.seq.Next(ctx, r, SeqAdjustment)
		if err != nil {
			return err
		}

		result, err := u.ledger.Apply(ctx, r, LedgerEntry{
			ProductID:  in.ProductID,
			Delta:      in.Delta,
			SourceKind: model.MutationSourceAdjustment,
			SourceRef:  number,
		})
		if err != nil {
			return err
		}

		adj, err := r.Adjustments().Create(ctx, model.InventoryAdjustment{
			Number:          number,
			ProductID:       in.ProductID,
			Type:            in.Type,
			Delta:           in.Delta,
			Reason:          reason,
			Notes:           strings.TrimSpace(in.Notes),
			CreatedByUserID: in.CreatedByUserID,
		})
		if err != nil {
			return err
		}

		out = AdjustmentOutput{
			ID:             adj.ID,
			Number:         adj.Number,
			ProductID:      adj.ProductID,
			Type:           string(adj.Type),
			Delta:          adj.Delta,
			Reason:         adj.Reason,
			Notes:          adj.Notes,
			RemainingStock: result.ResultingQuantity,
			CreatedAt:      adj.CreatedAt,
		}
		return nil
	})

	if err != nil {
		return AdjustmentOutput{}, err
	}
	return out, nil
}

type AdjustmentListOutput struct {
	Items []AdjustmentOutput `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

func (u *AdjustmentUsecase) ListAdjustments(ctx context.Context, productID int64, page int, limit int) (AdjustmentListOutput, error) {
	if productID <= 0 {
		return AdjustmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if page < 1 {
		return AdjustmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AdjustmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out AdjustmentListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		adjustments, total, err := r.Adjustments().ListByProductID(ctx, productID, page, limit)
		if err != nil {
			return err
		}

		items := make([]AdjustmentOutput, 0, len(adjustments))
		for _, adj := range adjustments {
			items = append(items, AdjustmentOutput{
				ID:        adj.ID,
				Number:    adj.Number,
				ProductID: adj.ProductID,
				Type:      string(adj.Type),
				Delta:     adj.Delta,
				Reason:    adj.Reason,
				Notes:     adj.Notes,
				CreatedAt: adj.CreatedAt,
			})
		}

		out = AdjustmentListOutput{Items: items, Total: total, Page: page, Limit: limit}
		return nil
	})

	if err != nil {
		return AdjustmentListOutput{}, err
	}
	return out, nil
}
