package usecase

import (
	"context"
	"sort"

	"pos/internal/domain/model"
	"pos/internal/infra/metrics"
	repo "pos/internal/repository"

	"go.uber.org/zap"
)

// LedgerEntry は1商品に対する符号付きの在庫変動。
type LedgerEntry struct {
	ProductID  int64
	Delta      int64
	SourceKind model.MutationSource
	SourceRef  string
}

type LedgerResult struct {
	ProductID         int64
	MutationID        int64
	ResultingQuantity int64
}

// StockLedger はquantity_in_stockの唯一の書き込み口。
// 商品の在庫はここ以外から変更しない。
type StockLedger struct {
	logger *zap.Logger
}

func NewStockLedger(logger *zap.Logger) *StockLedger {
	return &StockLedger{logger: logger}
}

// Apply は1件適用。呼び出し側のWithinTx内で実行すること。
func (l *StockLedger) Apply(ctx context.Context, r repo.TxRepos, e LedgerEntry) (LedgerResult, error) {
	results, err := l.ApplyBatch(ctx, r, []LedgerEntry{e})
	if err != nil {
		return LedgerResult{}, err
	}
	return results[0], nil
}

// ApplyBatch は複数行をall-or-nothingで適用する。
// 1行でも在庫が負になるなら何も書かずInsufficientStockErrorを返す。
// 行ロックは商品ID昇順で取る（複数商品バッチ同士のデッドロック防止）。
func (l *StockLedger) ApplyBatch(ctx context.Context, r repo.TxRepos, entries []LedgerEntry) ([]LedgerResult, error) {
	if len(entries) == 0 {
		return []LedgerResult{}, nil
	}

	// 対象商品をID昇順でロック
	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if !seen[e.ProductID] {
			seen[e.ProductID] = true
			ids = append(ids, e.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	current := make(map[int64]int64, len(ids))
	for _, id := range ids {
		p, err := r.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		current[id] = p.QuantityInStock
	}

	// 先に全行の不変条件を確認する
	running := make(map[int64]int64, len(ids))
	for id, q := range current {
		running[id] = q
	}

	var failed []InsufficientStockLine
	for _, e := range entries {
		if running[e.ProductID]+e.Delta < 0 {
			failed = append(failed, InsufficientStockLine{
				ProductID: e.ProductID,
				Requested: e.Delta,
				Available: running[e.ProductID],
			})
			continue
		}
		running[e.ProductID] += e.Delta
	}

	if len(failed) > 0 {
		for _, f := range failed {
			l.logger.Warn("stock apply rejected",
				zap.Int64("productId", f.ProductID),
				zap.Int64("delta", f.Requested),
				zap.Int64("available", f.Available),
			)
		}
		return nil, &InsufficientStockError{Lines: failed}
	}

	// 適用。監査行は1 entryにつき1行。
	for id, q := range current {
		running[id] = q
	}

	results := make([]LedgerResult, 0, len(entries))
	for _, e := range entries {
		running[e.ProductID] += e.Delta

		m, err := r.StockMutations().Create(ctx, model.StockMutation{
			ProductID:         e.ProductID,
			Delta:             e.Delta,
			ResultingQuantity: running[e.ProductID],
			SourceKind:        e.SourceKind,
			SourceRef:         e.SourceRef,
		})
		if err != nil {
			return nil, err
		}

		metrics.StockMutationCounter.WithLabelValues(string(e.SourceKind)).Inc()

		l.logger.Info("stock applied",
			zap.Int64("productId", e.ProductID),
			zap.Int64("delta", e.Delta),
			zap.Int64("quantity", running[e.ProductID]),
			zap.String("sourceKind", string(e.SourceKind)),
			zap.String("sourceRef", e.SourceRef),
		)

		results = append(results, LedgerResult{
			ProductID:         e.ProductID,
			MutationID:        m.ID,
			ResultingQuantity: running[e.ProductID],
		})
	}

	// 在庫数の書き込みは商品ごとに1回
	for _, id := range ids {
		if err := r.Products().UpdateQuantity(ctx, id, running[id]); err != nil {
			return nil, err
		}
	}

	return results, nil
}
