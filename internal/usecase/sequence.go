package usecase

import (
	"context"
	"fmt"

	repo "pos/internal/repository"
)

// 採番の系列名
const (
	SeqTransaction   = "transaction"
	SeqPurchaseOrder = "purchase_order"
	SeqAdjustment    = "adjustment"
)

var seqPrefixes = map[string]string{
	SeqTransaction:   "TXN",
	SeqPurchaseOrder: "PO",
	SeqAdjustment:    "ADJ",
}

// SequenceGenerator は人間可読の連番（TXN-000001など）を発行する。
type SequenceGenerator struct{}

func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// Next は呼び出し側のWithinTx内で使う。ロールバックされた番号は欠番になる。
func (g *SequenceGenerator) Next(ctx context.Context, r repo.TxRepos, name string) (string, error) {
	prefix, ok := seqPrefixes[name]
	if !ok {
		return "", fmt.Errorf("unknown sequence: %s", name)
	}

	value, err := r.Sequences().Next(ctx, name)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%06d", prefix, value), nil
}
