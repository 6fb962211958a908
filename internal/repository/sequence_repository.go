package repository

import "context"

type SequenceRepository interface {
	// Next はnameごとのカウンタをアトミックに+1して返す。
	// 同時呼び出しでも重複しない。ロールバックで欠番は出る。
	Next(ctx context.Context, name string) (int64, error)
}
