package history

import "context"

// Repo 定义对会话记录的抽象操作
type Repo interface {
	SaveHand(ctx context.Context, rec HandRecord) error
	SaveShuffle(ctx context.Context, rec ShuffleRecord) error
	// Hands 按时间顺序返回最近 limit 条，limit <= 0 返回全部
	Hands(ctx context.Context, session string, limit int) ([]HandRecord, error)
	Shuffles(ctx context.Context, session string) ([]ShuffleRecord, error)
	// DeleteSession 删除会话的全部记录
	DeleteSession(ctx context.Context, session string) error
}

func tail[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		in = in[len(in)-limit:]
	}
	return in
}
