package memory

import "context"

type txKeyType struct{}

var txKey = txKeyType{}

func withTx(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, txKey, s)
}

func (s *Store) inTx(ctx context.Context) bool {
	v, ok := ctx.Value(txKey).(*Store)
	return ok && v == s
}

// lock takes the write lock unless ctx already runs inside RunInTx on s.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}
