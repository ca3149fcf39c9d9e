package dashboard

import "sync"

// requestTokens issues a monotonically increasing token per category. A
// response is applied only while its token is still the latest one issued
// for that category.
type requestTokens struct {
	mu     sync.Mutex
	latest map[Category]uint64
}

func newRequestTokens() *requestTokens {
	return &requestTokens{latest: make(map[Category]uint64)}
}

// issue invalidates every earlier token for c and returns the new one.
func (t *requestTokens) issue(c Category) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[c]++
	return t.latest[c]
}

func (t *requestTokens) current(c Category, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[c] == token
}
