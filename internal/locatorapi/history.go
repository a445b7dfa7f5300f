package locatorapi

import (
	"net/url"
	"sync"
)

// pageHistory is the URL history of a server-side session.
type pageHistory struct {
	mu      sync.Mutex
	current *url.URL
	pushes  int
}

func newPageHistory(u *url.URL) *pageHistory {
	return &pageHistory{current: u}
}

func (h *pageHistory) Current() *url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	u := *h.current
	return &u
}

func (h *pageHistory) Push(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := *u
	h.current = &next
	h.pushes++
}

func (h *pageHistory) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.String()
}
