package provider

import "sync"

// Hub fans provider events out to subscribed handlers. Implementations embed
// it to satisfy the subscription half of the Provider interface.
type Hub struct {
	mu       sync.Mutex
	nextID   int
	accounts map[int]func([]string)
	chains   map[int]func(string)
}

type hubSub struct {
	release func()
	once    sync.Once
}

func (s *hubSub) Unsubscribe() {
	s.once.Do(s.release)
}

// SubscribeAccountsChanged registers a handler for account-list changes.
func (h *Hub) SubscribeAccountsChanged(fn func(accounts []string)) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.accounts == nil {
		h.accounts = make(map[int]func([]string))
	}
	id := h.nextID
	h.nextID++
	h.accounts[id] = fn

	return &hubSub{release: func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.accounts, id)
	}}
}

// SubscribeChainChanged registers a handler for chain-id changes.
func (h *Hub) SubscribeChainChanged(fn func(chainID string)) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.chains == nil {
		h.chains = make(map[int]func(string))
	}
	id := h.nextID
	h.nextID++
	h.chains[id] = fn

	return &hubSub{release: func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.chains, id)
	}}
}

// EmitAccountsChanged delivers an account-list change to all handlers.
// Handlers run on the caller's goroutine, one after another.
func (h *Hub) EmitAccountsChanged(accounts []string) {
	for _, fn := range h.accountHandlers() {
		fn(accounts)
	}
}

// EmitChainChanged delivers a chain-id change to all handlers.
func (h *Hub) EmitChainChanged(chainID string) {
	for _, fn := range h.chainHandlers() {
		fn(chainID)
	}
}

func (h *Hub) accountHandlers() []func([]string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fns := make([]func([]string), 0, len(h.accounts))
	for _, fn := range h.accounts {
		fns = append(fns, fn)
	}
	return fns
}

func (h *Hub) chainHandlers() []func(string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fns := make([]func(string), 0, len(h.chains))
	for _, fn := range h.chains {
		fns = append(fns, fn)
	}
	return fns
}
