package cart

import "sync"

// Registry holds one cart per signed-in customer for the lifetime of the process.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// Get returns the cart of uid, creating it on first use.
func (r *Registry) Get(uid string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[uid]
	if !ok {
		c = New()
		r.carts[uid] = c
	}
	return c
}

// Drop discards the cart of uid.
func (r *Registry) Drop(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, uid)
}
