package cache

import "strings"

// Namespaced scopes keys of a shared store under a fixed prefix.
type Namespaced struct {
	ns    string
	store Cache
}

// WithNamespace returns a view of store whose keys are prefixed with ns.
func WithNamespace(store Cache, ns string) *Namespaced {
	return &Namespaced{ns: ns, store: store}
}

// Namespace returns the namespace the view was created with.
func (n *Namespaced) Namespace() string {
	return n.ns
}

func (n *Namespaced) key(k string) string {
	var b strings.Builder
	b.Grow(len(n.ns) + 1 + len(k))
	b.WriteString(n.ns)
	b.WriteByte(':')
	b.WriteString(k)
	return b.String()
}

func (n *Namespaced) Get(key string) ([]byte, bool) {
	return n.store.Get(n.key(key))
}

func (n *Namespaced) Set(key string, value []byte) {
	n.store.Set(n.key(key), value)
}

func (n *Namespaced) Delete(key string) {
	n.store.Delete(n.key(key))
}

func (n *Namespaced) Contains(key string) bool {
	return n.store.Contains(n.key(key))
}

// Len reports the size of the shared store, not of the namespace.
func (n *Namespaced) Len() int {
	return n.store.Len()
}

// Close is a no-op: the shared store is owned by whoever created it.
func (n *Namespaced) Close() error {
	return nil
}
