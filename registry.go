package influx

import "sync"

// Registry hands out exactly one shared Client per server URL, so the pooled
// transport behind each URL is shared and amortized across all callers.
// URLs are compared by exact string match. Entries live for the lifetime of
// the registry; there is no eviction.
type Registry struct {
	mu      sync.Mutex
	options Options
	clients map[string]*Client
}

// NewRegistry creates an empty Registry whose clients use default options.
func NewRegistry() *Registry {
	return NewRegistryWithOptions(*DefaultOptions())
}

// NewRegistryWithOptions creates an empty Registry whose clients use the
// given options.
func NewRegistryWithOptions(options Options) *Registry {
	return &Registry{options: options, clients: make(map[string]*Client)}
}

// GetClient returns the Client registered for serverURL, constructing and
// registering it on first use. Concurrent calls with the same URL observe
// exactly one construction. A construction failure registers nothing.
func (r *Registry) GetClient(serverURL string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[serverURL]; ok {
		return c, nil
	}
	c, err := NewClientWithOptions(serverURL, r.options)
	if err != nil {
		return nil, err
	}
	r.clients[serverURL] = c
	return c, nil
}

var defaultRegistry = NewRegistry()

// GetClient returns the process-wide shared Client for serverURL, backed by
// a default Registry with default options.
func GetClient(serverURL string) (*Client, error) {
	return defaultRegistry.GetClient(serverURL)
}
