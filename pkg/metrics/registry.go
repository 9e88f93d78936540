package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	enabled  atomic.Bool
)

// InitRegistry installs reg as the registry every prometheus-backed
// metrics constructor in this module registers its collectors against,
// and marks metrics as enabled. Call it once at process startup before
// constructing any *prometheus.XxxMetrics; calling it again replaces the
// registry.
func InitRegistry(reg *prometheus.Registry) {
	mu.Lock()
	registry = reg
	mu.Unlock()
	enabled.Store(true)
}

// GetRegistry returns the registry installed by InitRegistry, or a new,
// unshared registry on each call if InitRegistry was never called.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		return prometheus.NewRegistry()
	}
	return registry
}

// IsEnabled reports whether InitRegistry has been called. Metrics
// constructors use this to return nil instead of registering
// collectors, so callers get zero-overhead no-ops until metrics are
// explicitly turned on.
func IsEnabled() bool {
	return enabled.Load()
}
