package cradle

import (
	"reflect"
	"sync"
)

// instanceCache provides thread-safe caching of constructed instances,
// keyed by service type. Entries are inserted at most once per key.
type instanceCache struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
}

func newInstanceCache() *instanceCache {
	return &instanceCache{instances: make(map[reflect.Type]any)}
}

func (c *instanceCache) get(serviceType reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	instance, ok := c.instances[serviceType]
	return instance, ok
}

// setIfAbsent stores the instance unless another one is already cached for
// the type. It returns the retained instance and whether the caller's
// instance lost a concurrent first-construction race.
func (c *instanceCache) setIfAbsent(serviceType reflect.Type, instance any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.instances[serviceType]; ok {
		return existing, true
	}
	c.instances[serviceType] = instance
	return instance, false
}
