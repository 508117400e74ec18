package cradle

import "sync"

// Disposable marks instances that hold resources the container should release
// when their lifetime ends: scoped instances when their scope closes,
// singletons when the container closes.
//
// Transient instances constructed inside a scope are tracked by that scope;
// transients resolved directly from the container belong to the caller.
type Disposable interface {
	Close() error
}

// disposalList tracks disposable instances in construction order and
// releases them in reverse.
type disposalList struct {
	mu     sync.Mutex
	closed bool
	items  []Disposable
}

// track adds the instance if it is disposable. An instance tracked after
// dispose has already run, which happens when a resolution in flight finishes
// while its owner closes, is released immediately instead of leaking.
func (l *disposalList) track(instance any) {
	d, ok := instance.(Disposable)
	if !ok {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = d.Close()
		return
	}
	l.items = append(l.items, d)
	l.mu.Unlock()
}

// dispose closes all tracked instances in reverse construction order and
// aggregates any failures. The list is emptied regardless of errors.
func (l *disposalList) dispose(context string) error {
	l.mu.Lock()
	l.closed = true
	items := l.items
	l.items = nil
	l.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &DisposalError{Context: context, Errors: errs}
	}
	return nil
}

// closeQuietly disposes an instance that lost a construction race.
func closeQuietly(instance any) {
	if d, ok := instance.(Disposable); ok {
		_ = d.Close()
	}
}
