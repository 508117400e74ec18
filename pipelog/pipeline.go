// Package pipelog is a small filter/handler logging pipeline. A message is
// delivered to every handler if and only if it matches every filter; handler
// failures are collected but never stop the fan-out.
package pipelog

import "errors"

// Pipeline routes messages through filters to handlers.
type Pipeline struct {
	filters  []Filter
	handlers []Handler
}

// New creates a pipeline. With no filters every message is delivered.
func New(filters []Filter, handlers []Handler) *Pipeline {
	return &Pipeline{filters: filters, handlers: handlers}
}

// Log delivers the message to all handlers if every filter matches. A
// message rejected by a filter is dropped silently. Handler errors are
// joined and returned after every handler has been given the message.
func (p *Pipeline) Log(text string) error {
	for _, f := range p.filters {
		if !f.Match(text) {
			return nil
		}
	}

	var errs []error
	for _, h := range p.handlers {
		if err := h.Handle(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
