// Package pipeline holds the ordered "first match wins" dispatcher that the
// bot uses for interactions, HTTP actions and management sub-commands.
package pipeline

// Action is the deferred work produced by a Handler that accepted its args.
type Action[R any] func() (R, error)

// Handler inspects args and either declines (returns nil) or returns the
// Action to run. Handlers must not do their real work before returning.
type Handler[A any, R any] func(args A) Action[R]

type Chain[A any, R any] struct {
	handlers []Handler[A, R]
	fallback Handler[A, R]
}

// New creates an empty chain. fallback may be nil.
func New[A any, R any](fallback Handler[A, R]) *Chain[A, R] {
	return &Chain[A, R]{fallback: fallback}
}

// Add appends h. Adding the same handler twice creates two entries.
func (c *Chain[A, R]) Add(h Handler[A, R]) {
	c.handlers = append(c.handlers, h)
}

// Len reports the number of registered handlers, fallback excluded.
func (c *Chain[A, R]) Len() int {
	return len(c.handlers)
}

// GetHandler returns the action of the first handler, in add order, that
// accepts args. When every handler declines, the fallback (if any) is asked
// and its action returned, which may itself be nil.
func (c *Chain[A, R]) GetHandler(args A) Action[R] {
	for _, h := range c.handlers {
		if action := h(args); action != nil {
			return action
		}
	}
	if c.fallback != nil {
		return c.fallback(args)
	}
	return nil
}

// Handle resolves and runs the action for args. handled is false only when
// nothing, fallback included, produced an action.
func (c *Chain[A, R]) Handle(args A) (result R, handled bool, err error) {
	action := c.GetHandler(args)
	if action == nil {
		return result, false, nil
	}
	result, err = action()
	return result, true, err
}
