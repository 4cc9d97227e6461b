package prefhook

import (
	"context"
	"fmt"
)

type funcHook struct {
	name string
	fn   func() Definitions
}

// HookFunc adapts a plain function returning definitions, the documented
// shape of the user preferences hook, to a Hook named after module.
func HookFunc(module string, fn func() Definitions) Hook {
	return &funcHook{name: module, fn: fn}
}

func (h *funcHook) Name() string {
	return h.name
}

func (h *funcHook) UserPreferences(ctx context.Context) (Definitions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.fn(), nil
}

type hookResult struct {
	defs Definitions
	err  error
}

// invokeHook calls h and turns returned errors, panics and an expired ctx
// into ErrHookFailed errors naming the module. A hook that ignores ctx keeps
// running in the background after invokeHook has returned.
func invokeHook(ctx context.Context, h Hook) (Definitions, error) {
	done := make(chan hookResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- hookResult{err: fmt.Errorf("%w: %s: panic: %v", ErrHookFailed, h.Name(), r)}
			}
		}()

		defs, err := h.UserPreferences(ctx)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrHookFailed, h.Name(), err)
			defs = nil
		}
		done <- hookResult{defs: defs, err: err}
	}()

	select {
	case res := <-done:
		return res.defs, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", ErrHookFailed, h.Name(), ctx.Err())
	}
}
