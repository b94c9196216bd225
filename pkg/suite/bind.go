package suite

import (
	"context"
	"fmt"
)

// Body adapts a function taking a typed suite context into a TestFunc.
//
//	s := suite.New("Math", suite.WithContext(&calc{}))
//	s.Test("add", suite.Body(func(ctx context.Context, c *calc) error { ... }))
func Body[C any](fn func(ctx context.Context, c C) error) TestFunc {
	return func(ctx context.Context, sc any, _ ...any) error {
		c, err := contextAs[C](sc)
		if err != nil {
			return err
		}

		return fn(ctx, c)
	}
}

// BodyArgs is Body for tests registered with arguments or cases.
func BodyArgs[C any](fn func(ctx context.Context, c C, args ...any) error) TestFunc {
	return func(ctx context.Context, sc any, args ...any) error {
		c, err := contextAs[C](sc)
		if err != nil {
			return err
		}

		return fn(ctx, c, args...)
	}
}

// Hook adapts a function taking a typed suite context into a HookFunc.
func Hook[C any](fn func(ctx context.Context, c C) error) HookFunc {
	return func(ctx context.Context, sc any) error {
		c, err := contextAs[C](sc)
		if err != nil {
			return err
		}

		return fn(ctx, c)
	}
}

// contextAs converts sc to C. A nil sc yields the zero value of C.
func contextAs[C any](sc any) (C, error) {
	var zero C

	if sc == nil {
		return zero, nil
	}

	c, ok := sc.(C)
	if !ok {
		return zero, fmt.Errorf("suite context is %T, not %T", sc, zero)
	}

	return c, nil
}
