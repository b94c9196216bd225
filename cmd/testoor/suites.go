package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethpandaops/testoor/pkg/suite"
)

// calculator is the shared context of the arithmetic suites.
type calculator struct {
	mu      sync.Mutex
	memory  int
	entries int
}

func (c *calculator) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = 0
}

func (c *calculator) store(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = v
	c.entries++
}

func (c *calculator) recall() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.memory
}

// Suites returns the suites of the demo binary.
func Suites() *suite.Suite {
	return suite.New("testoor").
		Add(arithmetic()).
		Add(stringsSuite()).
		Add(timing())
}

// memoryBase holds the memory tests shared by every calculator suite.
func memoryBase() *suite.Suite {
	return suite.New("Memory").
		BeforeEach(suite.Hook(func(_ context.Context, c *calculator) error {
			c.reset()

			return nil
		})).
		Test("store and recall", suite.Body(func(_ context.Context, c *calculator) error {
			c.store(42)

			if got := c.recall(); got != 42 {
				return fmt.Errorf("recall = %d, want 42", got)
			}

			return nil
		})).
		Test("starts empty", suite.Body(func(_ context.Context, c *calculator) error {
			if got := c.recall(); got != 0 {
				return fmt.Errorf("recall = %d, want 0", got)
			}

			return nil
		}))
}

func arithmetic() *suite.Suite {
	add := func(_ context.Context, _ *calculator, args ...any) error {
		a, b, want := args[0].(int), args[1].(int), args[2].(int)
		if got := a + b; got != want {
			return fmt.Errorf("%d + %d = %d, want %d", a, b, got, want)
		}

		return nil
	}

	return suite.New("Arithmetic", suite.WithContext(&calculator{})).
		Extend(memoryBase()).
		AfterAll(suite.Hook(func(_ context.Context, c *calculator) error {
			if c.entries == 0 {
				return errors.New("memory was never used")
			}

			return nil
		})).
		Test("add", suite.BodyArgs(add), suite.WithCases(
			suite.Case{Name: "zero", Args: []any{0, 0, 0}},
			suite.Case{Name: "positive", Args: []any{2, 2, 4}},
			suite.Case{Name: "negative", Args: []any{-3, 1, -2}},
		)).
		XTest("divide by zero", suite.Body(func(context.Context, *calculator) error {
			return errors.New("division by zero is not supported yet")
		}))
}

func stringsSuite() *suite.Suite {
	return suite.New("Strings").
		Add(suite.New("Split").
			Test("comma", func(context.Context, any, ...any) error {
				if got := strings.Split("a,b,c", ","); len(got) != 3 {
					return fmt.Errorf("split into %d parts, want 3", len(got))
				}

				return nil
			}).
			Test("empty", func(context.Context, any, ...any) error {
				if got := strings.Split("", ","); len(got) != 1 {
					return fmt.Errorf("split into %d parts, want 1", len(got))
				}

				return nil
			})).
		Add(suite.New("Fields").
			Test("whitespace", func(context.Context, any, ...any) error {
				if got := strings.Fields("  a \t b\n"); len(got) != 2 {
					return fmt.Errorf("got %d fields, want 2", len(got))
				}

				return nil
			}))
}

func timing() *suite.Suite {
	return suite.New("Timing").
		Test("honors the deadline", func(ctx context.Context, _ any, _ ...any) error {
			select {
			case <-time.After(10 * time.Millisecond):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}, suite.WithTimeout(time.Second))
}
