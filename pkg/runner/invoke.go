package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ethpandaops/testoor/pkg/suite"
)

// ErrTestTimeout is the failure of a test whose body did not settle in time.
var ErrTestTimeout = errors.New("test has timed out")

// PanicError is a recovered panic from a hook or a test body.
type PanicError struct {
	Value any
	Stack []byte
}

// Error returns the panic value stringified like any other failure.
func (p *PanicError) Error() string {
	return FailureMessage(p.Value)
}

// Unwrap returns the panic value when it is an error.
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}

	return nil
}

// FailureMessage turns a failure value into a report reason: errors give their
// message, strings are used as is, Stringers give String(), anything else is
// formatted with %v. An empty message becomes "<type> without message".
func FailureMessage(v any) string {
	var msg string

	switch x := v.(type) {
	case nil:
	case error:
		msg = x.Error()
	case string:
		msg = x
	case fmt.Stringer:
		msg = x.String()
	default:
		msg = fmt.Sprintf("%v", x)
	}

	if msg == "" {
		return fmt.Sprintf("<%T> without message", v)
	}

	return msg
}

// call runs fn and turns a panic into a *PanicError.
func call(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	return fn()
}

// invoke runs the body of t in its own goroutine and waits for it to settle or
// for timeout to elapse, whichever comes first. The body is handed a context
// that expires with the timeout but is never forcibly stopped.
func invoke(ctx context.Context, t *suite.Test, sc any, timeout time.Duration) (time.Duration, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	start := time.Now()

	go func() {
		done <- call(func() error { return t.Run(tctx, sc) })
	}()

	select {
	case err := <-done:
		elapsed := time.Since(start)

		// A body that gives up because its deadline passed timed out.
		if err != nil && errors.Is(err, context.DeadlineExceeded) && tctx.Err() != nil {
			return elapsed, ErrTestTimeout
		}

		return elapsed, err
	case <-tctx.Done():
		return time.Since(start), ErrTestTimeout
	}
}
