// Package hook abstracts host function interception.
//
// The core never patches code itself. It asks an Interceptor to wrap a named
// host function; the wrapper receives the original as a call-through handle
// and decides what to run before and after it.
package hook

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownSymbol is returned when a symbol has not been defined
var ErrUnknownSymbol = errors.New("hook: unknown symbol")

// Func is a host function. Arguments and the result are raw machine words.
type Func func(args ...uint64) uint64

// Wrapper builds a replacement for a host function from its original
type Wrapper func(orig Func) Func

// Interceptor installs wrappers at host symbols
type Interceptor interface {
	Install(symbol string, w Wrapper) error
}

// Table is an in-process symbol table. A host that routes its calls through
// Call can be instrumented by installing wrappers; wrappers installed later
// run outside earlier ones.
type Table struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{funcs: make(map[string]Func)}
}

// Define registers the original implementation of symbol
func (t *Table) Define(symbol string, fn Func) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.funcs[symbol] = fn
}

// Install wraps the current implementation of symbol
func (t *Table) Install(symbol string, w Wrapper) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	orig, ok := t.funcs[symbol]
	if !ok {
		return fmt.Errorf("install %q: %w", symbol, ErrUnknownSymbol)
	}
	t.funcs[symbol] = w(orig)
	return nil
}

// Call invokes symbol with args. Calling an undefined symbol returns 0.
func (t *Table) Call(symbol string, args ...uint64) uint64 {
	t.mu.RLock()
	fn, ok := t.funcs[symbol]
	t.mu.RUnlock()
	if !ok {
		return 0
	}
	return fn(args...)
}

// Arg returns args[i], or 0 when the caller passed fewer arguments
func Arg(args []uint64, i int) uint64 {
	if i < len(args) {
		return args[i]
	}
	return 0
}
