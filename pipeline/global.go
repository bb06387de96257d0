package pipeline

import (
	"context"
	"sync"

	"github.com/xping/xping-go/config"
)

// Test-framework hooks often have no dependency-injection entry point:
// a per-test wrapper cannot thread a *Context through the framework's
// own plumbing. The global accessor exists for exactly that case, with
// an explicit reset contract for test isolation. Code that can inject a
// Context should; this is the fallback, not the front door.

var (
	globalMu  sync.Mutex
	globalCtx *Context
)

// InitGlobal composes the process-wide pipeline from the given
// configuration. A second call returns the existing instance unchanged;
// call ResetGlobal first to recompose.
func InitGlobal(cfg *config.Config, opts ...Option) *Context {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalCtx == nil {
		globalCtx = New(cfg, opts...)
	}
	return globalCtx
}

// Global returns the process-wide pipeline, or nil if InitGlobal has not
// been called.
func Global() *Context {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalCtx
}

// ResetGlobal closes and discards the process-wide pipeline. Used between
// independent in-process run simulations; every InitGlobal in a test
// should be paired with a deferred ResetGlobal.
func ResetGlobal() {
	globalMu.Lock()
	ctx := globalCtx
	globalCtx = nil
	globalMu.Unlock()

	if ctx != nil {
		ctx.Close(context.Background())
	}
}
