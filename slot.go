package rendersec

import (
	"context"
	"sync/atomic"

	"go.dw1.io/x/exp/rendersec/internal/affinity"
)

// Interceptor decides operations presented to [Check]. At most one
// interceptor is installed per process.
type Interceptor interface {
	Check(ctx context.Context, op Operation) error
}

type installed struct {
	ic Interceptor
}

var (
	slot atomic.Pointer[installed]

	disabled      atomic.Bool
	restrictReads atomic.Bool
)

// SetEnabled toggles the process-wide kill switch. While disabled, every
// check passes regardless of activation state.
func SetEnabled(enabled bool) {
	disabled.Store(!enabled)
}

// Enabled reports the kill switch state. Sandboxing is enabled by default.
func Enabled() bool {
	return !disabled.Load()
}

// SetRestrictReads toggles read restriction. When on, file reads outside the
// exempt roots are denied and process execution is reported as a read.
func SetRestrictReads(restrict bool) {
	restrictReads.Store(restrict)
}

// RestrictReads reports whether read restriction is on. It is off by
// default.
func RestrictReads() bool {
	return restrictReads.Load()
}

// Check presents op to the installed interceptor on behalf of the thread
// bound to ctx.
//
// It returns nil when sandboxing is disabled, when nothing is installed, or
// when the thread is inside a safe region. A denial is returned unwrapped.
func Check(ctx context.Context, op Operation) error {
	if disabled.Load() {
		return nil
	}

	if affinity.FromContext(ctx).Suspended() {
		return nil
	}

	cur := slot.Load()
	if cur == nil {
		return nil
	}

	return cur.ic.Check(ctx, op)
}

// SetInterceptor replaces the process-wide interceptor; nil uninstalls it.
//
// The replacement is itself checked as [ReplaceInterceptor] against the
// installed interceptor, so sandboxed threads cannot perform it. Threads
// outside the sandbox can, which displaces an active sandbox.
func SetInterceptor(ctx context.Context, ic Interceptor) error {
	var next *installed
	if ic != nil {
		next = &installed{ic: ic}
	}

	for {
		cur := slot.Load()
		if err := Check(ctx, ReplaceInterceptor{}); err != nil {
			return err
		}

		if slot.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Installed returns the process-wide interceptor. The query is checked as
// [ReplaceInterceptor].
func Installed(ctx context.Context) (Interceptor, error) {
	if err := Check(ctx, ReplaceInterceptor{}); err != nil {
		return nil, err
	}

	cur := slot.Load()
	if cur == nil {
		return nil, nil
	}

	return cur.ic, nil
}

// installedSandbox returns the installed interceptor if it is a live
// sandbox.
func installedSandbox() *Sandbox {
	cur := slot.Load()
	if cur == nil {
		return nil
	}

	s, ok := cur.ic.(*Sandbox)
	if !ok || s.disposed.Load() {
		return nil
	}

	return s
}
