// Package affinity tracks which logical threads belong to an activation scope.
//
// Goroutines carry no identity, so a Thread is an explicit handle bound into a
// context. A child thread copies its parent's scope set at spawn time; joining
// a scope later never reaches threads that were already spawned.
package affinity

import (
	"context"
	"slices"
	"sync/atomic"
)

// Scope identifies one activation. Zero is never issued.
type Scope uint64

var (
	lastThreadID atomic.Uint64
	lastScope    atomic.Uint64
)

// NewScope returns a scope that no thread has joined yet.
func NewScope() Scope {
	return Scope(lastScope.Add(1))
}

// Thread is a logical thread of execution.
type Thread struct {
	id     uint64
	parent *Thread
	scopes atomic.Pointer[[]Scope]
	safe   atomic.Int32
}

// NewThread returns a root thread that belongs to no scope.
func NewThread() *Thread {
	return &Thread{id: lastThreadID.Add(1)}
}

// Spawn returns a child of t that inherits the scopes t holds right now.
func (t *Thread) Spawn() *Thread {
	child := NewThread()
	child.parent = t

	if cur := t.scopes.Load(); cur != nil && len(*cur) > 0 {
		inherited := slices.Clone(*cur)
		child.scopes.Store(&inherited)
	}

	return child
}

// ID returns the process-unique thread id.
func (t *Thread) ID() uint64 {
	return t.id
}

// Parent returns the spawning thread, or nil for a root thread.
func (t *Thread) Parent() *Thread {
	return t.parent
}

// Join adds s to the scope set of t.
func (t *Thread) Join(s Scope) {
	for {
		cur := t.scopes.Load()

		var next []Scope
		if cur != nil {
			if slices.Contains(*cur, s) {
				return
			}

			next = slices.Clone(*cur)
		}

		next = append(next, s)
		if t.scopes.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// Leave removes s from the scope set of t. Threads already spawned by t keep
// their copy.
func (t *Thread) Leave(s Scope) {
	for {
		cur := t.scopes.Load()
		if cur == nil || !slices.Contains(*cur, s) {
			return
		}

		next := slices.DeleteFunc(slices.Clone(*cur), func(v Scope) bool { return v == s })
		if t.scopes.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// In reports whether t belongs to s.
func (t *Thread) In(s Scope) bool {
	if t == nil || s == 0 {
		return false
	}

	cur := t.scopes.Load()

	return cur != nil && slices.Contains(*cur, s)
}

// EnterSafe pushes one suspension marker and returns the resulting depth.
func (t *Thread) EnterSafe() int32 {
	return t.safe.Add(1)
}

// ExitSafe pops the marker opened at depth along with every marker opened
// after it.
func (t *Thread) ExitSafe(depth int32) {
	for {
		cur := t.safe.Load()
		if cur < depth || depth <= 0 {
			return
		}

		if t.safe.CompareAndSwap(cur, depth-1) {
			return
		}
	}
}

// Suspended reports whether at least one suspension marker is open on t.
func (t *Thread) Suspended() bool {
	return t != nil && t.safe.Load() > 0
}

type threadKey struct{}

// NewContext returns a copy of ctx bound to t.
func NewContext(ctx context.Context, t *Thread) context.Context {
	return context.WithValue(ctx, threadKey{}, t)
}

// FromContext returns the thread bound to ctx, or nil.
func FromContext(ctx context.Context) *Thread {
	if ctx == nil {
		return nil
	}

	t, _ := ctx.Value(threadKey{}).(*Thread)

	return t
}
