package rendersec

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go.dw1.io/x/exp/rendersec/internal/affinity"
)

// WithThread returns a copy of ctx bound to a thread. If ctx already carries
// one, ctx is returned unchanged; otherwise the new thread is a root thread
// that no sandbox considers in scope until it activates one itself.
func WithThread(ctx context.Context) context.Context {
	if affinity.FromContext(ctx) != nil {
		return ctx
	}

	return affinity.NewContext(ctx, affinity.NewThread())
}

// Spawn returns a copy of ctx bound to a child of the thread bound to ctx.
// The child is in scope of every sandbox its parent is in scope of at the
// time of the call. Without a parent, the child is a root thread.
func Spawn(ctx context.Context) context.Context {
	parent := affinity.FromContext(ctx)
	if parent == nil {
		return affinity.NewContext(ctx, affinity.NewThread())
	}

	return affinity.NewContext(ctx, parent.Spawn())
}

// Go runs fn in a new goroutine bound to a child thread of ctx.
func Go(ctx context.Context, fn func(ctx context.Context)) {
	child := Spawn(ctx)

	go fn(child)
}

// ThreadID returns the id of the thread bound to ctx, or 0.
func ThreadID(ctx context.Context) uint64 {
	th := affinity.FromContext(ctx)
	if th == nil {
		return 0
	}

	return th.ID()
}

// Group is an [errgroup.Group] whose goroutines run on child threads of the
// thread that created it.
type Group struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewGroup returns a Group and a derived context canceled when a goroutine
// of the group fails or Wait returns.
//
// Children are spawned from the thread bound to ctx at each call to Go, so a
// group created before Activate still yields in-scope goroutines afterwards.
func NewGroup(ctx context.Context) (*Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)

	return &Group{g: g, ctx: gctx}, gctx
}

// SetLimit limits the number of active goroutines in the group.
func (g *Group) SetLimit(n int) {
	g.g.SetLimit(n)
}

// Go runs fn in a new goroutine on a child thread.
func (g *Group) Go(fn func(ctx context.Context) error) {
	child := Spawn(g.ctx)

	g.g.Go(func() error {
		return fn(child)
	})
}

// TryGo is like Go but returns false without spawning when the group is at
// its limit.
func (g *Group) TryGo(fn func(ctx context.Context) error) bool {
	child := Spawn(g.ctx)

	return g.g.TryGo(func() error {
		return fn(child)
	})
}

// Wait blocks until every goroutine of the group returns and yields the first
// error.
func (g *Group) Wait() error {
	return g.g.Wait()
}
