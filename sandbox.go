package rendersec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.dw1.io/fastcache"

	"go.dw1.io/x/exp/rendersec/internal/affinity"
)

const (
	defaultResolveCacheSize = 4_096
	maxSymlinkHops          = 40
)

// Sandbox restricts operations made by the thread that activated it and by
// the threads that thread spawns while it is active.
//
// A Sandbox is inert until [Sandbox.Activate] and permanently retired by
// [Sandbox.Dispose]. Its methods are safe for concurrent use.
type Sandbox struct {
	mu       sync.Mutex
	cfg      config
	optErr   error
	self     *installed
	previous *installed

	bound    atomic.Pointer[binding]
	cred     atomic.Pointer[credentialToken]
	rules    atomic.Pointer[Rules]
	resolved atomic.Pointer[fastcache.Cache[string, resolvedDir]]
	logger   atomic.Pointer[loggerBox]
	active   atomic.Bool
	disposed atomic.Bool
}

// binding is the owning thread and the scope it shares with its
// descendants for one activation.
type binding struct {
	owner *affinity.Thread
	scope affinity.Scope
}

// resolvedDir is a cached symlink resolution of a directory. info is the
// Lstat result at resolution time; the entry is only reused while the
// directory is still the same file.
type resolvedDir struct {
	path string
	info os.FileInfo
}

var _ Interceptor = (*Sandbox)(nil)

// New creates an inert Sandbox configured by opts.
//
// Option errors are recorded and surfaced by the first call to Activate.
func New(opts ...Option) *Sandbox {
	cfg, optErr := newConfig(opts...)

	s := &Sandbox{cfg: cfg, optErr: optErr}
	s.self = &installed{ic: s}
	s.SetLogger(cfg.logger)

	return s
}

// SetAppTempDir exempts reads and writes under dir. It takes effect at the
// next Activate.
func (s *Sandbox) SetAppTempDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.appTempDir = dir
}

// SetLogger replaces the diagnostics sink. A nil logger discards
// diagnostics.
func (s *Sandbox) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}

	s.logger.Store(&loggerBox{Logger: l})
}

// Activate installs s as the process-wide interceptor and makes the thread
// bound to ctx its owner.
//
// It fails with [ErrAlreadyActive] when another live sandbox is installed,
// when s was activated with a different credential, or when s was displaced
// and the displacing interceptor still holds the slot. It fails with
// [ErrCredentialMismatch] for the zero credential, with [ErrNoThread] when
// ctx carries no thread, and with [ErrDisposed] after Dispose. Activating
// again with the same credential re-enables s.
func (s *Sandbox) Activate(ctx context.Context, cred Credential) error {
	if !cred.valid() {
		return fmt.Errorf("%w: activation requires a credential", ErrCredentialMismatch)
	}

	th := affinity.FromContext(ctx)
	if th == nil {
		return ErrNoThread
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.optErr != nil {
		return s.optErr
	}

	if s.disposed.Load() {
		return ErrDisposed
	}

	if cur := s.cred.Load(); cur != nil {
		if cur != cred.token {
			return ErrAlreadyActive
		}

		if slot.Load() == s.self {
			s.active.Store(true)

			return nil
		}

		s.active.Store(false)
	}

	// A displaced sandbox only reinstalls into an empty slot. Installing over
	// the displacing interceptor would make Dispose restore the wrong
	// predecessor.
	prevCred := s.cred.Load()
	displaced := prevCred != nil
	scope := affinity.NewScope()

	s.rules.Store(buildRules(&s.cfg))
	size := s.cfg.resolveCacheSize
	if size <= 0 {
		size = defaultResolveCacheSize
	}

	s.resolved.Store(fastcache.New[string, resolvedDir](size))
	s.cred.Store(cred.token)
	th.Join(scope)

	var previous *installed
	for {
		cur := slot.Load()
		if blockingSandbox(cur, s) != nil || (displaced && cur != nil) {
			th.Leave(scope)
			s.cred.Store(prevCred)

			return ErrAlreadyActive
		}

		if slot.CompareAndSwap(cur, s.self) {
			previous = cur
			break
		}
	}

	if old := s.bound.Swap(&binding{owner: th, scope: scope}); old != nil {
		old.owner.Leave(old.scope)
	}

	s.previous = previous
	s.active.Store(true)

	return nil
}

// blockingSandbox returns the sandbox in cur if it is a live sandbox other
// than s. A sandbox that is installed but toggled off still blocks.
func blockingSandbox(cur *installed, s *Sandbox) *Sandbox {
	if cur == nil {
		return nil
	}

	other, ok := cur.ic.(*Sandbox)
	if !ok || other == s || other.disposed.Load() {
		return nil
	}

	return other
}

// SetActive toggles enforcement without uninstalling s, so trusted host code
// on the owning thread can run unrestricted and restrictions can be restored
// later. cred must be the activating credential.
func (s *Sandbox) SetActive(active bool, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.checkCredential(cred) {
		return ErrCredentialMismatch
	}

	if active && s.disposed.Load() {
		return ErrDisposed
	}

	s.active.Store(active)

	return nil
}

// Deactivate is SetActive(false, cred).
func (s *Sandbox) Deactivate(cred Credential) error {
	return s.SetActive(false, cred)
}

// Dispose retires s and restores the interceptor that was installed before
// Activate. Disposing again with the activating credential is a no-op.
//
// If a foreign interceptor replaced s in the meantime, Dispose reports
// [ErrDisplaced] to the logger and leaves the foreign interceptor installed.
func (s *Sandbox) Dispose(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.checkCredential(cred) {
		return ErrCredentialMismatch
	}

	if s.disposed.Swap(true) {
		return nil
	}

	s.active.Store(false)
	if b := s.bound.Load(); b != nil {
		b.owner.Leave(b.scope)
	}

	if !slot.CompareAndSwap(s.self, s.previous) {
		s.warn("sandbox displaced; leaving foreign interceptor installed", ErrDisplaced)
	}

	s.previous = nil

	return nil
}

// Active reports whether s is installed-and-enforcing from its own point of
// view.
func (s *Sandbox) Active() bool {
	return s.active.Load() && !s.disposed.Load()
}

// Rules returns the exemption table captured by the last Activate, or nil.
func (s *Sandbox) Rules() *Rules {
	return s.rules.Load()
}

// Check implements [Interceptor].
func (s *Sandbox) Check(ctx context.Context, op Operation) error {
	if disabled.Load() || !s.Active() {
		return nil
	}

	th := affinity.FromContext(ctx)
	if !s.relevant(th) || th.Suspended() {
		return nil
	}

	restrict := restrictReads.Load()
	rules := s.rules.Load()

	if fa, ok := op.(FileAccess); ok {
		return s.checkFile(fa, rules, restrict)
	}

	if err := Classify(op, rules, restrict).Err(); err != nil {
		s.warn("access denied", err)

		return err
	}

	return nil
}

// checkFile classifies fa by its absolute path and, when that path is
// exempt, again by its symlink-resolved form.
func (s *Sandbox) checkFile(fa FileAccess, rules *Rules, restrict bool) error {
	path := fa.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	v := Classify(FileAccess{Path: path, Rights: fa.Rights}, rules, restrict)
	if v.Allowed && (restrict || fa.Rights.Writes()) {
		if resolved := s.resolve(path); resolved != path {
			v = Classify(FileAccess{Path: resolved, Rights: fa.Rights}, rules, restrict)
		}
	}

	if v.Allowed {
		return nil
	}

	err := &DeniedError{Category: v.Category, Detail: fa.Path}
	s.warn("access denied", err)

	return err
}

// resolve returns path with symlinks evaluated. Missing components are
// resolved through their nearest existing parent so files and directories
// about to be created are covered too. The leaf is examined on every call;
// only existing directories are cached.
func (s *Sandbox) resolve(path string) string {
	return s.resolveHops(path, 0)
}

func (s *Sandbox) resolveHops(path string, hops int) string {
	dir := s.resolveDir(filepath.Dir(path), hops)
	path = filepath.Join(dir, filepath.Base(path))

	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 || hops >= maxSymlinkHops {
		return path
	}

	// Dangling links are followed by hand; EvalSymlinks rejects them.
	target, err := os.Readlink(path)
	if err != nil {
		return path
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}

	return s.resolveHops(filepath.Clean(target), hops+1)
}

func (s *Sandbox) resolveDir(dir string, hops int) string {
	if dir == filepath.Dir(dir) {
		return dir
	}

	info, err := os.Lstat(dir)
	if err != nil {
		return filepath.Join(s.resolveDir(filepath.Dir(dir), hops), filepath.Base(dir))
	}

	cache := s.resolved.Load()
	if cache != nil {
		if e, ok := cache.Get(dir); ok && os.SameFile(e.info, info) {
			return e.path
		}
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return s.resolveHops(dir, hops)
	}

	if cache != nil {
		cache.Set(dir, resolvedDir{path: resolved, info: info})
	}

	return resolved
}

func (s *Sandbox) relevant(th *affinity.Thread) bool {
	if th == nil {
		return false
	}

	b := s.bound.Load()
	if b == nil {
		return false
	}

	return th == b.owner || th.In(b.scope)
}

func (s *Sandbox) checkCredential(cred Credential) bool {
	cur := s.cred.Load()

	return cur != nil && cur == cred.token
}

// warn hands err to the logger. A panicking logger is contained so
// diagnostics never change the outcome of a check.
func (s *Sandbox) warn(msg string, err error) {
	defer func() {
		_ = recover()
	}()

	if box := s.logger.Load(); box != nil {
		box.Warn(msg, err)
	}
}

// Current returns the sandbox restricting the thread bound to ctx, or nil
// when that thread is out of scope, inside a safe region, or no sandbox is
// active.
func Current(ctx context.Context) *Sandbox {
	if disabled.Load() {
		return nil
	}

	th := affinity.FromContext(ctx)
	if th.Suspended() {
		return nil
	}

	s := installedSandbox()
	if s == nil || !s.Active() || !s.relevant(th) {
		return nil
	}

	return s
}
