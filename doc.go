// Package rendersec restricts what untrusted rendering code may do while it
// runs inside a render host.
//
// A [Sandbox] is activated by the host with a [Credential] on a thread-bound
// context. From then on, every [Check] made on that thread, or on threads it
// spawns through [Spawn], [Go] or [Group], is classified and either allowed or
// rejected with a [*DeniedError]. Threads unrelated to the activating thread
// are never restricted.
//
// Example:
//
//	cred := rendersec.NewCredential()
//	sb := rendersec.New(rendersec.WithAppTempDir(cacheDir))
//	ctx = rendersec.WithThread(ctx)
//	if err := sb.Activate(ctx, cred); err != nil {
//		// handle activation error
//	}
//	defer sb.Dispose(cred)
//
//	data, err := guard.ReadFile(ctx, "/etc/shadow") // *DeniedError when reads are restricted
//
// Host services that sandboxed code calls back into can lift enforcement for
// the calling thread with [EnterSafeRegion] and [ExitSafeRegion].
//
// Only operations routed through [Check] (directly or via the guard package)
// are intercepted. rendersec is not an OS-level sandbox: there is no syscall
// filtering, and Go reflection or unsafe code cannot be interposed.
package rendersec
