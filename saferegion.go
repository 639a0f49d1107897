package rendersec

import (
	"context"

	"go.dw1.io/x/exp/rendersec/internal/affinity"
)

// Token is an open safe region. It is released by [ExitSafeRegion].
type Token struct {
	th    *affinity.Thread
	depth int32
}

// Depth returns the nesting depth the region opened at, starting from 1.
// The zero Token has depth 0.
func (t Token) Depth() int {
	return int(t.depth)
}

// EnterSafeRegion suspends enforcement for the thread bound to ctx until the
// returned token is released, so sandboxed code can call back into trusted
// host services. Regions nest and must be released in reverse order.
//
// cred must be the credential of the sandbox currently installed and active;
// otherwise, including when no sandbox is active, it fails with
// [ErrCredentialMismatch].
func EnterSafeRegion(ctx context.Context, cred Credential) (Token, error) {
	th := affinity.FromContext(ctx)
	if th == nil {
		return Token{}, ErrNoThread
	}

	s := installedSandbox()
	if s == nil || !s.Active() || !s.checkCredential(cred) {
		return Token{}, ErrCredentialMismatch
	}

	return Token{th: th, depth: th.EnterSafe()}, nil
}

// ExitSafeRegion closes the region opened by tok and any region opened after
// it on the same thread. Releasing the zero Token does nothing.
func ExitSafeRegion(tok Token) {
	if tok.th == nil {
		return
	}

	tok.th.ExitSafe(tok.depth)
}

// SafeRegion runs fn inside a safe region on the thread bound to ctx.
func SafeRegion(ctx context.Context, cred Credential, fn func() error) error {
	tok, err := EnterSafeRegion(ctx, cred)
	if err != nil {
		return err
	}
	defer ExitSafeRegion(tok)

	return fn()
}
