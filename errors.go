package rendersec

import "errors"

// ErrAlreadyActive indicates that another sandbox, activated with a different
// credential, is installed.
var ErrAlreadyActive = errors.New("sandbox is already active")

// ErrCredentialMismatch indicates that a state-changing call presented a
// credential other than the activating one. The zero [Credential] never
// matches.
var ErrCredentialMismatch = errors.New("credential does not match")

// ErrDenied is matched by every [*DeniedError] through [errors.Is].
var ErrDenied = errors.New("access not allowed during rendering")

// ErrDisplaced is reported to the [Logger] when Dispose finds a foreign
// interceptor installed in place of the sandbox. It is never returned.
var ErrDisplaced = errors.New("sandbox was displaced by a foreign interceptor")

// ErrDisposed indicates an attempt to reactivate a disposed sandbox.
var ErrDisposed = errors.New("sandbox is disposed")

// ErrNoThread indicates that the context carries no thread. Bind one with
// [WithThread].
var ErrNoThread = errors.New("context is not bound to a thread")

// ErrInvalidOption indicates that an option was malformed or incomplete.
//
// It can be wrapped by option validation failures.
var ErrInvalidOption = errors.New("invalid sandbox option")

// DeniedError is returned for an operation the sandbox rejected.
type DeniedError struct {
	Category Category
	Detail   string
}

func (e *DeniedError) Error() string {
	if e.Detail == "" {
		return e.Category.String() + " access not allowed during rendering"
	}

	return e.Category.String() + " access not allowed during rendering (" + e.Detail + ")"
}

// Is reports whether target is [ErrDenied].
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}
