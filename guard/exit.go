package guard

import (
	"context"
	"os"

	"go.dw1.io/x/exp/rendersec"
)

var osExit = os.Exit

// Exit terminates the process with code unless the check denies it, in which
// case the denial is returned and the process keeps running.
func Exit(ctx context.Context, code int) error {
	if err := rendersec.Check(ctx, rendersec.Exit{Code: code}); err != nil {
		return err
	}

	osExit(code)

	return nil
}
