package guard

import (
	"context"
	"os"
	"time"

	"go.dw1.io/x/exp/rendersec"
)

// Setenv is [os.Setenv], checked as a [rendersec.SetProperty] of key.
func Setenv(ctx context.Context, key, value string) error {
	if err := rendersec.Check(ctx, rendersec.SetProperty{Key: key}); err != nil {
		return err
	}

	return os.Setenv(key, value)
}

// Unsetenv is [os.Unsetenv], checked like Setenv.
func Unsetenv(ctx context.Context, key string) error {
	if err := rendersec.Check(ctx, rendersec.SetProperty{Key: key}); err != nil {
		return err
	}

	return os.Unsetenv(key)
}

// Getenv is [os.Getenv]. Reading a single variable is never restricted.
func Getenv(_ context.Context, key string) string {
	return os.Getenv(key)
}

// Environ is [os.Environ], checked as [rendersec.ReadProperties].
func Environ(ctx context.Context) ([]string, error) {
	if err := rendersec.Check(ctx, rendersec.ReadProperties{}); err != nil {
		return nil, err
	}

	return os.Environ(), nil
}

// SetTimezone loads the named location and makes it [time.Local].
func SetTimezone(ctx context.Context, name string) error {
	if err := rendersec.Check(ctx, rendersec.SetTimezone{Name: name}); err != nil {
		return err
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}

	time.Local = loc

	return nil
}
