package identitysvc

import (
	"context"
	"time"

	"github.com/trezcool/sahayak/core/user"
)

// latencyDirectory delays every call to the wrapped Directory, the way a remote identity
// provider would. Delays honour context cancellation.
type latencyDirectory struct {
	dir          user.Directory
	loginDelay   time.Duration
	onboardDelay time.Duration
}

var _ user.Directory = (*latencyDirectory)(nil)

// WithLatency wraps dir so Authenticate takes loginDelay and SaveProfile takes onboardDelay.
// Zero delays return dir unchanged.
func WithLatency(dir user.Directory, loginDelay, onboardDelay time.Duration) user.Directory {
	if loginDelay <= 0 && onboardDelay <= 0 {
		return dir
	}
	return &latencyDirectory{dir: dir, loginDelay: loginDelay, onboardDelay: onboardDelay}
}

func (d *latencyDirectory) Authenticate(ctx context.Context, key string) (user.User, error) {
	if err := wait(ctx, d.loginDelay); err != nil {
		return user.User{}, err
	}
	return d.dir.Authenticate(ctx, key)
}

func (d *latencyDirectory) SaveProfile(ctx context.Context, usr user.User, prof user.TeacherProfile) (user.User, error) {
	if err := wait(ctx, d.onboardDelay); err != nil {
		return user.User{}, err
	}
	return d.dir.SaveProfile(ctx, usr, prof)
}

func (d *latencyDirectory) Keys() []string {
	return d.dir.Keys()
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
