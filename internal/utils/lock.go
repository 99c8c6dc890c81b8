package utils

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

const lockRetryDelay = 250 * time.Millisecond

// ExportLock keeps two gdpdash processes from writing the same export at once.
// The lock lives in a sibling file named after the export target.
type ExportLock struct {
	fl     *flock.Flock
	target string
}

// LockExport takes the lock for target, waiting until ctx is done if another
// process holds it.
func LockExport(ctx context.Context, target string) (*ExportLock, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}
	l := &ExportLock{fl: flock.New(abs + ".lock"), target: abs}

	ok, err := l.fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", abs, err)
	}
	if ok {
		return l, nil
	}

	Log.WithFields(logrus.Fields{"target": abs, "lock": l.fl.Path()}).Warn("Export target is busy, waiting")
	ok, err = l.fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("waiting for lock on %s: %w", abs, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock on %s not acquired", abs)
	}
	return l, nil
}

// Release drops the lock. Releasing a lock whose file is already gone is not an error.
func (l *ExportLock) Release() error {
	if err := l.fl.Unlock(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unlocking %s: %w", l.target, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *ExportLock) Path() string { return l.fl.Path() }
