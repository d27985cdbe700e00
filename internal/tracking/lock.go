package tracking

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock guards the ledger against concurrent automation runs. The downloads
// directory and ledger assume a single writer, so every mutating command
// holds this for its whole duration.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes a non-blocking file lock next to the ledger. A held lock
// means another run is active against the same workspace.
func AcquireLock(ledgerPath string) (*Lock, error) {
	fl := flock.New(ledgerPath + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("ledger is locked by another run: %s", fl.Path())
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release ledger lock %s: %w", l.fl.Path(), err)
	}
	return nil
}
