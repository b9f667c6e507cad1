// Package ledger persists the record of every managed write the engine
// has applied. The ledger is the authority for what content is "ours":
// drift detection compares live block content against the recorded
// checksum, and a block with no record is treated as not installed even
// if a marker with that uuid happens to exist.
//
// The backing file is TOML. Saves go through a sidecar flock plus the
// temp-file-and-rename discipline, so concurrent invocations from
// separate processes serialize on the lock and a crash mid-save leaves
// either the old ledger or the new one, never a truncated file.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/wgergely/repoman/internal/fsutil"
)

var (
	// ErrLockFailed reports that the ledger lock could not be acquired
	// within the configured timeout.
	ErrLockFailed = errors.New("ledger lock failed")
	// ErrConfigParse reports an unparsable ledger file. Fatal for the
	// invocation: nothing can be classified without the ledger.
	ErrConfigParse = errors.New("ledger parse failed")
)

// Version written into new ledgers; bumped only on format changes.
const Version = "1.0"

// DefaultLockTimeout bounds how long Load/Save wait for the file lock
// before failing with ErrLockFailed.
const DefaultLockTimeout = 10 * time.Second

// lockRetryDelay is the poll interval while waiting on the flock.
const lockRetryDelay = 50 * time.Millisecond

// Record is one applied projection: a (rule, target) pair the engine has
// written, identified by the block uuid.
type Record struct {
	UUID      string    `toml:"uuid"`
	RuleID    string    `toml:"rule_id"`
	ToolID    string    `toml:"tool_id"`
	File      string    `toml:"file"`
	Checksum  string    `toml:"checksum"`
	AppliedAt time.Time `toml:"applied_at"`
}

// Ledger is the in-memory working copy. Mutations are in-memory only;
// Save must be called to persist.
type Ledger struct {
	Version string   `toml:"version"`
	Records []Record `toml:"records,omitempty"`

	lockTimeout time.Duration
}

// New returns an empty ledger at the current format version.
func New() *Ledger {
	return &Ledger{Version: Version, lockTimeout: DefaultLockTimeout}
}

// Option configures ledger I/O behavior.
type Option func(*Ledger)

// WithLockTimeout overrides the default lock acquisition timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.lockTimeout = d }
}

// lockPath is the sidecar flock target. Locking a sidecar rather than the
// ledger itself keeps the lock valid across the rename that replaces the
// ledger file.
func lockPath(path string) string {
	return path + ".lock"
}

func (l *Ledger) acquire(path string, shared bool) (*flock.Flock, error) {
	fl := flock.New(lockPath(path))
	ctx, cancel := context.WithTimeout(context.Background(), l.lockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if shared {
		ok, err = fl.TryRLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = fl.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("locking %s: %w", lockPath(path), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: timed out after %s waiting for %s", ErrLockFailed, l.lockTimeout, lockPath(path))
	}
	return fl, nil
}

// Load reads the ledger under a shared lock. A missing file yields an
// empty ledger, not an error; an unparsable file yields ErrConfigParse.
func Load(path string, opts ...Option) (*Ledger, error) {
	l := New()
	for _, opt := range opts {
		opt(l)
	}

	fl, err := l.acquire(path, true)
	if err != nil {
		return nil, err
	}
	defer fl.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	loaded := New()
	if err := toml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	loaded.lockTimeout = l.lockTimeout
	if loaded.Version == "" {
		loaded.Version = Version
	}
	return loaded, nil
}

// Save persists the ledger under an exclusive lock, writing to a temp
// file in the same directory and renaming over the target. The lock is
// released only after the rename completes.
func (l *Ledger) Save(path string) error {
	data, err := toml.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	fl, err := l.acquire(path, false)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("saving ledger %s: %w", path, err)
	}
	return nil
}

// Upsert inserts the record or replaces the existing record with the
// same uuid.
func (l *Ledger) Upsert(rec Record) {
	for i, r := range l.Records {
		if r.UUID == rec.UUID {
			l.Records[i] = rec
			return
		}
	}
	l.Records = append(l.Records, rec)
}

// Remove deletes the record with the given uuid. Returns whether a
// record was removed.
func (l *Ledger) Remove(uuid string) bool {
	for i, r := range l.Records {
		if r.UUID == uuid {
			l.Records = append(l.Records[:i], l.Records[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the record with the given uuid.
func (l *Ledger) Find(uuid string) (Record, bool) {
	for _, r := range l.Records {
		if r.UUID == uuid {
			return r, true
		}
	}
	return Record{}, false
}

// All returns the records sorted by (tool id, rule id) so callers iterate
// in the engine's deterministic processing order.
func (l *Ledger) All() []Record {
	out := make([]Record, len(l.Records))
	copy(out, l.Records)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ToolID != out[j].ToolID {
			return out[i].ToolID < out[j].ToolID
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}
