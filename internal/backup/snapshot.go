package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const SnapshotVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Snapshot is a point in time copy of every persisted key, values kept as raw JSON.
type Snapshot struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"createdAt"`
	Entries   map[string]json.RawMessage `json:"entries"`
}

// TakeSnapshot reads all known keys. Missing keys are left out, values that are not
// valid JSON are skipped with a warning.
func TakeSnapshot(ctx context.Context, store storage.Store, now time.Time) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.takeSnapshot")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: now,
		Entries:   make(map[string]json.RawMessage, len(storage.AllKeys)),
	}

	for _, key := range storage.AllKeys {
		value, err := store.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot get [%s]: %w", key, err)
		}
		if !json.Valid(value) {
			log.Warnf("snapshot: value of [%s] is not valid json, skipping", key)
			continue
		}
		snapshot.Entries[key] = value
	}

	return snapshot, nil
}

// Restore writes the snapshot entries back. Unknown keys are ignored and every
// write is attempted, failures are combined.
func Restore(ctx context.Context, store storage.Store, snapshot *Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.restore")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if snapshot.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, snapshot.Version)
	}

	var restoreErr error
	for key, value := range snapshot.Entries {
		if !slices.Contains(storage.AllKeys, key) {
			log.Warnf("restore: unknown key [%s], skipping", key)
			continue
		}
		if err := store.Set(ctx, key, value); err != nil {
			restoreErr = multierr.Append(restoreErr, fmt.Errorf("restore set [%s]: %w", key, err))
		}
	}

	return restoreErr
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func Unmarshal(data []byte) (*Snapshot, error) {
	snapshot := &Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *Snapshot) baseFileName() string {
	return fmt.Sprintf("fittrack-snapshot-%d-%d-%d", s.CreatedAt.Day(), s.CreatedAt.Month(), s.CreatedAt.Year())
}
