package history

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/storage"
)

// Entry is one history index record.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Key       string `json:"key"`
}

func newEntry(at time.Time) Entry {
	ts := at.UTC().Format(time.RFC3339Nano)
	return Entry{Timestamp: ts, Key: blobPrefix + ts}
}

// Time parses the entry timestamp. Millisecond timestamps written by older
// tools parse as well.
func (e Entry) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.Timestamp)
}

// Label renders the entry's time in local time for people, falling back to
// the raw timestamp.
func (e Entry) Label() string {
	ts, err := e.Time()
	if err != nil {
		return e.Timestamp
	}
	return ts.Local().Format(time.DateTime)
}

// readIndex returns the index in ascending time order. A corrupt index is
// rebuilt from the history blobs present in the store.
func (m *Manager) readIndex(ctx context.Context) ([]Entry, error) {
	data, err := m.kv.Get(ctx, IndexKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.ErrStorage("read history index", err)
	}

	var index []Entry
	if err := json.Unmarshal(data, &index); err != nil {
		m.logger.Warn("history index is corrupt, rebuilding", "key", IndexKey, "error", err)
		return m.rebuildIndex(ctx)
	}
	sortEntries(index)
	return index, nil
}

func (m *Manager) rebuildIndex(ctx context.Context) ([]Entry, error) {
	keys, err := m.kv.List(ctx, blobPrefix)
	if err != nil {
		return nil, gerrors.ErrStorage("list history snapshots", err)
	}
	var index []Entry
	for _, k := range keys {
		if k == IndexKey {
			continue
		}
		index = append(index, Entry{Timestamp: strings.TrimPrefix(k, blobPrefix), Key: k})
	}
	sortEntries(index)
	return index, nil
}

func (m *Manager) writeIndex(ctx context.Context, index []Entry) error {
	if index == nil {
		index = []Entry{}
	}
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode history index: %w", err)
	}
	if err := m.kv.Set(ctx, IndexKey, data); err != nil {
		return fmt.Errorf("write history index: %w", err)
	}
	return nil
}

// partition splits index into entries at or after cutoff and everything
// else. Entries whose timestamp does not parse are treated as expired.
func partition(index []Entry, cutoff time.Time) (kept, evicted []Entry) {
	for _, e := range index {
		ts, err := e.Time()
		if err != nil || ts.Before(cutoff) {
			evicted = append(evicted, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, evicted
}

// sortEntries orders by timestamp ascending. Unparseable timestamps sort
// first and keep their relative order.
func sortEntries(index []Entry) {
	slices.SortStableFunc(index, func(a, b Entry) int {
		ta, errA := a.Time()
		tb, errB := b.Time()
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return -1
		case errB != nil:
			return 1
		}
		return cmp.Compare(ta.UnixNano(), tb.UnixNano())
	})
}
