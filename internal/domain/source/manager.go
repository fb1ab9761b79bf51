package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var _ Store = (*SQLiteStore)(nil)

// Manager applies normalization and import rules on top of a Store.
type Manager struct {
	store  Store
	logger *zap.Logger
}

// NewManager wraps store. A nil logger disables logging.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// Import validates and upserts every item. Invalid items are reported by
// index and do not abort the batch; storage errors do.
func (m *Manager) Import(ctx context.Context, items []any) (*ImportResult, error) {
	result := &ImportResult{Errors: []ImportError{}}
	for i, item := range items {
		payload, err := Validate(item)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Index: i, Reason: reason(err)})
			continue
		}
		existed, err := m.put(ctx, payload)
		if err != nil {
			return result, err
		}
		if existed {
			result.Duplicates++
		}
		result.Imported++
	}
	m.logger.Info("Imported sources",
		zap.Int("imported", result.Imported),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// List returns summaries matching filter.
func (m *Manager) List(ctx context.Context, filter Filter) ([]Summary, error) {
	records, err := m.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summary{
			URL:     rec.URL,
			Name:    rec.Name,
			Group:   rec.Group,
			Type:    rec.Type,
			Enabled: rec.Enabled,
		})
	}
	return out, nil
}

// Get returns the full stored payload, unknown keys included.
func (m *Manager) Get(ctx context.Context, id string) (map[string]any, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return payloadOf(rec)
}

// Source returns the typed view of a stored source.
func (m *Manager) Source(ctx context.Context, id string) (*Source, error) {
	payload, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// Update shallow-merges patch into the stored payload. The key cannot change.
func (m *Manager) Update(ctx context.Context, id string, patch map[string]any) (map[string]any, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		current[k] = v
	}
	current[KeyURL] = id

	payload, err := Validate(current)
	if err != nil {
		return nil, err
	}
	if _, err := m.put(ctx, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Delete removes one source, returning ErrNotFound when nothing was removed.
func (m *Manager) Delete(ctx context.Context, id string) error {
	n, err := m.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes ids in one transaction and returns how many existed.
func (m *Manager) DeleteMany(ctx context.Context, ids []string) (int, error) {
	return m.store.DeleteMany(ctx, ids)
}

// Enabled returns every enabled source. Records that fail to decode are
// skipped with a warning.
func (m *Manager) Enabled(ctx context.Context) ([]*Source, error) {
	enabled := true
	records, err := m.store.List(ctx, Filter{Enabled: &enabled})
	if err != nil {
		return nil, err
	}
	out := make([]*Source, 0, len(records))
	for i := range records {
		payload, err := payloadOf(&records[i])
		if err == nil {
			var src *Source
			if src, err = Decode(payload); err == nil {
				out = append(out, src)
				continue
			}
		}
		m.logger.Warn("Skipping undecodable source",
			zap.String("source", records[i].URL), zap.Error(err))
	}
	return out, nil
}

func (m *Manager) put(ctx context.Context, payload map[string]any) (bool, error) {
	data, err := codec.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode source: %w", err)
	}
	return m.store.Upsert(ctx, Record{
		URL:     payload[KeyURL].(string),
		Name:    payload[KeyName].(string),
		Group:   payload[KeyGroup].(string),
		Type:    payload[KeyType].(int),
		Enabled: payload[KeyEnabled].(bool),
		Payload: data,
	})
}

func payloadOf(rec *Record) (map[string]any, error) {
	var payload map[string]any
	if err := codec.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode stored source %s: %w", rec.URL, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSource):
		return ErrInvalidSource.Error()
	case errors.Is(err, ErrUnsupportedType):
		return ErrUnsupportedType.Error()
	default:
		return err.Error()
	}
}
