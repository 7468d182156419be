// Package sqlstore persists retain.MapStore snapshots in a SQL database
// through gorm. Each snapshot is a named set of rows, one per store key.
package sqlstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seitarof/retaingen/retain"
)

// Entry is one persisted store value.
type Entry struct {
	Snapshot string `gorm:"primaryKey;size:191"`
	Key      string `gorm:"column:entry_key;primaryKey;size:191"`
	Kind     Kind   `gorm:"not null"`
	Value    []byte
}

// TableName keeps the table name stable regardless of naming strategy.
func (Entry) TableName() string {
	return "retain_entries"
}

// Kind tags the Go type of a persisted value.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat64
	KindComplex128
	KindString
	KindBytes
)

// ErrNotFound is returned by Load when no rows exist for a snapshot.
var ErrNotFound = errors.New("sqlstore: snapshot not found")

// Migrate creates or updates the entries table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}

// Save replaces the snapshot called name with the contents of store.
func Save(ctx context.Context, db *gorm.DB, name string, store *retain.MapStore) error {
	entries := make([]Entry, 0, store.Len())
	for _, key := range store.Keys() {
		v, _ := store.Value(key)
		kind, raw, err := encode(v)
		if err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		entries = append(entries, Entry{Snapshot: name, Key: key, Kind: kind, Value: raw})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("snapshot = ?", name).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("clear snapshot %q: %w", name, err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entries).Error; err != nil {
			return fmt.Errorf("write snapshot %q: %w", name, err)
		}
		return nil
	})
}

// Load reads the snapshot called name into a new MapStore.
func Load(ctx context.Context, db *gorm.DB, name string) (*retain.MapStore, error) {
	var entries []Entry
	if err := db.WithContext(ctx).Where("snapshot = ?", name).Order("entry_key").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	store := retain.NewMapStore()
	for _, e := range entries {
		v, err := decode(e.Kind, e.Value)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", e.Key, err)
		}
		if err := store.Set(e.Key, v); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Delete removes the snapshot called name.
func Delete(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).Where("snapshot = ?", name).Delete(&Entry{}).Error
}

func encode(v any) (Kind, []byte, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return KindBool, []byte{1}, nil
		}
		return KindBool, []byte{0}, nil
	case int64:
		return KindInt64, binary.BigEndian.AppendUint64(nil, uint64(x)), nil
	case uint64:
		return KindUint64, binary.BigEndian.AppendUint64(nil, x), nil
	case float64:
		return KindFloat64, binary.BigEndian.AppendUint64(nil, math.Float64bits(x)), nil
	case complex128:
		raw := binary.BigEndian.AppendUint64(nil, math.Float64bits(real(x)))
		return KindComplex128, binary.BigEndian.AppendUint64(raw, math.Float64bits(imag(x))), nil
	case string:
		return KindString, []byte(x), nil
	case []byte:
		return KindBytes, x, nil
	default:
		return 0, nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func decode(kind Kind, raw []byte) (any, error) {
	switch kind {
	case KindBool:
		if len(raw) != 1 {
			return nil, fmt.Errorf("bool: want 1 byte, got %d", len(raw))
		}
		return raw[0] == 1, nil
	case KindInt64, KindUint64, KindFloat64:
		if len(raw) != 8 {
			return nil, fmt.Errorf("kind %d: want 8 bytes, got %d", kind, len(raw))
		}
		u := binary.BigEndian.Uint64(raw)
		switch kind {
		case KindInt64:
			return int64(u), nil
		case KindUint64:
			return u, nil
		default:
			return math.Float64frombits(u), nil
		}
	case KindComplex128:
		if len(raw) != 16 {
			return nil, fmt.Errorf("complex128: want 16 bytes, got %d", len(raw))
		}
		re := math.Float64frombits(binary.BigEndian.Uint64(raw[:8]))
		im := math.Float64frombits(binary.BigEndian.Uint64(raw[8:]))
		return complex(re, im), nil
	case KindString:
		return string(raw), nil
	case KindBytes:
		if raw == nil {
			return []byte{}, nil
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown kind %d", kind)
	}
}
