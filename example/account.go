// Package example holds a small account hierarchy and the companion types
// retaingen writes for it.
package example

import (
	"time"

	"github.com/seitarof/retaingen/retain"
)

//go:generate go run github.com/seitarof/retaingen/cmd/retaingen .

type Tier int

const (
	Free Tier = iota
	Pro
	Enterprise
)

type Address struct {
	Street string
	City   string
}

// Record is the common part of every persisted entity.
type Record struct {
	ID      int64     `retain:""`
	Created time.Time `retain:""`
	Name    string    `retain:""`
}

type Account struct {
	Record
	Name     string         `retain:""`
	Tier     Tier           `retain:""`
	Home     *Address       `retain:""`
	Tags     []string       `retain:""`
	Limits   map[string]int `retain:""`
	Fallback **Address      `retain:""`
	Expires  time.Time      `retain:"converter=ExpiresConv"`
	Renewed  time.Time      `retain:"converter=ExpiresConv"`
	Session  string         `retain:"-"`
}

// ExpiresConv stores a time as whole Unix seconds in UTC.
type ExpiresConv struct{}

func (ExpiresConv) Save(store retain.Store, key string, v time.Time) {
	store.PutInt64(key, v.Unix())
}

func (ExpiresConv) Restore(store retain.Store, key string) (time.Time, bool) {
	sec, ok := store.GetInt64(key)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}
