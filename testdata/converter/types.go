package converter

import (
	"time"

	"github.com/seitarof/retaingen/retain"
)

// UnixTime stores a time.Time as whole seconds.
type UnixTime struct{}

func (UnixTime) Save(store retain.Store, key string, value time.Time) {
	store.PutInt64(key, value.Unix())
}

func (UnixTime) Restore(store retain.Store, key string) (time.Time, bool) {
	v, ok := store.GetInt64(key)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(v, 0).UTC(), true
}

type Event struct {
	Name  string    `retain:""`
	When  time.Time `retain:"converter=UnixTime"`
	Until time.Time `retain:"converter=UnixTime"`
}
