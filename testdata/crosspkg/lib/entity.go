package lib

type Entity struct {
	ID      int64 `retain:""`
	Version int   `retain:""`
}
