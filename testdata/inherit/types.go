package inherit

import "time"

type Color int

const (
	Red Color = iota
	Green
	Blue
)

type Point struct {
	X, Y int
}

type Base struct {
	ID      int64     `retain:""`
	Name    string    `retain:""`
	Created time.Time `retain:""`
}

// Mid has no retained fields of its own.
type Mid struct {
	Base
	Note string
}

type Derived struct {
	Mid
	Name    string            `retain:""`
	Shade   Color             `retain:""`
	Origin  *Point            `retain:""`
	Path    []Point           `retain:""`
	Labels  map[string]string `retain:""`
	Timeout time.Duration     `retain:""`
	Secret  string            `retain:"skip"`
	Scratch []byte            `retain:"-"`
	Ignored int
}
