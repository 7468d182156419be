package app

import "github.com/seitarof/retaingen/testdata/crosspkg/lib"

type User struct {
	lib.Entity
	Email   string `retain:""`
	Version int    `retain:""`
}
