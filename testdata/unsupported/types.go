package unsupported

type Worker struct {
	Name string   `retain:""`
	Jobs chan int `retain:""`
}
