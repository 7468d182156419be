package invalid

type Base struct {
	ID int `retain:""`
}

type Embeds struct {
	Base `retain:""`
}

type Blank struct {
	_ int `retain:""`
}

type Box[T any] struct {
	Value T `retain:""`
}

type BadTag struct {
	Name string `retain:"bogus"`
}

type Unknown struct {
	When int `retain:"converter=Missing"`
}

type Anon struct {
	Inner struct {
		X int `retain:""`
	}
}
