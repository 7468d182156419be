package cyclic

type Tree []Tree

type Forest struct {
	Trees Tree `retain:""`
	Size  int  `retain:""`
}
