package resolver

import "github.com/seitarof/retaingen/internal/model"

// MatchKind tags the strategy family a Match belongs to.
type MatchKind int

const (
	KindConverter MatchKind = iota
	KindPrimitive
	KindStructural
	KindContainer
	KindEnum
)

func (k MatchKind) String() string {
	switch k {
	case KindConverter:
		return "converter"
	case KindPrimitive:
		return "primitive"
	case KindStructural:
		return "structural"
	case KindContainer:
		return "container"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Match is the resolved strategy for one type. Children hold the matches
// of element, key and value, or member types, in the order the owning
// analyzer documents.
type Match struct {
	Kind      MatchKind
	Analyzer  Analyzer
	Type      *model.TypeRef
	Children  []*Match
	Converter *model.ConverterRef
}

// AnalyzerName names the strategy, for diagnostics and dumps.
func (m *Match) AnalyzerName() string {
	if m.Kind == KindConverter {
		return "converter"
	}
	if m.Analyzer == nil {
		return "unknown"
	}
	return m.Analyzer.Name()
}
