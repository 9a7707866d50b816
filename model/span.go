package model

// Span is a source location, byte range plus file-absolute line/column.
// A zero Valid means the node was synthesised (e.g. by the inverter) and
// carries no source location.
type Span struct {
	Valid bool
	Start int
	End   int
	Line  int
	Col   int
}
