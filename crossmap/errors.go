package crossmap

import (
	"fmt"
)

// OrderingError reports a position that does not come strictly after the
// previous one on its chromosome, or a chromosome that reappears after its
// block has ended.
type OrderingError struct {
	Pos  Position
	Prev Position
}

func (e *OrderingError) Error() string {
	if e.Pos.Chrom != e.Prev.Chrom {
		return fmt.Sprintf("crossmap: chromosome %s reappears at %v after %v; input must be grouped by chromosome",
			e.Pos.Chrom, e.Pos, e.Prev)
	}
	return fmt.Sprintf("crossmap: position %v follows %v; input must be sorted", e.Pos, e.Prev)
}

// ParseError reports a read name that is not of the form "chr:coord(+)".
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("crossmap: malformed read name %q: %s", e.Token, e.Reason)
}

// ConfigError reports an invalid parameter.
type ConfigError struct {
	Param string
	Value interface{}
	Want  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("crossmap: invalid %s %v, want %s", e.Param, e.Value, e.Want)
}

// DataError reports a Run whose reflection onto the minus strand, or whose
// offset-adjusted coordinate, falls outside the representable range.
type DataError struct {
	Run    Run
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("crossmap: run %v: %s", e.Run, e.Reason)
}
