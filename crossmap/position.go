package crossmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vreuter/plastid/interval"
)

// readNameSuffix terminates every k-mer read name.  Only plus strand k-mers
// are generated.
const readNameSuffix = "(+)"

// Position is a 0-based coordinate on a chromosome.
type Position struct {
	Chrom string
	Coord interval.PosType
}

// String returns "chrom:coord".
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Chrom, p.Coord)
}

// ReadName returns the k-mer read name for p, the inverse of ParseReadName.
func (p Position) ReadName() string {
	return p.String() + readNameSuffix
}

// ParseReadName parses a k-mer read name "<chrom>:<coord>(+)".  The chromosome
// name may itself contain ':'; the coordinate follows the last one.  Errors
// are of type *ParseError.
func ParseReadName(name string) (Position, error) {
	if !strings.HasSuffix(name, readNameSuffix) {
		return Position{}, &ParseError{name, "missing (+) suffix"}
	}
	body := name[:len(name)-len(readNameSuffix)]
	colon := strings.LastIndexByte(body, ':')
	if colon <= 0 {
		return Position{}, &ParseError{name, "missing chromosome"}
	}
	digits := body[colon+1:]
	if digits == "" {
		return Position{}, &ParseError{name, "missing coordinate"}
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Position{}, &ParseError{name, "coordinate is not a non-negative integer"}
		}
	}
	coord, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return Position{}, &ParseError{name, "coordinate out of range"}
	}
	return Position{Chrom: body[:colon], Coord: interval.PosType(coord)}, nil
}
