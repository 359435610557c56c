package crossmap

import (
	"fmt"

	"github.com/vreuter/plastid/interval"
)

// Run is a maximal block of consecutive positions on one chromosome.  End is
// inclusive.
type Run struct {
	Chrom      string
	Start, End interval.PosType
}

// Len returns the number of positions in r.
func (r Run) Len() int {
	return int(r.End-r.Start) + 1
}

func (r Run) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// Grouper collapses an ordered stream of positions into Runs.  Only the open
// run is held, so memory does not grow with run length.  The zero value is
// ready to use.
type Grouper struct {
	run  Run
	open bool
	// Chromosomes whose block has been closed.
	done map[string]struct{}
}

// Add feeds the next position.  If p closes the open run, the closed run is
// returned with ok set.  Positions must be strictly increasing within a
// chromosome, and a chromosome may not reappear once another has started;
// otherwise Add returns an *OrderingError and the Grouper state is unchanged.
func (g *Grouper) Add(p Position) (closed Run, ok bool, err error) {
	if !g.open {
		if _, seen := g.done[p.Chrom]; seen {
			return Run{}, false, &OrderingError{Pos: p, Prev: Position{g.run.Chrom, g.run.End}}
		}
		g.run = Run{Chrom: p.Chrom, Start: p.Coord, End: p.Coord}
		g.open = true
		return Run{}, false, nil
	}
	if p.Chrom != g.run.Chrom {
		if _, seen := g.done[p.Chrom]; seen {
			return Run{}, false, &OrderingError{Pos: p, Prev: Position{g.run.Chrom, g.run.End}}
		}
		if g.done == nil {
			g.done = make(map[string]struct{})
		}
		g.done[g.run.Chrom] = struct{}{}
		closed = g.run
		g.run = Run{Chrom: p.Chrom, Start: p.Coord, End: p.Coord}
		return closed, true, nil
	}
	switch delta := int64(p.Coord) - int64(g.run.End); {
	case delta == 1:
		g.run.End = p.Coord
		return Run{}, false, nil
	case delta > 1:
		closed = g.run
		g.run = Run{Chrom: p.Chrom, Start: p.Coord, End: p.Coord}
		return closed, true, nil
	default:
		return Run{}, false, &OrderingError{Pos: p, Prev: Position{g.run.Chrom, g.run.End}}
	}
}

// Flush closes and returns the open run, if any.  It must be called once the
// stream is exhausted.  A Grouper that never saw a position returns ok=false.
func (g *Grouper) Flush() (closed Run, ok bool) {
	if !g.open {
		return Run{}, false
	}
	g.open = false
	if g.done == nil {
		g.done = make(map[string]struct{})
	}
	g.done[g.run.Chrom] = struct{}{}
	return g.run, true
}
