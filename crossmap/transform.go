package crossmap

import (
	"github.com/vreuter/plastid/interval"
)

const (
	// DefaultK is the default k-mer length.
	DefaultK = 29
	// DefaultOffset is the default 5' offset at which a k-mer is counted.
	DefaultOffset = 14
)

// Params are the k-mer length and 5' offset shared by every run of a mask.
type Params struct {
	K      int
	Offset int
}

// Validate returns a *ConfigError unless K >= 1 and Offset >= 0.
func (p Params) Validate() error {
	if p.K < 1 {
		return &ConfigError{Param: "k-mer length", Value: p.K, Want: ">= 1"}
	}
	if p.Offset < 0 {
		return &ConfigError{Param: "offset", Value: p.Offset, Want: ">= 0"}
	}
	if int64(p.K) > int64(interval.PosTypeMax) {
		return &ConfigError{Param: "k-mer length", Value: p.K, Want: "<= max coordinate"}
	}
	if int64(p.Offset) > int64(interval.PosTypeMax) {
		return &ConfigError{Param: "offset", Value: p.Offset, Want: "<= max coordinate"}
	}
	return nil
}

// Transformer turns Runs into plus and minus strand intervals.
type Transformer struct {
	k, offset int64
	// shift is k - 1 - 2*offset, the distance from a plus strand coordinate in
	// the position stream to its minus strand reflection.
	shift int64
}

// NewTransformer validates p and returns a Transformer for it.
func NewTransformer(p Params) (*Transformer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	k, offset := int64(p.K), int64(p.Offset)
	return &Transformer{k: k, offset: offset, shift: k - 1 - 2*offset}, nil
}

// Reflect maps an offset-adjusted plus strand coordinate to the minus strand.
func (t *Transformer) Reflect(fw int64) int64 {
	return fw + t.shift
}

// Unreflect is the inverse of Reflect.
func (t *Transformer) Unreflect(rc int64) int64 {
	return rc - t.shift
}

// Adjust adds the offset to a coordinate parsed from a read name.  Results past
// the coordinate range are reported as a *DataError.
func (t *Transformer) Adjust(p Position) (Position, error) {
	c := int64(p.Coord) + t.offset
	if c > int64(interval.PosTypeMax) {
		return Position{}, &DataError{
			Run:    Run{Chrom: p.Chrom, Start: p.Coord, End: p.Coord},
			Reason: "offset-adjusted coordinate exceeds the coordinate range",
		}
	}
	return Position{Chrom: p.Chrom, Coord: interval.PosType(c)}, nil
}

// Transform returns the plus strand interval covering r and its reflection on
// the minus strand, each as a single-member chain.  A minus interval that
// would start below zero or end past the coordinate range is a *DataError.
func (t *Transformer) Transform(r Run) (plus, minus interval.Chain, err error) {
	if r.End < r.Start {
		return nil, nil, &DataError{Run: r, Reason: "run ends before it starts"}
	}
	end := int64(r.End) + 1
	if end > int64(interval.PosTypeMax) {
		return nil, nil, &DataError{Run: r, Reason: "plus strand end exceeds the coordinate range"}
	}
	rcStart, rcEnd := t.Reflect(int64(r.Start)), t.Reflect(int64(r.End))+1
	if rcStart < 0 {
		return nil, nil, &DataError{Run: r, Reason: "minus strand start is negative; offset is inconsistent with k"}
	}
	if rcEnd > int64(interval.PosTypeMax) {
		return nil, nil, &DataError{Run: r, Reason: "minus strand end exceeds the coordinate range"}
	}
	plus = interval.Chain{{Chrom: r.Chrom, Start: r.Start, End: interval.PosType(end), Strand: interval.Plus}}
	minus = interval.Chain{{
		Chrom:  r.Chrom,
		Start:  interval.PosType(rcStart),
		End:    interval.PosType(rcEnd),
		Strand: interval.Minus,
	}}
	return plus, minus, nil
}
