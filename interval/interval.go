// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package interval

import (
	"fmt"
)

// Strand identifies the genomic strand an Interval lies on.
type Strand byte

const (
	// Plus is the forward strand.
	Plus Strand = '+'
	// Minus is the reverse strand.
	Minus Strand = '-'
)

// String implements fmt.Stringer.
func (s Strand) String() string {
	switch s {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return fmt.Sprintf("Strand(%d)", byte(s))
}

// ParseStrand converts "+" or "-" to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Plus, nil
	case "-":
		return Minus, nil
	}
	return 0, fmt.Errorf("interval.ParseStrand: invalid strand %q", s)
}

// Interval is a stranded, 0-based, half-open genomic interval
// [Start, End).  A well-formed Interval has Start < End.
type Interval struct {
	Chrom  string
	Start  PosType
	End    PosType
	Strand Strand
}

// Len returns the number of bases covered by the interval.
func (iv Interval) Len() int {
	return int(iv.End - iv.Start)
}

// Validate checks the Start < End invariant and the strand.
func (iv Interval) Validate() error {
	if iv.Chrom == "" {
		return fmt.Errorf("interval.Validate: empty chromosome name")
	}
	if iv.Start < 0 || iv.Start >= iv.End {
		return fmt.Errorf("interval.Validate: invalid coordinate pair [%d, %d) on %s", iv.Start, iv.End, iv.Chrom)
	}
	if iv.Strand != Plus && iv.Strand != Minus {
		return fmt.Errorf("interval.Validate: invalid strand %v on %s:%d-%d", iv.Strand, iv.Chrom, iv.Start, iv.End)
	}
	return nil
}

// String returns "chrom:start-end(strand)".
func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d(%v)", iv.Chrom, iv.Start, iv.End, iv.Strand)
}

// Chain is an ordered set of non-overlapping Intervals sharing one chromosome
// and strand, together representing a single feature.  Crossmap masks always
// produce single-interval chains, but the BED writer handles any number of
// blocks.
type Chain []Interval

// NewChain builds a Chain from ivs, checking the chain invariants.
func NewChain(ivs ...Interval) (Chain, error) {
	c := Chain(ivs)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that c is nonempty, that every member is well-formed, that
// all members share a chromosome and strand, and that members are sorted and
// non-overlapping.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("interval.Chain: empty chain")
	}
	for i, iv := range c {
		if err := iv.Validate(); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := c[i-1]
		if iv.Chrom != prev.Chrom || iv.Strand != prev.Strand {
			return fmt.Errorf("interval.Chain: mixed chromosome/strand %v, %v", prev, iv)
		}
		if iv.Start < prev.End {
			return fmt.Errorf("interval.Chain: overlapping or unsorted members %v, %v", prev, iv)
		}
	}
	return nil
}

// Span returns the smallest Interval covering every member of c.  c must be
// nonempty.
func (c Chain) Span() Interval {
	return Interval{
		Chrom:  c[0].Chrom,
		Start:  c[0].Start,
		End:    c[len(c)-1].End,
		Strand: c[0].Strand,
	}
}

// Len returns the number of bases covered by the members of c.
func (c Chain) Len() int {
	n := 0
	for _, iv := range c {
		n += iv.Len()
	}
	return n
}
