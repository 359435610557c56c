package crossmap

import (
	"io"

	"github.com/vreuter/plastid/encoding/fasta"
	"github.com/vreuter/plastid/interval"
)

// ReadNames is a stream of k-mer read names, iterated like bufio.Scanner.
type ReadNames interface {
	// Scan advances to the next name, returning false at the end of the stream
	// or on error.
	Scan() bool
	// Name returns the current name.
	Name() string
	// Err returns the error that stopped Scan, if any.
	Err() error
}

type fastaNames struct {
	sc  *fasta.Scanner
	rec fasta.Record
}

// NewFASTAReadNames returns the record names of the FASTA data in r, such as
// the multimapper file written by the aligner.  Sequences are skipped.
func NewFASTAReadNames(r io.Reader) ReadNames {
	return FASTAReadNames(fasta.NewScanner(r, fasta.Name))
}

// FASTAReadNames adapts a FASTA scanner to ReadNames.
func FASTAReadNames(sc *fasta.Scanner) ReadNames {
	return &fastaNames{sc: sc}
}

func (f *fastaNames) Scan() bool   { return f.sc.Scan(&f.rec) }
func (f *fastaNames) Name() string { return f.rec.Name }
func (f *fastaNames) Err() error   { return f.sc.Err() }

type sliceNames struct {
	names []string
	i     int
}

// NewSliceReadNames returns a ReadNames over an in-memory list.
func NewSliceReadNames(names []string) ReadNames {
	return &sliceNames{names: names, i: -1}
}

func (s *sliceNames) Scan() bool {
	if s.i+1 >= len(s.names) {
		s.i = len(s.names)
		return false
	}
	s.i++
	return true
}

func (s *sliceNames) Name() string { return s.names[s.i] }
func (s *sliceNames) Err() error   { return nil }

// EmitFunc receives one plus/minus interval pair per run, plus first.
type EmitFunc func(plus, minus interval.Chain) error

// BEDEmitter returns an EmitFunc writing each pair to w as two BED12 lines.
func BEDEmitter(w *interval.BEDWriter) EmitFunc {
	return func(plus, minus interval.Chain) error {
		if err := w.Write(plus); err != nil {
			return err
		}
		return w.Write(minus)
	}
}

// Assemble reads k-mer names from names, groups their offset-adjusted
// positions into runs, and calls emit with the plus and minus intervals of
// each run in the order runs close.  Params are validated before any name is
// read.  Assemble stops at the first error, which is returned as is:
// *ConfigError, *ParseError, *OrderingError and *DataError come from the
// input, anything else from names or emit.  An empty stream emits nothing.
func Assemble(names ReadNames, params Params, emit EmitFunc) (Stats, error) {
	t, err := NewTransformer(params)
	if err != nil {
		return Stats{}, err
	}
	var (
		g     Grouper
		stats Stats
	)
	closeRun := func(r Run) error {
		plus, minus, err := t.Transform(r)
		if err != nil {
			return err
		}
		if err := emit(plus, minus); err != nil {
			return err
		}
		stats.add(r, plus, minus)
		return nil
	}
	for names.Scan() {
		pos, err := ParseReadName(names.Name())
		if err != nil {
			return stats, err
		}
		if pos, err = t.Adjust(pos); err != nil {
			return stats, err
		}
		stats.Names++
		r, closed, err := g.Add(pos)
		if err != nil {
			return stats, err
		}
		if closed {
			if err := closeRun(r); err != nil {
				return stats, err
			}
		}
	}
	if err := names.Err(); err != nil {
		return stats, err
	}
	if r, ok := g.Flush(); ok {
		if err := closeRun(r); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
