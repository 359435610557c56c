package crossmap

import (
	"fmt"
	"strconv"

	farm "github.com/dgryski/go-farm"
	"github.com/vreuter/plastid/interval"
)

// Stats summarizes an assembly.
type Stats struct {
	// Names is the number of read names consumed.
	Names int64
	// Runs is the number of runs, and so of plus/minus pairs, emitted.
	Runs int64
	// Bases is the number of bases masked on each strand.
	Bases int64
	// Chroms is the number of chromosomes with at least one run.
	Chroms int
	// Fingerprint identifies the emitted pairs and their order.  Two
	// assemblies with equal fingerprints produce the same mask.
	Fingerprint uint64

	lastChrom string
	buf       []byte
}

func (s *Stats) add(r Run, plus, minus interval.Chain) {
	s.Runs++
	s.Bases += int64(r.Len())
	if s.Chroms == 0 || r.Chrom != s.lastChrom {
		s.Chroms++
		s.lastChrom = r.Chrom
	}
	s.buf = s.buf[:0]
	for _, c := range [2]interval.Chain{plus, minus} {
		for _, iv := range c {
			s.buf = append(s.buf, iv.Chrom...)
			s.buf = append(s.buf, 0)
			s.buf = strconv.AppendInt(s.buf, int64(iv.Start), 10)
			s.buf = append(s.buf, 0)
			s.buf = strconv.AppendInt(s.buf, int64(iv.End), 10)
			s.buf = append(s.buf, byte(iv.Strand))
		}
	}
	s.Fingerprint = farm.Hash64WithSeed(s.buf, s.Fingerprint)
}

func (s Stats) String() string {
	return fmt.Sprintf("names: %d runs: %d masked bases per strand: %d chromosomes: %d fingerprint: %016x",
		s.Names, s.Runs, s.Bases, s.Chroms, s.Fingerprint)
}
