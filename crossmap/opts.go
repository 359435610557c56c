package crossmap

import (
	"fmt"
)

// MaxMismatches is the largest mismatch count bowtie accepts in -v mode.
const MaxMismatches = 3

// Opts configures Make.
type Opts struct {
	Params
	// SeqFile is the genome FASTA, or the k-mer FASTA if HaveKmers is set.
	SeqFile string
	// OutBase prefixes every output file; see KmerPath, MultimapPath and
	// BEDPath.
	OutBase string
	// Mismatches is the number of mismatches allowed when aligning k-mers.
	Mismatches int
	// HaveKmers means SeqFile already holds diced k-mers.
	HaveKmers bool
	// KeepMultimappers keeps the aligner's multimapper file after assembly.
	KeepMultimappers bool
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Params: Params{K: DefaultK, Offset: DefaultOffset},
}

// Validate checks o once, before any file is touched.  Errors are of type
// *ConfigError.
func (o *Opts) Validate() error {
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if o.Mismatches < 0 || o.Mismatches > MaxMismatches {
		return &ConfigError{Param: "mismatch count", Value: o.Mismatches, Want: fmt.Sprintf("0..%d", MaxMismatches)}
	}
	if o.SeqFile == "" {
		return &ConfigError{Param: "sequence file", Value: `""`, Want: "a path"}
	}
	if o.OutBase == "" {
		return &ConfigError{Param: "output base", Value: `""`, Want: "a path prefix"}
	}
	return nil
}

func (o *Opts) prefix() string {
	return fmt.Sprintf("%s_%d_%d", o.OutBase, o.K, o.Mismatches)
}

// KmerPath is where diced k-mers are written.
func (o *Opts) KmerPath() string { return o.prefix() + "_kmers.fa" }

// MultimapPath is where the aligner writes multimapping k-mers.
func (o *Opts) MultimapPath() string { return o.prefix() + "_multimap.fa" }

// BEDPath is where the mask is written.
func (o *Opts) BEDPath() string { return o.prefix() + "_crossmap.bed" }
