package main

import (
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/vreuter/plastid/encoding/fasta"
	"github.com/vreuter/plastid/interval"
	"v.io/x/lib/cmdline"
)

var bothStrands = []interval.Strand{interval.Plus, interval.Minus}

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stats",
		Short:    "Report masked bases per reference and strand",
		ArgsName: "mask.bed genome.fa",
		Long: `
stats prints one TSV line per genome sequence, in genome order:

  #chrom length plus_masked minus_masked plus_fraction minus_fraction
`,
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return env.UsageErrorf("stats takes a mask and a genome path, but got %v", argv)
		}
		return report(maskStats(vcontext.Background(), env.Stdout, argv[0], argv[1]))
	})
	return cmd
}

// referenceHeader builds a SAM header listing the sequences of genome.
func referenceHeader(genome fasta.Fasta) (*sam.Header, error) {
	var refs []*sam.Reference
	for _, name := range genome.SeqNames() {
		n, err := genome.Len(name)
		if err != nil {
			return nil, err
		}
		if n > uint64(interval.PosTypeMax) {
			return nil, errors.E(errors.Invalid, "sequence", name, "is too long")
		}
		ref, err := sam.NewReference(name, "", "", int(n), nil, nil)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return sam.NewHeader(nil, refs)
}

func loadMask(path string, header *sam.Header) (map[interval.Strand]*interval.BEDUnion, error) {
	masks := make(map[interval.Strand]*interval.BEDUnion)
	for _, strand := range bothStrands {
		u, err := interval.NewBEDUnionFromPath(path, interval.NewBEDOpts{SAMHeader: header, Strand: strand})
		if err != nil {
			return nil, errors.E(err, "load mask", path, strand.String())
		}
		masks[strand] = &u
	}
	return masks, nil
}

func maskStats(ctx context.Context, out io.Writer, bedPath, genomePath string) (err error) {
	genome, closeGenome, err := fasta.Open(ctx, genomePath)
	if err != nil {
		return err
	}
	defer func() {
		if e := closeGenome(ctx); e != nil && err == nil {
			err = e
		}
	}()
	header, err := referenceHeader(genome)
	if err != nil {
		return err
	}
	masks, err := loadMask(bedPath, header)
	if err != nil {
		return err
	}
	w := tsv.NewWriter(out)
	w.WriteString("#chrom\tlength\tplus_masked\tminus_masked\tplus_fraction\tminus_fraction")
	if err = w.EndLine(); err != nil {
		return err
	}
	for id, ref := range header.Refs() {
		length := ref.Len()
		w.WriteString(ref.Name())
		w.WriteInt64(int64(length))
		var covered [2]int
		for i, strand := range bothStrands {
			covered[i] = interval.CoveredBases(masks[strand].EndpointsByID(id), 0, interval.PosType(length))
			w.WriteInt64(int64(covered[i]))
		}
		for _, c := range covered {
			frac := 0.0
			if length > 0 {
				frac = float64(c) / float64(length)
			}
			w.WriteString(strconv.FormatFloat(frac, 'f', 6, 64))
		}
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

func newCmdQuery() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "query",
		Short:    "Print the masked parts of a region",
		ArgsName: "mask.bed region",
		Long: `
region is chrom, chrom:pos or chrom:start-end, 1-based and inclusive as in
samtools.  Masked intervals are printed as 0-based half-open BED:

  chrom start end strand
`,
	}
	strand := cmd.Flags.String("strand", "", "Only report this strand, + or -; both if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return env.UsageErrorf("query takes a mask path and a region, but got %v", argv)
		}
		strands := bothStrands
		if *strand != "" {
			s, err := interval.ParseStrand(*strand)
			if err != nil {
				return env.UsageErrorf("%v", err)
			}
			strands = []interval.Strand{s}
		}
		return report(maskQuery(env.Stdout, argv[0], argv[1], strands))
	})
	return cmd
}

func maskQuery(out io.Writer, bedPath, region string, strands []interval.Strand) error {
	r, err := interval.ParseRegionString(region)
	if err != nil {
		return err
	}
	masks, err := loadMask(bedPath, nil)
	if err != nil {
		return err
	}
	w := tsv.NewWriter(out)
	for _, strand := range strands {
		mask := masks[strand]
		us := interval.NewUnionScanner(mask.EndpointsByName(r.Chrom))
		us.Seek(r.Start)
		var start, end interval.PosType
		for us.Scan(&start, &end, r.End) {
			w.WriteString(r.Chrom)
			w.WriteInt64(int64(start))
			w.WriteInt64(int64(end))
			w.WriteByte(byte(strand))
			if err := w.EndLine(); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
