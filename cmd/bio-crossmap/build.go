package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/vreuter/plastid/aligner"
	"github.com/vreuter/plastid/crossmap"
	"v.io/x/lib/cmdline"
)

type paramFlags struct {
	k, offset *int
}

func addParamFlags(fs *flag.FlagSet, withOffset bool) paramFlags {
	f := paramFlags{
		k: fs.Int("k", crossmap.DefaultOpts.K, "K-mer length"),
	}
	if withOffset {
		f.offset = fs.Int("offset", crossmap.DefaultOpts.Offset,
			"Offset from the 5' end of each k-mer at which it is counted; conventionally k/2")
	}
	return f
}

func (f paramFlags) params() crossmap.Params {
	p := crossmap.Params{K: *f.k}
	if f.offset != nil {
		p.Offset = *f.offset
	}
	return p
}

func newCmdMake() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "make",
		Short:    "Dice a genome, align the k-mers with bowtie, and assemble the mask",
		ArgsName: "seqfile bowtie-index outbase",
		Long: `
make writes three files named after outbase, k and the mismatch count:

  <outbase>_<k>_<mismatches>_kmers.fa      diced k-mers (skipped with -have-kmers)
  <outbase>_<k>_<mismatches>_multimap.fa   k-mers bowtie placed more than once
  <outbase>_<k>_<mismatches>_crossmap.bed  the mask, plus and minus strand

The multimapper file is removed once the mask is built unless
-keep-multimappers is set.  With -aligner=exact the bowtie-index argument is
ignored.
`,
	}
	params := addParamFlags(&cmd.Flags, true)
	var (
		mismatches       = cmd.Flags.Int("mismatches", crossmap.DefaultOpts.Mismatches, "Mismatches allowed when aligning k-mers (0-3)")
		bowtiePath       = cmd.Flags.String("bowtie", aligner.DefaultBowtiePath, "Path to the bowtie binary; looked up in PATH if missing")
		processors       = cmd.Flags.Int("processors", 1, "Number of bowtie threads")
		haveKmers        = cmd.Flags.Bool("have-kmers", false, "seqfile already holds diced k-mers")
		keepMultimappers = cmd.Flags.Bool("keep-multimappers", false, "Keep the multimapper FASTA file")
		alignerName      = cmd.Flags.String("aligner", "bowtie", `Aligner used to find multimappers: "bowtie", or "exact" to count
identical k-mers in memory (small genomes only; k <= 32, no mismatches)`)
	)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return env.UsageErrorf("make takes seqfile, bowtie-index and outbase, but got %v", argv)
		}
		opts := crossmap.DefaultOpts
		opts.Params = params.params()
		opts.SeqFile = argv[0]
		opts.OutBase = argv[2]
		opts.Mismatches = *mismatches
		opts.HaveKmers = *haveKmers
		opts.KeepMultimappers = *keepMultimappers
		var al crossmap.Aligner
		switch *alignerName {
		case "bowtie":
			al = aligner.Bowtie{
				Path:       *bowtiePath,
				Index:      argv[1],
				Mismatches: *mismatches,
				Processors: *processors,
			}
		case "exact":
			if opts.K > aligner.MaxExactK {
				return report(&crossmap.ConfigError{Param: "k-mer length for -aligner=exact", Value: opts.K, Want: fmt.Sprintf("<= %d", aligner.MaxExactK)})
			}
			if opts.Mismatches != 0 {
				return report(&crossmap.ConfigError{Param: "mismatch count for -aligner=exact", Value: opts.Mismatches, Want: "0"})
			}
			al = aligner.Exact{}
		default:
			return env.UsageErrorf("unknown -aligner %q", *alignerName)
		}
		return report(runMake(vcontext.Background(), &opts, al))
	})
	return cmd
}

func runMake(ctx context.Context, opts *crossmap.Opts, al crossmap.Aligner) error {
	stats, err := crossmap.Make(ctx, opts, al)
	if err != nil {
		return err
	}
	log.Printf("crossmap mask %s done: %v", opts.BEDPath(), stats)
	return nil
}

func newCmdDice() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "dice",
		Short:    "Write every k-mer of a genome as FASTA, named chrom:pos(+)",
		ArgsName: "genome.fa kmers.fa",
	}
	params := addParamFlags(&cmd.Flags, false)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return env.UsageErrorf("dice takes an input and an output path, but got %v", argv)
		}
		p := params.params()
		if err := p.Validate(); err != nil {
			return report(err)
		}
		stats, err := crossmap.DiceFile(vcontext.Background(), argv[0], argv[1], p.K)
		if err != nil {
			return report(err)
		}
		log.Printf("wrote %d k-mers from %d sequences (%d shorter than k) to %s",
			stats.Kmers, stats.Seqs, stats.Short, argv[1])
		return nil
	})
	return cmd
}

func newCmdAssemble() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "assemble",
		Short:    "Assemble a sorted multimapper FASTA into a crossmap BED mask",
		ArgsName: "multimap.fa mask.bed",
		Long: `
The multimapper FASTA must name each k-mer chrom:pos(+), with positions
ascending within each chromosome and each chromosome in one block, as bowtie
writes them for k-mers produced by dice.
`,
	}
	params := addParamFlags(&cmd.Flags, true)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return env.UsageErrorf("assemble takes an input and an output path, but got %v", argv)
		}
		stats, err := crossmap.AssembleFile(vcontext.Background(), argv[0], argv[1], params.params())
		if err != nil {
			return report(err)
		}
		fmt.Fprintf(env.Stdout, "%v\n", stats)
		return nil
	})
	return cmd
}
