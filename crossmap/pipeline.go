package crossmap

import (
	"bufio"
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/vreuter/plastid/encoding/fasta"
	"github.com/vreuter/plastid/interval"
)

// Aligner finds the k-mers that align to more than one genomic locus.
type Aligner interface {
	// Multimappers aligns the k-mer FASTA at kmerPath and writes the k-mers
	// with more than one alignment to outPath as FASTA, preserving input order.
	Multimappers(ctx context.Context, kmerPath, outPath string) error
}

// Make builds a crossmap mask: it dices opts.SeqFile (unless opts.HaveKmers),
// aligns the k-mers with al, and assembles the multimappers into
// opts.BEDPath().  A failed assembly leaves no BED file behind.
func Make(ctx context.Context, opts *Opts, al Aligner) (Stats, error) {
	if err := opts.Validate(); err != nil {
		return Stats{}, err
	}
	if _, err := file.Stat(ctx, opts.SeqFile); err != nil {
		return Stats{}, errors.E(errors.NotExist, "crossmap.Make: sequence file", opts.SeqFile, err)
	}
	kmerPath := opts.SeqFile
	if !opts.HaveKmers {
		kmerPath = opts.KmerPath()
		log.Printf("dicing %s into %d-mers at %s", opts.SeqFile, opts.K, kmerPath)
		ds, err := DiceFile(ctx, opts.SeqFile, kmerPath, opts.K)
		if err != nil {
			return Stats{}, err
		}
		log.Printf("wrote %d k-mers from %d sequences (%d shorter than k)", ds.Kmers, ds.Seqs, ds.Short)
	}

	mmPath := opts.MultimapPath()
	log.Printf("aligning %s, %d mismatches, multimappers to %s", kmerPath, opts.Mismatches, mmPath)
	if err := al.Multimappers(ctx, kmerPath, mmPath); err != nil {
		return Stats{}, err
	}
	if _, err := file.Stat(ctx, mmPath); err != nil {
		return Stats{}, errors.E(errors.NotExist, "crossmap.Make: aligner wrote no multimapper file", mmPath, err)
	}

	bedPath := opts.BEDPath()
	log.Printf("assembling %s into %s", mmPath, bedPath)
	stats, err := AssembleFile(ctx, mmPath, bedPath, opts.Params)
	if err != nil {
		return stats, err
	}
	log.Printf("%s: %v", bedPath, stats)
	if !opts.KeepMultimappers {
		if err := file.Remove(ctx, mmPath); err != nil {
			log.Error.Printf("remove %s: %v", mmPath, err)
		}
	}
	log.Printf("convert to BigBed with: bedToBigBed -type=bed12 %s <chrom.sizes> %s",
		bedPath, bedPath[:len(bedPath)-len(".bed")]+".bb")
	return stats, nil
}

// DiceFile dices the genome FASTA at genomePath into k-mers written to
// outPath, gzipped if outPath ends in .gz.
func DiceFile(ctx context.Context, genomePath, outPath string, k int) (stats DiceStats, err error) {
	genome, closeGenome, err := fasta.Open(ctx, genomePath)
	if err != nil {
		return stats, err
	}
	defer func() {
		if e := closeGenome(ctx); e != nil && err == nil {
			err = e
		}
	}()
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return stats, errors.E(err, "crossmap.DiceFile", outPath)
	}
	defer file.CloseAndReport(ctx, out, &err)

	var (
		w  io.Writer = out.Writer(ctx)
		gz *gzip.Writer
	)
	if fileio.DetermineType(outPath) == fileio.Gzip {
		gz = gzip.NewWriter(w)
		w = gz
	}
	bw := bufio.NewWriterSize(w, 1<<20)
	if stats, err = Dice(ctx, genome, fasta.NewWriter(bw, 0), k); err != nil {
		return stats, err
	}
	if err = bw.Flush(); err != nil {
		return stats, errors.E(err, "crossmap.DiceFile", outPath)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			return stats, errors.E(err, "crossmap.DiceFile", outPath)
		}
	}
	return stats, nil
}

// AssembleFile assembles the multimapper FASTA at namesPath into a BED mask at
// bedPath.  The BED file is removed if assembly fails.
func AssembleFile(ctx context.Context, namesPath, bedPath string, params Params) (stats Stats, err error) {
	if err = params.Validate(); err != nil {
		return stats, err
	}
	sc, closeNames, err := fasta.OpenScanner(ctx, namesPath, fasta.Name)
	if err != nil {
		return stats, err
	}
	defer func() {
		if e := closeNames(ctx); e != nil && err == nil {
			err = e
		}
	}()
	out, err := file.Create(ctx, bedPath)
	if err != nil {
		return stats, errors.E(err, "crossmap.AssembleFile", bedPath)
	}
	defer func() {
		file.CloseAndReport(ctx, out, &err)
		if err != nil {
			if e := file.Remove(ctx, bedPath); e != nil {
				log.Error.Printf("remove partial mask %s: %v", bedPath, e)
			}
		}
	}()
	w := interval.NewBEDWriter(out.Writer(ctx))
	if stats, err = Assemble(FASTAReadNames(sc), params, BEDEmitter(w)); err != nil {
		return stats, err
	}
	return stats, w.Flush()
}
