package aligner

import (
	"bufio"
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/vreuter/plastid/encoding/fasta"
)

// MaxExactK is the longest k-mer Exact can encode.
const MaxExactK = 32

const invalidBits = uint8(255)

var (
	baseBits     [256]uint8
	compBaseBits [256]uint8
)

func init() {
	for i := range baseBits {
		baseBits[i] = invalidBits
		compBaseBits[i] = invalidBits
	}
	for i, ch := range []byte("ACGT") {
		baseBits[ch] = uint8(i)
		baseBits[ch+'a'-'A'] = uint8(i)
		compBaseBits[ch] = uint8(3 - i)
		compBaseBits[ch+'a'-'A'] = uint8(3 - i)
	}
}

// kmer is a 2-bit encoding of up to MaxExactK bases.
type kmer uint64

// encode returns the smaller of the forward and reverse-complement encodings
// of seq, and whether seq is its own reverse complement.  ok is false if seq
// contains a base other than ACGT.
func encode(seq string) (canonical kmer, palindrome, ok bool) {
	var fw, rc kmer
	shift := uint(2 * (len(seq) - 1))
	for i := 0; i < len(seq); i++ {
		b := baseBits[seq[i]]
		if b == invalidBits {
			return 0, false, false
		}
		fw = fw<<2 | kmer(b)
		rc = rc>>2 | kmer(compBaseBits[seq[i]])<<shift
	}
	if rc < fw {
		return rc, false, true
	}
	return fw, fw == rc, true
}

// Exact is an in-process aligner for small genomes.  A k-mer multimaps if
// its sequence, or its reverse complement, occurs more than once among the
// k-mers, which matches bowtie with -v 0 when the k-mer file holds every
// k-mer of the genome.  K-mers containing anything but ACGT never align.
// Every distinct k-mer is held in memory.
type Exact struct{}

// Multimappers implements crossmap.Aligner.
func (Exact) Multimappers(ctx context.Context, kmerPath, outPath string) (err error) {
	counts := make(map[kmer]uint32)
	if err = scanKmers(ctx, kmerPath, func(rec *fasta.Record, km kmer, palindrome bool) error {
		n := uint32(1)
		if palindrome {
			n = 2
		}
		counts[km] += n
		return nil
	}); err != nil {
		return err
	}
	log.Debug.Printf("aligner: %d distinct k-mers in %s", len(counts), kmerPath)

	out, err := file.Create(ctx, outPath)
	if err != nil {
		return errors.E(err, "aligner.Exact", outPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	bw := bufio.NewWriterSize(out.Writer(ctx), 1<<20)
	w := fasta.NewWriter(bw, 0)
	if err = scanKmers(ctx, kmerPath, func(rec *fasta.Record, km kmer, _ bool) error {
		if counts[km] > 1 {
			return w.Write(rec)
		}
		return nil
	}); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.E(err, "aligner.Exact", outPath)
	}
	return nil
}

// scanKmers calls fn for every k-mer in the FASTA at path that contains only
// ACGT.
func scanKmers(ctx context.Context, path string, fn func(rec *fasta.Record, km kmer, palindrome bool) error) error {
	sc, closer, err := fasta.OpenScanner(ctx, path, fasta.All)
	if err != nil {
		return err
	}
	var (
		rec fasta.Record
		n   int
	)
	for sc.Scan(&rec) {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				_ = closer(ctx)
				return err
			}
		}
		n++
		if len(rec.Seq) > MaxExactK {
			_ = closer(ctx)
			return errors.E(errors.Invalid, fmt.Sprintf("aligner.Exact: k-mer %s is longer than %d bases", rec.Name, MaxExactK))
		}
		if len(rec.Seq) == 0 {
			continue
		}
		km, palindrome, ok := encode(rec.Seq)
		if !ok {
			continue
		}
		if err := fn(&rec, km, palindrome); err != nil {
			_ = closer(ctx)
			return err
		}
	}
	if err := sc.Err(); err != nil {
		_ = closer(ctx)
		return errors.E(err, "aligner.Exact", path)
	}
	return closer(ctx)
}
