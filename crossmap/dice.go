package crossmap

import (
	"context"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/vreuter/plastid/biosimd"
	"github.com/vreuter/plastid/encoding/fasta"
	"github.com/vreuter/plastid/interval"
)

// diceWindow is the number of k-mer start positions fetched from the genome at
// once.
var diceWindow uint64 = 1 << 20

// DiceStats summarizes a Dice call.
type DiceStats struct {
	// Seqs is the number of sequences diced.
	Seqs int
	// Short is the number of sequences shorter than k, which yield no k-mers.
	Short int
	// Kmers is the number of k-mers written.
	Kmers int64
}

// Dice writes every k-mer of every sequence in genome to w, in sequence order
// then position order.  The k-mer starting at 0-based position x of sequence
// chr is named "chr:x(+)".  Bases are upper-cased and anything other than ACGT
// becomes N.  Sequences are fetched in windows, so an indexed genome is never
// fully loaded.
func Dice(ctx context.Context, genome fasta.Fasta, w *fasta.Writer, k int) (DiceStats, error) {
	var stats DiceStats
	if k < 1 {
		return stats, &ConfigError{Param: "k-mer length", Value: k, Want: ">= 1"}
	}
	var (
		name []byte
		seq  []byte
	)
	for _, chrom := range genome.SeqNames() {
		n, err := genome.Len(chrom)
		if err != nil {
			return stats, errors.E(err, "crossmap.Dice", chrom)
		}
		if n > uint64(interval.PosTypeMax) {
			return stats, errors.E(errors.Invalid, "crossmap.Dice", chrom, "sequence longer than the coordinate range")
		}
		stats.Seqs++
		if n < uint64(k) {
			stats.Short++
			continue
		}
		nKmers := n - uint64(k) + 1
		for x0 := uint64(0); x0 < nKmers; x0 += diceWindow {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			x1 := x0 + diceWindow
			if x1 > nKmers {
				x1 = nKmers
			}
			window, err := genome.Get(chrom, x0, x1+uint64(k)-1)
			if err != nil {
				return stats, errors.E(err, "crossmap.Dice", chrom)
			}
			seq = append(seq[:0], window...)
			biosimd.CleanASCIISeqInplace(seq)
			for x := x0; x < x1; x++ {
				name = append(name[:0], chrom...)
				name = append(name, ':')
				name = strconv.AppendUint(name, x, 10)
				name = append(name, readNameSuffix...)
				off := x - x0
				if err := w.WriteSeq(string(name), string(seq[off:off+uint64(k)])); err != nil {
					return stats, errors.E(err, "crossmap.Dice: write")
				}
				stats.Kmers++
			}
		}
	}
	return stats, nil
}
