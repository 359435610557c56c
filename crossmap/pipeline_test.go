package crossmap_test

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vreuter/plastid/crossmap"
	"github.com/vreuter/plastid/encoding/fasta"
)

// exactAligner stands in for bowtie: a k-mer multimaps if its sequence occurs
// more than once among the k-mers, on the plus strand only.
type exactAligner struct {
	kmerPath string
}

func (a *exactAligner) Multimappers(ctx context.Context, kmerPath, outPath string) error {
	a.kmerPath = kmerPath
	sc, closer, err := fasta.OpenScanner(ctx, kmerPath, fasta.All)
	if err != nil {
		return err
	}
	defer closer(ctx) // nolint: errcheck
	var recs []fasta.Record
	counts := map[string]int{}
	var rec fasta.Record
	for sc.Scan(&rec) {
		recs = append(recs, rec)
		counts[rec.Seq]++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	w := fasta.NewWriter(&buf, 0)
	for i := range recs {
		if counts[recs[i].Seq] > 1 {
			if err := w.Write(&recs[i]); err != nil {
				return err
			}
		}
	}
	return ioutil.WriteFile(outPath, buf.Bytes(), 0644)
}

// fixedAligner writes the given names regardless of its input.
type fixedAligner []string

func (a fixedAligner) Multimappers(ctx context.Context, kmerPath, outPath string) error {
	var buf bytes.Buffer
	for _, name := range a {
		fmt.Fprintf(&buf, ">%s\nAAA\n", name)
	}
	return ioutil.WriteFile(outPath, buf.Bytes(), 0644)
}

type failingAligner struct{}

func (failingAligner) Multimappers(ctx context.Context, kmerPath, outPath string) error {
	return fmt.Errorf("aligner exploded")
}

type silentAligner struct{}

func (silentAligner) Multimappers(ctx context.Context, kmerPath, outPath string) error { return nil }

const makeGenome = ">chr1\nAAAAAAAA\n>chr2\nCCGT\n"

func setupMake(t *testing.T) (opts *crossmap.Opts, dir string, cleanup func()) {
	dir, cleanup = testutil.TempDir(t, "", "")
	genomePath := filepath.Join(dir, "genome.fa")
	require.NoError(t, ioutil.WriteFile(genomePath, []byte(makeGenome), 0644))
	opts = &crossmap.Opts{
		Params:  crossmap.Params{K: 3, Offset: 1},
		SeqFile: genomePath,
		OutBase: filepath.Join(dir, "genome"),
	}
	return opts, dir, cleanup
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestMake(t *testing.T) {
	ctx := context.Background()
	opts, dir, cleanup := setupMake(t)
	defer cleanup()

	require.Equal(t, filepath.Join(dir, "genome_3_0_kmers.fa"), opts.KmerPath())
	require.Equal(t, filepath.Join(dir, "genome_3_0_multimap.fa"), opts.MultimapPath())
	require.Equal(t, filepath.Join(dir, "genome_3_0_crossmap.bed"), opts.BEDPath())

	al := &exactAligner{}
	stats, err := crossmap.Make(ctx, opts, al)
	require.NoError(t, err)
	require.Equal(t, opts.KmerPath(), al.kmerPath)
	require.True(t, exists(opts.KmerPath()))
	require.False(t, exists(opts.MultimapPath()))
	require.Equal(t, int64(6), stats.Names)
	require.Equal(t, int64(1), stats.Runs)

	// chr1:0..5 shifted by offset 1; k-1-2*offset is 0.
	bed, err := ioutil.ReadFile(opts.BEDPath())
	require.NoError(t, err)
	require.Equal(t,
		"chr1\t1\t7\tchr1:1-7(+)\t0\t+\t1\t7\t0,0,0\t1\t6,\t0,\n"+
			"chr1\t1\t7\tchr1:1-7(-)\t0\t-\t1\t7\t0,0,0\t1\t6,\t0,\n",
		string(bed))
}

func TestMakeHaveKmers(t *testing.T) {
	ctx := context.Background()
	opts, dir, cleanup := setupMake(t)
	defer cleanup()
	kmers := filepath.Join(dir, "mykmers.fa")
	require.NoError(t, ioutil.WriteFile(kmers, []byte(">chr9:4(+)\nACG\n>chr9:5(+)\nACG\n"), 0644))
	opts.SeqFile = kmers
	opts.HaveKmers = true
	opts.KeepMultimappers = true

	al := &exactAligner{}
	_, err := crossmap.Make(ctx, opts, al)
	require.NoError(t, err)
	require.Equal(t, kmers, al.kmerPath)
	require.False(t, exists(opts.KmerPath()))
	require.True(t, exists(opts.MultimapPath()))
	bed, err := ioutil.ReadFile(opts.BEDPath())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(bed), "chr9\t5\t7\tchr9:5-7(+)"), string(bed))
}

func TestMakeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("config", func(t *testing.T) {
		opts, _, cleanup := setupMake(t)
		defer cleanup()
		opts.Mismatches = 4
		_, err := crossmap.Make(ctx, opts, silentAligner{})
		_, ok := err.(*crossmap.ConfigError)
		require.True(t, ok, "%v", err)
	})

	t.Run("missing seqfile", func(t *testing.T) {
		opts, dir, cleanup := setupMake(t)
		defer cleanup()
		opts.SeqFile = filepath.Join(dir, "nope.fa")
		_, err := crossmap.Make(ctx, opts, silentAligner{})
		require.True(t, errors.Is(errors.NotExist, err), "%v", err)
	})

	t.Run("aligner failure", func(t *testing.T) {
		opts, _, cleanup := setupMake(t)
		defer cleanup()
		_, err := crossmap.Make(ctx, opts, failingAligner{})
		require.EqualError(t, err, "aligner exploded")
		require.False(t, exists(opts.BEDPath()))
	})

	t.Run("no multimapper file", func(t *testing.T) {
		opts, _, cleanup := setupMake(t)
		defer cleanup()
		_, err := crossmap.Make(ctx, opts, silentAligner{})
		require.True(t, errors.Is(errors.NotExist, err), "%v", err)
	})

	t.Run("unsorted multimappers", func(t *testing.T) {
		opts, _, cleanup := setupMake(t)
		defer cleanup()
		_, err := crossmap.Make(ctx, opts, fixedAligner{"chr1:1(+)", "chr2:5(+)", "chr2:3(+)"})
		_, ok := err.(*crossmap.OrderingError)
		require.True(t, ok, "%v", err)
		require.False(t, exists(opts.BEDPath()))
	})

	t.Run("malformed multimapper", func(t *testing.T) {
		opts, _, cleanup := setupMake(t)
		defer cleanup()
		_, err := crossmap.Make(ctx, opts, fixedAligner{"chr1:1(-)"})
		_, ok := err.(*crossmap.ParseError)
		require.True(t, ok, "%v", err)
		require.False(t, exists(opts.BEDPath()))
	})
}

func TestMakeEmptyMultimappers(t *testing.T) {
	opts, _, cleanup := setupMake(t)
	defer cleanup()
	stats, err := crossmap.Make(context.Background(), opts, fixedAligner{})
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.Runs)
	bed, err := ioutil.ReadFile(opts.BEDPath())
	require.NoError(t, err)
	require.Equal(t, "", string(bed))
}
