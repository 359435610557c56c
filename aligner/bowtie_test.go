package aligner_test

import (
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
	"github.com/vreuter/plastid/aligner"
)

// writeFakeBowtie installs a shell script that records its arguments, writes
// one multimapper to the --max file, and exits with the given status.
func writeFakeBowtie(t *testing.T, dir string, status int) string {
	path := filepath.Join(dir, fmt.Sprintf("bowtie%d", status))
	script := fmt.Sprintf(`#!/bin/sh
echo "$@" > "%s.args"
while [ $# -gt 0 ]; do
  if [ "$1" = "--max" ]; then
    shift
    printf '>chr1:0(+)\nACGT\n' > "$1"
  fi
  shift
done
echo "bowtie status %d" >&2
exit %d
`, path, status, status)
	require.NoError(t, ioutil.WriteFile(path, []byte(script), 0755))
	return path
}

func TestArgs(t *testing.T) {
	b := aligner.Bowtie{Index: "hg38", Mismatches: 2}
	require.Equal(t,
		[]string{"-m1", "-a", "--best", "-f", "-v", "2", "-p", "1", "hg38", "k.fa", "--max", "mm.fa", os.DevNull},
		b.Args("k.fa", "mm.fa"))

	b.Processors = 4
	require.Equal(t,
		[]string{"-m1", "-a", "--best", "-f", "-v", "2", "-p", "4", "--reorder", "hg38", "k.fa", "--max", "mm.fa", os.DevNull},
		b.Args("k.fa", "mm.fa"))
}

func TestMultimappers(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	b := aligner.Bowtie{Path: writeFakeBowtie(t, dir, 0), Index: "genome", Mismatches: 1, Processors: 4}
	out := filepath.Join(dir, "out_multimap.fa")
	require.NoError(t, b.Multimappers(ctx, "kmers.fa", out))
	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, ">chr1:0(+)\nACGT\n", string(data))
	args, err := ioutil.ReadFile(b.Path + ".args")
	require.NoError(t, err)
	require.Equal(t, "-m1 -a --best -f -v 1 -p 4 --reorder genome kmers.fa --max "+out+" "+os.DevNull+"\n", string(args))
}

func TestMultimappersStatus(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	out := filepath.Join(dir, "mm.fa")

	// Status 1 means nothing aligned.
	b := aligner.Bowtie{Path: writeFakeBowtie(t, dir, 1), Index: "genome"}
	require.NoError(t, b.Multimappers(ctx, "kmers.fa", out))

	b.Path = writeFakeBowtie(t, dir, 2)
	err := b.Multimappers(ctx, "kmers.fa", out)
	require.Error(t, err)
	aerr, ok := err.(*aligner.AlignerError)
	require.True(t, ok, "%T", err)
	require.Equal(t, 2, aerr.Status)
	require.True(t, strings.Contains(aerr.Output, "bowtie status 2"), aerr.Output)
}

func TestMissingBowtie(t *testing.T) {
	b := aligner.Bowtie{Path: "/nonexistent/crossmap-test-no-such-bowtie", Index: "genome"}
	err := b.Multimappers(context.Background(), "kmers.fa", "mm.fa")
	require.Error(t, err)
	require.True(t, errors.Is(errors.NotExist, err), "%v", err)
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := aligner.Bowtie{Path: "/bin/false"}
	require.Equal(t, context.Canceled, b.Multimappers(ctx, "kmers.fa", "mm.fa"))
}
