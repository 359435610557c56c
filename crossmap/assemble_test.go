package crossmap_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/vreuter/plastid/crossmap"
	"github.com/vreuter/plastid/interval"
)

type pair struct {
	plus, minus interval.Chain
}

func assemble(names []string, params crossmap.Params) ([]pair, crossmap.Stats, error) {
	var pairs []pair
	stats, err := crossmap.Assemble(crossmap.NewSliceReadNames(names), params, func(plus, minus interval.Chain) error {
		pairs = append(pairs, pair{plus, minus})
		return nil
	})
	return pairs, stats, err
}

func TestAssemble(t *testing.T) {
	// Offset 14 shifts chr1:86..90 to the concrete 100..104 run.
	names := []string{
		"chr1:86(+)", "chr1:87(+)", "chr1:88(+)", "chr1:89(+)", "chr1:90(+)",
		"chr1:200(+)",
		"chr2:0(+)", "chr2:1(+)",
	}
	pairs, stats, err := assemble(names, crossmap.Params{K: 30, Offset: 14})
	assert.NoError(t, err)
	expect.EQ(t, pairs, []pair{
		{
			interval.Chain{{Chrom: "chr1", Start: 100, End: 105, Strand: interval.Plus}},
			interval.Chain{{Chrom: "chr1", Start: 101, End: 106, Strand: interval.Minus}},
		},
		{
			interval.Chain{{Chrom: "chr1", Start: 214, End: 215, Strand: interval.Plus}},
			interval.Chain{{Chrom: "chr1", Start: 215, End: 216, Strand: interval.Minus}},
		},
		{
			interval.Chain{{Chrom: "chr2", Start: 14, End: 16, Strand: interval.Plus}},
			interval.Chain{{Chrom: "chr2", Start: 15, End: 17, Strand: interval.Minus}},
		},
	})
	expect.EQ(t, stats.Names, int64(8))
	expect.EQ(t, stats.Runs, int64(3))
	expect.EQ(t, stats.Bases, int64(8))
	expect.EQ(t, stats.Chroms, 2)
	expect.HasSubstr(t, stats.String(), "runs: 3")
}

func TestAssembleEmpty(t *testing.T) {
	pairs, stats, err := assemble(nil, crossmap.Params{K: 30, Offset: 14})
	assert.NoError(t, err)
	expect.EQ(t, len(pairs), 0)
	expect.EQ(t, stats.Runs, int64(0))
	expect.EQ(t, stats.Fingerprint, uint64(0))
}

func TestAssembleErrors(t *testing.T) {
	params := crossmap.Params{K: 30, Offset: 14}

	// Config errors are reported before any name is read.
	_, _, err := assemble([]string{"garbage"}, crossmap.Params{K: 0})
	_, ok := err.(*crossmap.ConfigError)
	expect.True(t, ok, "%v", err)

	pairs, _, err := assemble([]string{"chr1:5(+)", "chr1:bad(+)"}, params)
	perr, ok := err.(*crossmap.ParseError)
	assert.True(t, ok, "%v", err)
	expect.EQ(t, perr.Token, "chr1:bad(+)")
	expect.EQ(t, len(pairs), 0)

	pairs, _, err = assemble([]string{"chr0:1(+)", "chr1:5(+)", "chr1:6(+)", "chr1:4(+)"}, params)
	oerr, ok := err.(*crossmap.OrderingError)
	assert.True(t, ok, "%v", err)
	// Positions are reported offset-adjusted.
	expect.EQ(t, oerr.Pos, crossmap.Position{Chrom: "chr1", Coord: 18})
	// chr0 was complete and emitted; nothing from chr1.
	assert.EQ(t, len(pairs), 1)
	expect.EQ(t, pairs[0].plus[0].Chrom, "chr0")

	_, _, err = assemble([]string{"chr1:0(+)"}, crossmap.Params{K: 2, Offset: 5})
	_, ok = err.(*crossmap.DataError)
	expect.True(t, ok, "%v", err)
}

func TestAssembleFingerprint(t *testing.T) {
	params := crossmap.Params{K: 29, Offset: 14}
	a := []string{"chr1:1(+)", "chr1:2(+)", "chr1:10(+)", "chr2:3(+)"}
	b := []string{"chr1:1(+)", "chr1:2(+)", "chr1:11(+)", "chr2:3(+)"}
	_, sa, err := assemble(a, params)
	assert.NoError(t, err)
	_, sa2, err := assemble(a, params)
	assert.NoError(t, err)
	_, sb, err := assemble(b, params)
	assert.NoError(t, err)
	expect.EQ(t, sa.Fingerprint, sa2.Fingerprint)
	expect.True(t, sa.Fingerprint != sb.Fingerprint)
	expect.True(t, sa.Fingerprint != 0)
}

func TestAssembleBED(t *testing.T) {
	fa := ">chr1:86(+)\nACGT\n>chr1:87(+)\nCGTA\n>chr1:90(+)\nTTTT\n"
	var buf bytes.Buffer
	w := interval.NewBEDWriter(&buf)
	_, err := crossmap.Assemble(crossmap.NewFASTAReadNames(strings.NewReader(fa)),
		crossmap.Params{K: 30, Offset: 14}, crossmap.BEDEmitter(w))
	assert.NoError(t, err)
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), strings.Join([]string{
		"chr1\t100\t102\tchr1:100-102(+)\t0\t+\t100\t102\t0,0,0\t1\t2,\t0,",
		"chr1\t101\t103\tchr1:101-103(-)\t0\t-\t101\t103\t0,0,0\t1\t2,\t0,",
		"chr1\t104\t105\tchr1:104-105(+)\t0\t+\t104\t105\t0,0,0\t1\t1,\t0,",
		"chr1\t105\t106\tchr1:105-106(-)\t0\t-\t105\t106\t0,0,0\t1\t1,\t0,",
		"",
	}, "\n"))
}
