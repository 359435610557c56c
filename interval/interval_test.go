package interval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestIntervalValidate(t *testing.T) {
	expect.NoError(t, Interval{"chr1", 0, 1, Plus}.Validate())
	expect.NoError(t, Interval{"chr1", 5, 9, Minus}.Validate())
	for _, iv := range []Interval{
		{"", 0, 1, Plus},
		{"chr1", 1, 1, Plus},
		{"chr1", 2, 1, Minus},
		{"chr1", -1, 1, Plus},
		{"chr1", 0, 1, 0},
	} {
		expect.NotNil(t, iv.Validate(), iv)
	}
}

func TestIntervalString(t *testing.T) {
	expect.EQ(t, Interval{"chr1", 100, 105, Plus}.String(), "chr1:100-105(+)")
	expect.EQ(t, Interval{"chr1", 101, 106, Minus}.String(), "chr1:101-106(-)")
	s, err := ParseStrand("-")
	assert.NoError(t, err)
	expect.EQ(t, s, Minus)
	_, err = ParseStrand(".")
	expect.NotNil(t, err)
}

func TestChain(t *testing.T) {
	c, err := NewChain(Interval{"chr1", 10, 20, Plus}, Interval{"chr1", 30, 35, Plus})
	assert.NoError(t, err)
	expect.EQ(t, c.Span(), Interval{"chr1", 10, 35, Plus})
	expect.EQ(t, c.Len(), 15)

	_, err = NewChain()
	expect.NotNil(t, err)
	_, err = NewChain(Interval{"chr1", 10, 20, Plus}, Interval{"chr1", 15, 35, Plus})
	expect.HasSubstr(t, err.Error(), "overlapping")
	_, err = NewChain(Interval{"chr1", 10, 20, Plus}, Interval{"chr1", 30, 35, Minus})
	expect.HasSubstr(t, err.Error(), "mixed")
}

func TestBEDWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewBEDWriter(&buf)
	assert.NoError(t, w.Write(Chain{{"chr1", 100, 105, Plus}}))
	assert.NoError(t, w.Write(Chain{{"chr1", 101, 106, Minus}}))
	assert.NoError(t, w.Write(Chain{{"chr2", 10, 20, Plus}, {"chr2", 30, 35, Plus}}))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), strings.Join([]string{
		"chr1\t100\t105\tchr1:100-105(+)\t0\t+\t100\t105\t0,0,0\t1\t5,\t0,",
		"chr1\t101\t106\tchr1:101-106(-)\t0\t-\t101\t106\t0,0,0\t1\t5,\t0,",
		"chr2\t10\t35\tchr2:10-35(+)\t0\t+\t10\t35\t0,0,0\t2\t10,5,\t0,20,",
		"",
	}, "\n"))
}

func TestBEDWriterStickyError(t *testing.T) {
	var buf bytes.Buffer
	w := NewBEDWriter(&buf)
	err := w.Write(Chain{{"chr1", 5, 5, Plus}})
	expect.NotNil(t, err)
	expect.EQ(t, w.Write(Chain{{"chr1", 1, 5, Plus}}), err)
	expect.EQ(t, w.Flush(), err)
	expect.EQ(t, buf.Len(), 0)
}

func TestBEDRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewBEDWriter(&buf)
	assert.NoError(t, w.Write(Chain{{"chr1", 100, 105, Plus}}))
	assert.NoError(t, w.Write(Chain{{"chr1", 99, 104, Minus}}))
	assert.NoError(t, w.Write(Chain{{"chr1", 110, 112, Plus}}))
	assert.NoError(t, w.Write(Chain{{"chr1", 109, 111, Minus}}))
	assert.NoError(t, w.Flush())

	minus, err := NewBEDUnion(bytes.NewReader(buf.Bytes()), NewBEDOpts{Strand: Minus})
	assert.NoError(t, err)
	expect.EQ(t, minus.EndpointsByName("chr1"), []PosType{99, 104, 109, 111})
}

func TestUnionScanner(t *testing.T) {
	endpoints := []PosType{5, 17, 20, 25, 30, 31}
	us := NewUnionScanner(endpoints)
	us.Seek(6)
	var start, end PosType
	var got []PosType
	for us.Scan(&start, &end, 22) {
		got = append(got, start, end)
	}
	expect.EQ(t, got, []PosType{6, 17, 20, 22})

	got = got[:0]
	us.Seek(26)
	for us.Scan(&start, &end, PosTypeMax) {
		got = append(got, start, end)
	}
	expect.EQ(t, got, []PosType{30, 31})
	expect.EQ(t, us.Pos(), PosType(PosTypeMax))

	expect.EQ(t, CoveredBases(endpoints, 0, PosTypeMax), 18)
	expect.EQ(t, CoveredBases(endpoints, 16, 21), 2)
	expect.EQ(t, CoveredBases(nil, 0, 100), 0)
}
