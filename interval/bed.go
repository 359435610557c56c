// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package interval

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
)

// BEDWriter writes Chains as 12-column BED lines:
//
//   chrom start end name score strand thickStart thickEnd itemRgb blockCount blockSizes blockStarts
//
// The name column is the chain's span rendered by Interval.String, the score
// is 0, and the thick region spans the whole chain.  Errors are sticky: once a
// write fails, every later call returns the same error.
type BEDWriter struct {
	w   *tsv.Writer
	buf []byte
	err error
}

// NewBEDWriter constructs a BEDWriter on top of w.  The caller must call Flush
// once done.
func NewBEDWriter(w io.Writer) *BEDWriter {
	return &BEDWriter{w: tsv.NewWriter(w)}
}

// Write writes c as a single BED line.
func (b *BEDWriter) Write(c Chain) error {
	if b.err != nil {
		return b.err
	}
	if b.err = c.Validate(); b.err != nil {
		return b.err
	}
	span := c.Span()
	b.w.WriteString(span.Chrom)
	b.w.WriteUint32(uint32(span.Start))
	b.w.WriteUint32(uint32(span.End))
	b.w.WriteString(span.String())
	b.w.WriteByte('0')
	b.w.WriteByte(byte(span.Strand))
	b.w.WriteUint32(uint32(span.Start))
	b.w.WriteUint32(uint32(span.End))
	b.w.WriteString("0,0,0")
	b.w.WriteUint32(uint32(len(c)))

	b.buf = b.buf[:0]
	for _, iv := range c {
		b.buf = strconv.AppendUint(b.buf, uint64(iv.End-iv.Start), 10)
		b.buf = append(b.buf, ',')
	}
	b.w.WriteString(string(b.buf))

	b.buf = b.buf[:0]
	for _, iv := range c {
		b.buf = strconv.AppendUint(b.buf, uint64(iv.Start-span.Start), 10)
		b.buf = append(b.buf, ',')
	}
	b.w.WriteString(string(b.buf))
	b.err = b.w.EndLine()
	return b.err
}

// Flush flushes buffered lines to the underlying writer.
func (b *BEDWriter) Flush() error {
	if b.err != nil {
		return b.err
	}
	b.err = b.w.Flush()
	return b.err
}
