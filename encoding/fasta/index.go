package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// IndexEntry is one line of a FASTA index.  Fields are in .fai column order.
type IndexEntry struct {
	Name string
	// Length is the number of bases in the sequence.
	Length uint64
	// Offset is the byte offset of the first base.
	Offset uint64
	// LineBases is the number of bases per full line.
	LineBases uint64
	// LineWidth is the number of bytes per full line, newline included.
	LineWidth uint64
}

// lineOffset returns the file offset of base pos.
func (e IndexEntry) lineOffset(pos uint64) uint64 {
	return e.Offset + pos + (e.LineWidth-e.LineBases)*(pos/e.LineBases)
}

// ReadIndex parses a FASTA index as written by GenerateIndex or
// "samtools faidx".
func ReadIndex(in io.Reader) ([]IndexEntry, error) {
	r := tsv.NewReader(in)
	r.RequireParseAllColumns = true
	var entries []IndexEntry
	for {
		var e IndexEntry
		if err := r.Read(&e); err == io.EOF {
			return entries, nil
		} else if err != nil {
			return nil, errors.E(errors.Invalid, "fasta.ReadIndex", err)
		}
		if e.Name == "" || (e.Length > 0 && (e.LineBases == 0 || e.LineWidth < e.LineBases)) {
			return nil, errors.E(errors.Invalid, "fasta.ReadIndex: invalid entry for", e.Name)
		}
		entries = append(entries, e)
	}
}

// GenerateIndex generates an index (*.fai) from FASTA.  The index can be later
// passed to NewIndexed() to random-access the FASTA file quickly.
//
// The index format is defined by "samtool faidx"
// (http://www.htslib.org/doc/faidx.html).
func GenerateIndex(out io.Writer, in io.Reader) (err error) {
	var (
		w       = tsv.NewWriter(out)
		r       = bufio.NewReader(in)
		e       IndexEntry
		cumByte uint64
		eof     bool
	)
	setErr := func(x error) {
		if x != nil && err == nil {
			err = x
		}
	}
	flush := func() {
		w.WriteString(e.Name)
		w.WriteUint64(e.Length)
		w.WriteUint64(e.Offset)
		w.WriteUint64(e.LineBases)
		w.WriteUint64(e.LineWidth)
		setErr(w.EndLine())
	}
	for !eof && err == nil {
		full, x := r.ReadBytes('\n')
		if x == io.EOF {
			eof = true
		} else if x != nil {
			setErr(x)
		}
		cumByte += uint64(len(full))
		line := bytes.TrimRight(full, "\r\n")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if e.LineWidth != 0 {
				if e.Name == "" {
					setErr(errors.E(errors.Invalid, "malformed FASTA file"))
				}
				flush()
			}
			e = IndexEntry{Name: seqName(string(line[1:])), Offset: cumByte}
			continue
		}
		if e.LineWidth == 0 {
			e.LineWidth = uint64(len(full))
			e.LineBases = uint64(len(line))
		}
		e.Length += uint64(len(line))
	}
	if cumByte == 0 {
		setErr(errors.E(errors.Invalid, "empty FASTA file"))
		return
	}
	flush()
	setErr(w.Flush())
	return
}
