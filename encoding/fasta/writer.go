package fasta

import "io"

var newline = []byte{'\n'}

// Writer is a FASTA file writer.
type Writer struct {
	w         io.Writer
	lineWidth int
	err       error
}

// NewWriter constructs a new FASTA writer that writes records to w.
// Sequences are wrapped every lineWidth bases; lineWidth <= 0 writes each
// sequence on a single line.
func NewWriter(w io.Writer, lineWidth int) *Writer {
	return &Writer{w: w, lineWidth: lineWidth}
}

// Write writes rec in FASTA format.  Once a write fails, every subsequent
// call returns the same error.
func (w *Writer) Write(rec *Record) error {
	return w.WriteSeq(rec.Name, rec.Seq)
}

// WriteSeq writes one record with the given name and sequence.
func (w *Writer) WriteSeq(name, seq string) error {
	w.write(">")
	w.writeln(name)
	if w.lineWidth <= 0 {
		w.writeln(seq)
		return w.err
	}
	for len(seq) > w.lineWidth {
		w.writeln(seq[:w.lineWidth])
		seq = seq[w.lineWidth:]
	}
	if len(seq) > 0 {
		w.writeln(seq)
	}
	return w.err
}

// Err returns the first error encountered by the writer.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *Writer) writeln(line string) {
	w.write(line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}
