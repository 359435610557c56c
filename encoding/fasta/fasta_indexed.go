package fasta

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

const minReadSize = 8192

type indexedFasta struct {
	entries map[string]IndexEntry
	names   []string // in file order

	mu     sync.Mutex
	in     io.ReadSeeker
	winOff int64
	win    []byte // file bytes starting at winOff
	seq    []byte // bases of the last Get, newlines stripped
}

// NewIndexed creates a new Fasta that can perform efficient random lookups
// using the provided index, without reading the data into memory.
func NewIndexed(fasta io.ReadSeeker, index io.Reader) (Fasta, error) {
	entries, err := ReadIndex(index)
	if err != nil {
		return nil, err
	}
	f := &indexedFasta{entries: make(map[string]IndexEntry, len(entries)), in: fasta}
	for _, e := range entries {
		if _, ok := f.entries[e.Name]; ok {
			return nil, errors.Errorf("duplicate sequence name in index: %s", e.Name)
		}
		f.entries[e.Name] = e
		f.names = append(f.names, e.Name)
	}
	sort.SliceStable(f.names, func(i, j int) bool {
		return f.entries[f.names[i]].Offset < f.entries[f.names[j]].Offset
	})
	return f, nil
}

func (f *indexedFasta) entry(seqName string) (IndexEntry, error) {
	e, ok := f.entries[seqName]
	if !ok {
		return e, errors.Errorf("sequence not found in index: %s", seqName)
	}
	return e, nil
}

// Len implements Fasta.Len().
func (f *indexedFasta) Len(seqName string) (uint64, error) {
	e, err := f.entry(seqName)
	return e.Length, err
}

// SeqNames implements Fasta.SeqNames().
func (f *indexedFasta) SeqNames() []string {
	return f.names
}

// window returns file bytes [off, off+n), reading ahead at least minReadSize
// bytes on a miss.
func (f *indexedFasta) window(off int64, n int) ([]byte, error) {
	if off >= f.winOff && off+int64(n) <= f.winOff+int64(len(f.win)) {
		return f.win[off-f.winOff : off-f.winOff+int64(n)], nil
	}
	if _, err := f.in.Seek(off, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seek to offset %d", off)
	}
	size := n
	if size < minReadSize {
		size = minReadSize
	}
	if cap(f.win) < size {
		f.win = make([]byte, size)
	}
	f.win = f.win[:size]
	got, err := io.ReadFull(f.in, f.win)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	if got < n {
		return nil, errors.New("unexpected end of file (bad index? file doesn't end in newline?)")
	}
	f.winOff, f.win = off, f.win[:got]
	return f.win[:n], nil
}

// Get implements Fasta.Get().
func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	if end <= start {
		return "", errors.New("start must be less than end")
	}
	e, err := f.entry(seqName)
	if err != nil {
		return "", err
	}
	if end > e.Length {
		return "", errors.Errorf("end is past end of sequence %s: %d", seqName, e.Length)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// The last base is never followed by more than a line's worth of
	// newline bytes, so reading up to its offset covers the range.
	first, last := e.lineOffset(start), e.lineOffset(end-1)
	raw, err := f.window(int64(first), int(last-first+1))
	if err != nil {
		return "", err
	}
	f.seq = f.seq[:0]
	col := (first - e.Offset) % e.LineWidth
	for _, b := range raw {
		if col < e.LineBases {
			f.seq = append(f.seq, b)
		}
		if col++; col == e.LineWidth {
			col = 0
		}
	}
	return string(f.seq), nil
}
