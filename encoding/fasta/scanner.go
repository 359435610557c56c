package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// ErrInvalid is returned by Scanner when it encounters malformed FASTA data.
var ErrInvalid = errors.New("invalid FASTA file")

// Record is a single named FASTA sequence.  Name excludes the leading '>' and
// anything after the first space or tab on the header line.
type Record struct {
	Name, Seq string
}

// Field enumerates Record fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// Name causes the Record.Name field to be filled.
	Name Field = 1 << iota
	// Seq causes the Record.Seq field to be filled.
	Seq
	// All equals Name|Seq.
	All = Name | Seq
)

var errEOF = errors.New("eof")

// Scanner reads FASTA records sequentially, joining sequence lines.  Unlike
// New, it holds only one record in memory at a time.  Scanners are not
// threadsafe.
type Scanner struct {
	b       *bufio.Scanner
	err     error
	fields  Field
	pending []byte // header of the next record, if already read
	seq     bytes.Buffer
}

// NewScanner constructs a new Scanner that reads FASTA data from r.  Fields
// is a bitset of the fields to read.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, bufferInitSize)
	return &Scanner{b: b, fields: fields}
}

// Scan reads the next record into rec.  It returns false once the input is
// exhausted or an error occurs; the caller should then check Err.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	header := s.pending
	s.pending = nil
	for header == nil {
		if !s.b.Scan() {
			if s.err = s.b.Err(); s.err == nil {
				s.err = errEOF
			}
			return false
		}
		line := bytes.TrimRight(s.b.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			s.err = ErrInvalid
			return false
		}
		header = append([]byte(nil), line[1:]...)
	}
	name := seqName(string(header))
	if name == "" {
		s.err = ErrInvalid
		return false
	}
	s.seq.Reset()
	for s.b.Scan() {
		line := bytes.TrimRight(s.b.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			s.pending = append([]byte(nil), line[1:]...)
			break
		}
		if s.fields&Seq != 0 {
			s.seq.Write(line)
		}
	}
	if s.pending == nil {
		if s.err = s.b.Err(); s.err != nil {
			return false
		}
	}
	if s.fields&Name != 0 {
		rec.Name = name
	}
	if s.fields&Seq != 0 {
		rec.Seq = s.seq.String()
	}
	return true
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}
