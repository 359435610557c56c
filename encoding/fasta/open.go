package fasta

import (
	"bytes"
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// Closer releases the file underlying a Fasta returned by Open.
type Closer func(ctx context.Context) error

// Open opens the FASTA file at path for random access.
//
// If "<path>.fai" exists, sequences are read through the index and never held
// in memory.  Uncompressed files without an index are indexed on the fly with
// GenerateIndex.  Gzipped files (detected by extension) cannot be seeked, so
// they are decompressed into memory.
func Open(ctx context.Context, path string) (Fasta, Closer, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "fasta.Open", path)
	}
	closer := Closer(in.Close)
	fail := func(err error) (Fasta, Closer, error) {
		if cerr := in.Close(ctx); cerr != nil {
			log.Error.Printf("fasta.Open: close %s: %v", path, cerr)
		}
		return nil, nil, errors.E(err, "fasta.Open", path)
	}

	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(in.Reader(ctx))
		if err != nil {
			return fail(err)
		}
		fa, err := New(gz)
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fail(err)
		}
		return fa, closer, nil
	}

	rs := in.Reader(ctx)
	faiPath := path + ".fai"
	var index bytes.Buffer
	if _, err := file.Stat(ctx, faiPath); err == nil {
		fai, err := file.ReadFile(ctx, faiPath)
		if err != nil {
			return fail(err)
		}
		index.Write(fai)
	} else {
		log.Debug.Printf("fasta.Open: no index at %s, generating one", faiPath)
		if err := GenerateIndex(&index, rs); err != nil {
			return fail(err)
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return fail(err)
		}
	}
	fa, err := NewIndexed(rs, &index)
	if err != nil {
		return fail(err)
	}
	return fa, closer, nil
}

// OpenScanner opens the FASTA file at path for sequential reading, decoding
// gzip if the extension says so.  Only the fields in the bitset are filled.
func OpenScanner(ctx context.Context, path string, fields Field) (*Scanner, Closer, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "fasta.OpenScanner", path)
	}
	r := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if r, err = gzip.NewReader(r); err != nil {
			_ = in.Close(ctx)
			return nil, nil, errors.E(err, "fasta.OpenScanner", path)
		}
	}
	return NewScanner(r, fields), in.Close, nil
}
