// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package aligner runs the short-read aligner that finds multimapping k-mers.
package aligner

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"v.io/x/lib/gosh"
	"v.io/x/lib/lookpath"
)

// DefaultBowtiePath is where bowtie is looked for first.
const DefaultBowtiePath = "/usr/local/bin/bowtie"

// AlignerError reports a bowtie run that failed.
type AlignerError struct {
	Path string
	// Status is the exit status, or -1 if bowtie was killed by a signal or
	// never started.
	Status int
	// Output is bowtie's combined stdout and stderr.
	Output string
	Err    error
}

func (e *AlignerError) Error() string {
	return fmt.Sprintf("aligner: %s exited with status %d: %v\n%s", e.Path, e.Status, e.Err, e.Output)
}

func (e *AlignerError) Unwrap() error { return e.Err }

// Bowtie runs bowtie 1 in end-to-end -v mode.
type Bowtie struct {
	// Path is the bowtie binary.  If it does not exist, "bowtie" is looked up
	// in PATH.
	Path string
	// Index is the bowtie index basename (the .ebwt prefix).
	Index string
	// Mismatches is the -v mismatch count, 0..3.
	Mismatches int
	// Processors is the -p thread count.  Above 1, --reorder keeps the output
	// in k-mer order.
	Processors int
}

// Args returns the bowtie command line that reports the k-mers in kmerPath
// with more than one alignment to outPath.  Unique alignments are discarded.
func (b Bowtie) Args(kmerPath, outPath string) []string {
	procs := b.Processors
	if procs < 1 {
		procs = 1
	}
	args := []string{
		"-m1", "-a", "--best", "-f",
		"-v", strconv.Itoa(b.Mismatches),
		"-p", strconv.Itoa(procs),
	}
	if procs > 1 {
		// Assembly needs the --max file in input order.
		args = append(args, "--reorder")
	}
	return append(args, b.Index, kmerPath, "--max", outPath, os.DevNull)
}

func (b Bowtie) resolve(sh *gosh.Shell) (string, error) {
	path := b.Path
	if path == "" {
		path = DefaultBowtiePath
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	found, err := lookpath.Look(sh.Vars, filepath.Base(path))
	if err != nil {
		return "", errors.E(errors.NotExist, "aligner: bowtie not found at", path, "or in PATH", err)
	}
	return found, nil
}

// Multimappers implements crossmap.Aligner.  Bowtie exits with status 1 when
// no read aligned, which is not an error here; any other nonzero status or a
// signal is returned as an *AlignerError.
func (b Bowtie) Multimappers(ctx context.Context, kmerPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sh := gosh.NewShell(nil)
	defer sh.Cleanup()
	sh.ContinueOnError = true
	path, err := b.resolve(sh)
	if err != nil {
		return err
	}
	args := b.Args(kmerPath, outPath)
	log.Debug.Printf("aligner: running %s %v", path, args)
	cmd := sh.Cmd(path, args...)
	out := cmd.CombinedOutput()
	if cmd.Err == nil {
		return nil
	}
	status := -1
	var exitErr *exec.ExitError
	if goerrors.As(cmd.Err, &exitErr) {
		status = exitErr.ExitCode()
	}
	if status == 1 {
		log.Printf("aligner: bowtie aligned no k-mers")
		return nil
	}
	return &AlignerError{Path: path, Status: status, Output: out, Err: cmd.Err}
}
