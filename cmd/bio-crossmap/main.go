// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
bio-crossmap builds a crossmap mask: a BED file of the genomic regions from
which no uniquely mapping read of length k can originate.

  bio-crossmap make [flags] genome.fa bowtie-index outbase

dices genome.fa into k-mers, aligns them to bowtie-index, and writes
outbase_<k>_<mismatches>_crossmap.bed.  The dice and assemble subcommands run
the first and last stages on their own; stats and query inspect a finished
mask.

Exit status is 1 for invalid flags or arguments, 2 when bowtie fails or an
input file is missing, and 3 when the multimapper file is unsorted or
malformed.
*/
package main

import (
	goerrors "errors"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/vreuter/plastid/aligner"
	"github.com/vreuter/plastid/crossmap"
	"v.io/x/lib/cmdline"
)

const (
	exitConfig = 1
	exitIO     = 2
	exitData   = 3
)

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var (
		configErr   *crossmap.ConfigError
		alignerErr  *aligner.AlignerError
		orderingErr *crossmap.OrderingError
		parseErr    *crossmap.ParseError
		dataErr     *crossmap.DataError
	)
	switch {
	case err == nil:
		return 0
	case goerrors.As(err, &configErr):
		return exitConfig
	case goerrors.As(err, &alignerErr), errors.Is(errors.NotExist, err):
		return exitIO
	case goerrors.As(err, &orderingErr), goerrors.As(err, &parseErr), goerrors.As(err, &dataErr):
		return exitData
	}
	return exitConfig
}

// report logs err and converts it to an exit status cmdline understands.
func report(err error) error {
	if err == nil {
		return nil
	}
	log.Error.Printf("%v", err)
	return cmdline.ErrExitCode(exitCode(err))
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "bio-crossmap",
		Short:    "Build and inspect crossmap masks of non-uniquely mappable regions",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdMake(),
			newCmdDice(),
			newCmdAssemble(),
			newCmdStats(),
			newCmdQuery(),
		},
	})
}
