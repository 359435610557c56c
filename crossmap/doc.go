// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package crossmap builds crossmap masks: BED annotations of the genomic
// regions from which no uniquely mapping read of length k can originate.
//
// A mask is made in three stages.  The genome is diced into every k-mer
// (Dice), the k-mers are aligned back to the genome and those aligning to more
// than one locus are collected by the aligner (see package aligner), and the
// multimapping k-mer positions are assembled into plus and minus strand
// intervals (Assemble).  Make runs all three.
//
// Assembly is a single pass over read names of the form "chr:coord(+)".
// Positions must be ascending within each chromosome, and each chromosome
// must appear in a single contiguous block.  A Grouper collapses consecutive
// positions into Runs, and a Transformer turns each Run into a plus interval
// and its reflection on the minus strand:
//
//   RC = (FW + offset) + k - 1 - 2*offset
//
// where FW + offset is the coordinate seen in the position stream.
package crossmap
