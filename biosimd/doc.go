// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides table-driven operations on ASCII nucleotide
// sequences: base normalization and reverse-complementation.  The functions
// work in place on byte slices so that k-mer windows can be processed without
// allocation.
package biosimd
