package interval

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// NewBEDOpts defines behavior of this package's BED-loading function(s).
type NewBEDOpts struct {
	// SAMHeader enables ID-based lookup.
	SAMHeader *sam.Header
	// Invert causes the complement of the interval-union to be returned.  The
	// complement extends down to position -1 at the beginning of each
	// chromosome, and currently 2^31 - 2 inclusive at the end.  If SAMHeader is
	// provided, any chromosome mentioned in the SAMHeader but entirely absent
	// from the BED will be fully included.
	Invert bool
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
	// Strand, if nonzero, restricts loading to lines whose sixth column is this
	// strand.  Lines without a strand column are then an error.  A crossmap
	// mask interleaves plus- and minus-strand lines, and only each strand on
	// its own is guaranteed to be sorted.
	Strand Strand
}

// BEDUnion is a collection of length-2N sequences, where N is the number of
// intervals, the (0-based) start position of interval #k is in element [2k]
// and the end position is in element [2k+1], and the intervals are stored in
// increasing order.
type BEDUnion struct {
	// nameMap is a chromosome-keyed map with disjoint-interval-set values.
	// Always initialized.
	nameMap map[string]([]PosType)
	// chrNames lists the chromosomes in order of first appearance.
	chrNames []string
	// idMap is an optional slice of disjoint-interval-sets, indexed by
	// sam.Header reference ID.
	idMap [][]PosType
	// lastChrIntervals points to the disjoint-interval-set for the most recently
	// queried chromosome.
	lastChrIntervals []PosType
	// lastChrName is the name of the last queried-by-name chromosome.  If it's
	// nonempty, it must be in sync with lastChrIntervals.
	lastChrName string
	// lastChrID is the ID of the last queried-by-ID chromosome.  If it's
	// nonnegative, it must be in sync with lastChrIntervals.
	lastChrID int
}

// ContainsByID checks whether the (0-based) interval [pos, pos+1) is contained
// within the BEDUnion, where chromosome is specified by sam.Header ID.
func (u *BEDUnion) ContainsByID(chrID int, pos PosType) bool {
	if chrID != u.lastChrID {
		u.lastChrID = chrID
		u.lastChrName = ""
		u.lastChrIntervals = u.idMap[chrID]
	}
	if u.lastChrIntervals == nil {
		return false
	}
	return NewEndpointIndex(pos, u.lastChrIntervals).Contained()
}

// ContainsByName checks whether the (0-based) interval [pos, pos+1) is
// contained within the BEDUnion, where chromosome is specified by name.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	if chrName != u.lastChrName {
		u.lastChrName = chrName
		u.lastChrID = -1
		u.lastChrIntervals = u.nameMap[chrName]
	}
	if u.lastChrIntervals == nil {
		return false
	}
	return NewEndpointIndex(pos, u.lastChrIntervals).Contained()
}

// ChrNames returns the chromosomes mentioned in the BED, in order of
// appearance.
func (u *BEDUnion) ChrNames() []string {
	return u.chrNames
}

// EndpointsByName returns the sorted interval endpoints for the given
// chromosome, or nil if it was never mentioned.  The returned slice must not
// be modified.
func (u *BEDUnion) EndpointsByName(chrName string) []PosType {
	return u.nameMap[chrName]
}

// EndpointsByID is the sam.Header-ID counterpart of EndpointsByName.
func (u *BEDUnion) EndpointsByID(chrID int) []PosType {
	return u.idMap[chrID]
}

func initBEDUnion() (bedUnion BEDUnion) {
	bedUnion.nameMap = make(map[string]([]PosType))
	bedUnion.lastChrName = ""
	bedUnion.lastChrID = -1
	return
}

func (u *BEDUnion) nameToIDData(header *sam.Header, invert bool) {
	samRefs := header.Refs()
	nRef := len(samRefs)
	u.idMap = make([][]PosType, nRef)
	for refID, ref := range samRefs {
		if refID != ref.ID() {
			panic("internal error: sam.header ref.ID != array position")
		}
		refName := ref.Name()
		chrIntervals := u.nameMap[refName]
		if chrIntervals != nil {
			u.idMap[refID] = chrIntervals
		} else if invert {
			u.idMap[refID] = []PosType{-1, PosTypeMax}
		}
	}
}

// unionBuilder merges sorted, possibly touching or overlapping intervals into
// the BEDUnion representation, one chromosome at a time.
type unionBuilder struct {
	u                  *BEDUnion
	invert             bool
	prevChr            string
	prevStart, prevEnd PosType
	chrIntervals       []PosType
	totBases           int
}

func (b *unionBuilder) closeChr() {
	if b.prevChr == "" {
		return
	}
	if b.prevEnd != -1 {
		b.chrIntervals = append(b.chrIntervals, b.prevStart, b.prevEnd)
	}
	if b.invert {
		b.chrIntervals = append(b.chrIntervals, PosTypeMax)
	}
	b.u.nameMap[b.prevChr] = b.chrIntervals
	b.u.chrNames = append(b.u.chrNames, b.prevChr)
}

// add merges [start, end) on chr into the union.  chr may alias a scratch
// buffer; it is copied when it becomes a map key.
func (b *unionBuilder) add(chr string, start, end PosType) error {
	if b.prevChr != chr {
		b.closeChr()
		b.prevChr = strings.Clone(chr)
		if _, found := b.u.nameMap[b.prevChr]; found {
			return fmt.Errorf("interval.NewBEDUnion: unsorted input (split chromosome %v)", chr)
		}
		b.chrIntervals = []PosType{}
		if b.invert {
			b.chrIntervals = append(b.chrIntervals, -1)
		}
		if end == start {
			// Distinguish between 'mentioned' chromosomes without any overlapping
			// bases and unmentioned chromosomes.
			b.prevStart = -1
			b.prevEnd = -1
		} else {
			b.prevStart = start
			b.prevEnd = end
			b.totBases += int(end - start)
		}
		return nil
	}
	if end == start {
		return nil
	}
	if b.prevEnd == -1 {
		b.prevStart = start
		b.prevEnd = end
		b.totBases += int(end - start)
		return nil
	}
	if start > b.prevEnd {
		b.chrIntervals = append(b.chrIntervals, b.prevStart, b.prevEnd)
		b.prevStart = start
		b.prevEnd = end
		b.totBases += int(end - start)
		return nil
	}
	if start < b.prevStart {
		return fmt.Errorf("interval.NewBEDUnion: unsorted input at %s:%d", chr, start)
	}
	if end > b.prevEnd {
		b.totBases += int(end - b.prevEnd)
		b.prevEnd = end
	}
	return nil
}

func scanBEDUnion(scanner *bufio.Scanner, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	bedUnion = initBEDUnion()
	b := unionBuilder{u: &bedUnion, invert: opts.Invert}

	var startSubtract int
	if opts.OneBasedInput {
		startSubtract++
	}
	nWant := 3
	if opts.Strand != 0 {
		nWant = 6
	}
	var tokens [6][]byte

	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:nWant], curLine)
		if nToken == 0 {
			continue
		}
		if tokens[0][0] == '#' || strings.HasPrefix(gunsafe.BytesToString(tokens[0]), "track") {
			continue
		}
		if nToken != nWant {
			err = fmt.Errorf("interval.scanBEDUnion: line %d has fewer tokens than expected", lineIdx)
			return
		}
		if opts.Strand != 0 && (len(tokens[5]) != 1 || Strand(tokens[5][0]) != opts.Strand) {
			continue
		}

		var parsedStart int
		if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return
		}
		parsedStart -= startSubtract
		if parsedStart < 0 {
			err = fmt.Errorf("interval.scanBEDUnion: negative start coordinate %s on line %d", tokens[1], lineIdx)
			return
		}
		var parsedEnd int
		if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return
		}
		if (parsedEnd < parsedStart) || (parsedEnd >= PosTypeMax) {
			err = fmt.Errorf("interval.scanBEDUnion: invalid coordinate pair on line %d", lineIdx)
			return
		}
		if err = b.add(gunsafe.BytesToString(tokens[0]), PosType(parsedStart), PosType(parsedEnd)); err != nil {
			err = fmt.Errorf("%v (line %d)", err, lineIdx)
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	b.closeChr()
	log.Debug.Printf("BED loaded, %d base(s) covered.", b.totBases)
	return
}

// NewBEDUnion loads just the intervals from a sorted (by first coordinate)
// interval-BED, merging touching/overlapping intervals and eliminating empty
// ones in the process.
func NewBEDUnion(reader io.Reader, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	scanner := bufio.NewScanner(reader)
	if bedUnion, err = scanBEDUnion(scanner, opts); err != nil {
		return
	}
	if opts.SAMHeader != nil {
		bedUnion.nameToIDData(opts.SAMHeader, opts.Invert)
	}
	return
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.  Gzipped files are detected by extension.
func NewBEDUnionFromPath(path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewBEDUnion(reader, opts)
}

// NewBEDUnionFromIntervals initializes a BEDUnion from a []Interval sorted by
// chromosome block, then start.  Strands are ignored unless opts.Strand is
// set, in which case intervals on the other strand are skipped.
// opts.OneBasedInput is ignored.
func NewBEDUnionFromIntervals(ivs []Interval, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	bedUnion = initBEDUnion()
	b := unionBuilder{u: &bedUnion, invert: opts.Invert}
	for _, iv := range ivs {
		if opts.Strand != 0 && iv.Strand != opts.Strand {
			continue
		}
		if iv.Start < 0 {
			err = fmt.Errorf("interval.NewBEDUnionFromIntervals: negative start coordinate")
			return
		}
		if (iv.End < iv.Start) || (iv.End >= PosTypeMax) {
			err = fmt.Errorf("interval.NewBEDUnionFromIntervals: invalid coordinate pair [%d, %d)", iv.Start, iv.End)
			return
		}
		if err = b.add(iv.Chrom, iv.Start, iv.End); err != nil {
			return
		}
	}
	b.closeChr()
	if opts.SAMHeader != nil {
		bedUnion.nameToIDData(opts.SAMHeader, opts.Invert)
	}
	return
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning an unstranded Interval with 0-based boundaries.  The interval
// [0, PosTypeMax - 1) is returned if there is no positional restriction.
func ParseRegionString(region string) (result Interval, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.Chrom = region
		result.Start = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.Chrom = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	var end0 int
	if end0, err = strconv.Atoi(endStr); err != nil {
		return
	}
	if end0 < start1 || end0 >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}
