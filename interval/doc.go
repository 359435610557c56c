/*Package interval implements genomic intervals and interval-union operations
  for sets of genomic coordinates represented by BED files.

  Interval and Chain are stranded, 0-based half-open features, and BEDWriter
  writes them as BED12.  BEDUnion loads a BED file back as a per-chromosome
  union of intervals, optionally restricted to one strand.  (Note the
  'union'.  Overlapping intervals are merged, not tracked separately.)
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
