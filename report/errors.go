/*
errors.go - Error taxonomy for report parsing

PURPOSE:
  Parsing failures come in two severities and only one of them is an error:

  1. Line-level decode mismatches are recovered by skipping the line and
     trying the next one. They never surface; the strategy simply produces
     fewer (or zero) records.
  2. ErrNoMatchingFormat means every strategy, including the residual
     fallback extractor, produced nothing. The run ingested nothing and the
     caller must treat it as a hard failure.

SEE ALSO:
  - parser.go: Where ErrNoMatchingFormat is produced
*/
package report

import "errors"

// ErrNoMatchingFormat is returned when no parsing strategy recognizes the
// input. Nothing was ingested.
var ErrNoMatchingFormat = errors.New("no parsing strategy matched the report text")
