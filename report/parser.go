/*
parser.go - Strategy dispatch

PURPOSE:
  One Parse call, four strategies, strict priority order:

    1. tabular    - column spacing survived extraction
    2. compact    - a whole row collapsed into one digit run
    3. narrative  - label:value pairs accumulated per performance
    4. fallback   - residual extractor so ingestion never hard-fails

  The first strategy to produce a non-empty record list wins. The fallback
  only fires after the real strategies all came up empty, and its output is
  low-confidence: placeholder records with every sales field zero. Callers
  can tell by the returned strategy name.

INPUT:
  The upstream extractor delivers either a newline-delimited blob or an
  ordered sequence of text fragments (one per PDF text item). Both funnel
  into the same line-oriented parse.

SEE ALSO:
  - tabular.go, compact.go, narrative.go, fallback.go: The strategies
  - packages.go: The subscription and comp report parsers
*/
package report

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// Strategy names, also recorded as the snapshot source so downstream
// consumers can spot low-confidence ingests.
const (
	StrategyTabular   = "tabular"
	StrategyCompact   = "compact"
	StrategyNarrative = "narrative"
	StrategyFallback  = "fallback"
)

// codeRe matches a season-coded performance identifier.
var codeRe = regexp.MustCompile(`^\d{4,6}[A-Z]{1,2}$`)

type strategy interface {
	name() string
	parse(lines []string) []SalesRecord
}

// Parser tries the strategies in priority order. It is stateless apart
// from its logger and safe for concurrent use.
type Parser struct {
	log        *slog.Logger
	strategies []strategy
}

// NewParser builds a parser with the full strategy list. A nil logger
// discards parse diagnostics.
func NewParser(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		log: log,
		strategies: []strategy{
			tabularStrategy{},
			compactStrategy{},
			narrativeStrategy{},
		},
	}
}

// Parse runs the strategies against the given lines and returns the
// records plus the name of the strategy that produced them. It returns
// ErrNoMatchingFormat only when every strategy, including the fallback
// extractor, yields nothing.
func (p *Parser) Parse(lines []string) ([]SalesRecord, string, error) {
	for _, s := range p.strategies {
		if records := s.parse(lines); len(records) > 0 {
			p.log.Debug("report parsed",
				"strategy", s.name(),
				"records", len(records))
			return records, s.name(), nil
		}
	}

	if records := fallbackExtract(lines); len(records) > 0 {
		p.log.Warn("report matched no known format, fallback extractor used",
			"records", len(records))
		return records, StrategyFallback, nil
	}

	return nil, "", ErrNoMatchingFormat
}

// ParseText parses a newline-delimited blob.
func (p *Parser) ParseText(blob string) ([]SalesRecord, string, error) {
	return p.Parse(SplitLines(blob))
}

// ParsePages parses an ordered fragment sequence, one slice per PDF page.
// Each fragment is treated as one line: extractors that preserve layout
// emit one fragment per visual row, and extractors that do not emit the
// collapsed rows the compact strategy exists for.
func (p *Parser) ParsePages(pages [][]string) ([]SalesRecord, string, error) {
	var lines []string
	for _, page := range pages {
		lines = append(lines, page...)
	}
	return p.Parse(lines)
}

// SplitLines splits a text blob into trimmed lines, dropping empties.
func SplitLines(blob string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(blob, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
