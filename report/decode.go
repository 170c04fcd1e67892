/*
decode.go - Compact-format field recovery

PURPOSE:
  When the upstream extractor strips column spacing, an entire report row
  collapses into one run of digits with no delimiters at all:

    <budget%><fixedCount><fixedRev><nonFixedCount><nonFixedRev>
    <singleCount><singleRev><subtotal><reserved><total><seats><capacity%>

  Two structural anchors make recovery tractable: every currency amount
  ends in exactly two decimal digits, and every percentage ends in '%'.
  Everything else is positional.

ALGORITHM:
  Decoding runs right-to-left because the only unambiguous anchors sit at
  the far ends of the string. The budget percentage is stripped from the
  front and the capacity percentage from the back; the remaining digit run
  is consumed from the right: seats, total, reserved, subtotal, then three
  (count, revenue) pairs.

  Field boundaries inside the run are not always unique. The seat count is
  glued onto the total's decimal digits, the reserved amount onto the
  subtotal's, and each count onto the preceding amount's - so a substring
  like 34017,790.70 reads as either (340, 17,790.70) or (3401, 7,790.70).
  The decoder therefore backtracks over the candidate splits and keeps the
  first complete parse whose three category revenues sum to the subtotal
  and whose subtotal plus reserved equals the total. Those two equations
  prune the first search pass; if no split balances (the report itself can
  carry rounding noise), a second unconstrained pass takes the first
  complete parse.

FAILURE:
  Every extraction step fails cleanly. A line that cannot be fully
  consumed is rejected for this strategy and the caller moves on; a single
  malformed line never aborts the batch. Individual fields that fail
  numeric conversion default to zero.
*/
package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECODED FIELDS
// =============================================================================

// compactFields holds every quantity recovered from one compact line.
type compactFields struct {
	BudgetPercent   decimal.Decimal
	CapacityPercent decimal.Decimal

	FixedCount    int
	FixedRevenue  decimal.Decimal
	NonFixedCount int
	NonFixedRev   decimal.Decimal
	SingleCount   int
	SingleRevenue decimal.Decimal

	SubtotalRevenue decimal.Decimal
	ReservedRevenue decimal.Decimal
	TotalRevenue    decimal.Decimal
	AvailableSeats  int
}

var (
	budgetPrefixRe   = regexp.MustCompile(`^([0-9.]+)%`)
	capacitySuffixRe = regexp.MustCompile(`(\d{1,2}\.\d+)%$`)
	integerPartRe    = regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)
)

// decodeCompactTail decomposes the digit tail of a compact line. Returns
// false when the tail cannot be fully consumed.
func decodeCompactTail(tail string) (compactFields, bool) {
	var f compactFields

	bm := budgetPrefixRe.FindString(tail)
	if bm == "" {
		return f, false
	}
	rest := tail[len(bm):]

	cm := capacitySuffixRe.FindStringSubmatch(rest)
	if cm == nil {
		return f, false
	}
	rest = rest[:len(rest)-len(cm[0])]

	sol, ok := solveRun(rest)
	if !ok {
		return f, false
	}

	f.BudgetPercent = parseCurrency(strings.TrimSuffix(bm, "%"))
	f.CapacityPercent = parseCurrency(cm[1])
	f.AvailableSeats = parseCount(sol.vals[stepSeats])
	f.TotalRevenue = parseCurrency(sol.vals[stepTotal])
	f.ReservedRevenue = parseCurrency(sol.vals[stepReserved])
	f.SubtotalRevenue = parseCurrency(sol.vals[stepSubtotal])
	f.SingleRevenue = parseCurrency(sol.vals[stepSingleRev])
	f.SingleCount = parseCount(sol.vals[stepSingleCount])
	f.NonFixedRev = parseCurrency(sol.vals[stepNonFixedRev])
	f.NonFixedCount = parseCount(sol.vals[stepNonFixedCount])
	f.FixedRevenue = parseCurrency(sol.vals[stepFixedRev])
	f.FixedCount = parseCount(sol.vals[stepFixedCount])
	return f, true
}

// =============================================================================
// BACKTRACKING SOLVER
// =============================================================================

// Fields are consumed from the right in this order. stepSeats is a plain
// digit run; count steps are digit/comma runs; everything else is currency.
const (
	stepSeats = iota
	stepTotal
	stepReserved
	stepSubtotal
	stepSingleRev
	stepSingleCount
	stepNonFixedRev
	stepNonFixedCount
	stepFixedRev
	stepFixedCount
	stepDone
)

// maxRunParses bounds the search on pathological input. Real report lines
// resolve within a handful of complete parses.
const maxRunParses = 128

type runParse struct {
	vals [stepDone]string
}

// balanced reports whether the parse is internally consistent: category
// revenues sum to the subtotal, and subtotal plus reserved equals total.
func (p *runParse) balanced() bool {
	subtotal := parseCurrency(p.vals[stepSubtotal])
	sum := parseCurrency(p.vals[stepFixedRev]).
		Add(parseCurrency(p.vals[stepNonFixedRev])).
		Add(parseCurrency(p.vals[stepSingleRev]))
	if !subtotal.Equal(sum) {
		return false
	}
	total := parseCurrency(p.vals[stepTotal])
	return total.Equal(subtotal.Add(parseCurrency(p.vals[stepReserved])))
}

type runSolver struct {
	strict   bool
	first    *runParse
	balanced *runParse
	parses   int
}

// solveRun consumes the whole digit run right-to-left, backtracking over
// ambiguous field boundaries. The strict pass enforces the revenue
// checksums mid-search, which keeps the backtracking cheap on real lines;
// the lenient pass only runs when nothing balances.
func solveRun(s string) (runParse, bool) {
	strict := runSolver{strict: true}
	var cur runParse
	strict.search(s, stepSeats, &cur)
	if strict.balanced != nil {
		return *strict.balanced, true
	}

	var lenient runSolver
	lenient.search(s, stepSeats, &cur)
	if lenient.balanced != nil {
		return *lenient.balanced, true
	}
	if lenient.first != nil {
		return *lenient.first, true
	}
	return runParse{}, false
}

func (sv *runSolver) search(s string, step int, cur *runParse) {
	if sv.balanced != nil || sv.parses >= maxRunParses {
		return
	}
	if step == stepDone {
		// Step 6 of the schema: everything must have been consumed.
		if s != "" {
			return
		}
		sv.parses++
		parse := *cur
		if sv.first == nil {
			sv.first = &parse
		}
		if parse.balanced() {
			sv.balanced = &parse
		}
		return
	}

	var candidates []string
	switch step {
	case stepSeats:
		candidates = digitSuffixes(s)
	case stepSingleCount, stepNonFixedCount, stepFixedCount:
		candidates = countSuffixes(s)
	default:
		candidates = currencySuffixes(s)
	}

	for _, cand := range candidates {
		if sv.strict && !sv.admissible(step, cand, cur) {
			continue
		}
		cur.vals[step] = cand
		sv.search(s[:len(s)-len(cand)], step+1, cur)
	}
}

// admissible applies the checksum equations as soon as their operands are
// known: subtotal plus reserved must equal the total, and the category
// revenues must sum to the subtotal.
func (sv *runSolver) admissible(step int, cand string, cur *runParse) bool {
	switch step {
	case stepSubtotal:
		total := parseCurrency(cur.vals[stepTotal])
		reserved := parseCurrency(cur.vals[stepReserved])
		return total.Equal(parseCurrency(cand).Add(reserved))
	case stepFixedRev:
		subtotal := parseCurrency(cur.vals[stepSubtotal])
		sum := parseCurrency(cand).
			Add(parseCurrency(cur.vals[stepNonFixedRev])).
			Add(parseCurrency(cur.vals[stepSingleRev]))
		return subtotal.Equal(sum)
	}
	return true
}

// =============================================================================
// SUFFIX CANDIDATES
// =============================================================================

// currencySuffixes returns every suffix of s that forms a valid currency
// amount (1-3 leading digits, optional comma-separated thousands groups,
// exactly two decimals). Candidates without a leading zero come first so a
// zero stolen from the neighbouring field is only considered as a last
// resort; within each class, longer integer parts come first.
func currencySuffixes(s string) []string {
	n := len(s)
	if n < 4 || !isASCIIDigit(s[n-1]) || !isASCIIDigit(s[n-2]) || s[n-3] != '.' {
		return nil
	}
	i := n - 4
	for i >= 0 && (isASCIIDigit(s[i]) || s[i] == ',') {
		i--
	}
	run := s[i+1 : n-3]

	var plain, zeroLed []string
	for j := 0; j < len(run); j++ {
		part := run[j:]
		if !integerPartRe.MatchString(part) {
			continue
		}
		cand := part + s[n-3:]
		if len(part) > 1 && part[0] == '0' {
			zeroLed = append(zeroLed, cand)
		} else {
			plain = append(plain, cand)
		}
	}
	return append(plain, zeroLed...)
}

// countSuffixes returns the non-empty digit/comma suffixes of s that can
// serve as a ticket count, longest first.
func countSuffixes(s string) []string {
	n := len(s)
	i := n - 1
	for i >= 0 && (isASCIIDigit(s[i]) || s[i] == ',') {
		i--
	}
	run := s[i+1:]

	var out []string
	for j := 0; j < len(run); j++ {
		if run[j] == ',' {
			continue
		}
		out = append(out, run[j:])
	}
	return out
}

// digitSuffixes returns the plain digit suffixes of s, longest first, with
// the empty string last (the seat count may be absent).
func digitSuffixes(s string) []string {
	n := len(s)
	i := n - 1
	for i >= 0 && isASCIIDigit(s[i]) {
		i--
	}
	run := s[i+1:]

	out := make([]string, 0, len(run)+1)
	for j := 0; j < len(run); j++ {
		out = append(out, run[j:])
	}
	return append(out, "")
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

// =============================================================================
// NUMERIC CONVERSION
// =============================================================================

// parseCurrency parses a commas-stripped decimal. Fields that fail to
// convert default to zero; a holistic format mismatch is handled by the
// strategy-selection fallback, not per-field error propagation.
func parseCurrency(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseCount parses an integer, tolerating thousands separators.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// moneyField parses a whitespace-delimited currency field ("$1,234.56").
func moneyField(s string) decimal.Decimal {
	return parseCurrency(strings.TrimPrefix(s, "$"))
}

// percentField parses a whitespace-delimited percentage field ("85.5%").
func percentField(s string) decimal.Decimal {
	return parseCurrency(strings.TrimSuffix(s, "%"))
}
