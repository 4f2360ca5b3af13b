package extract

import (
	"regexp"
	"strings"
)

// Compiled patterns shared by the vendor extractors
var (
	totalsPattern = regexp.MustCompile(`(?i)^\s*(sub\s*-?\s*total|total|freight|shipping|handling|tax|discount|amount\s+due|balance)\b`)

	// Two-character tray/location codes printed between records
	trayCodePattern = regexp.MustCompile(`^[A-Z0-9]{2}$`)

	// Fragments that trail a completed record: a bare size pair, a bare
	// quantity, or a bare date
	bareSizePattern = regexp.MustCompile(`^\d{2}/\d{2}(\s+\d{3})?$`)
	bareQtyPattern  = regexp.MustCompile(`^\d{1,3}$`)
	bareDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

// splitLines splits document content into trimmed-right lines, tolerating
// CRLF and form feeds from PDF page breaks.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\f", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isTotalsLine(line string) bool {
	return totalsPattern.MatchString(line)
}

func isTrayCode(line string) bool {
	return trayCodePattern.MatchString(strings.TrimSpace(line))
}

// isBareFragment reports whether the line is a leftover table fragment
// (size, quantity, or date standing alone).
func isBareFragment(line string) bool {
	s := strings.TrimSpace(line)
	return bareSizePattern.MatchString(s) || bareQtyPattern.MatchString(s) || bareDatePattern.MatchString(s)
}

// headerRules names the label tokens each vendor prints in its header
// block.
type headerRules struct {
	orderLabels    []string
	accountLabels  []string
	customerLabels []string
	dateLabels     []string
}

// labelValue scans for the first line carrying one of the labels and
// resolves its value, trying the known layout variants in fixed priority
// order: value after the label on the same line, value on the next line,
// value two lines below. The first non-empty result wins.
func labelValue(lines []string, labels []string) string {
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, label := range labels {
			pos := strings.Index(lower, strings.ToLower(label))
			if pos < 0 {
				continue
			}
			rest := strings.Trim(line[pos+len(label):], " \t:#")
			if rest != "" {
				return rest
			}
			if i+1 < len(lines) {
				if v := strings.TrimSpace(lines[i+1]); v != "" {
					return v
				}
			}
			if i+2 < len(lines) {
				if v := strings.TrimSpace(lines[i+2]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// extractHeader resolves the order header block using the vendor's label
// set.
func extractHeader(lines []string, rules headerRules) (order, account, customer, date string) {
	order = labelValue(lines, rules.orderLabels)
	account = labelValue(lines, rules.accountLabels)
	customer = labelValue(lines, rules.customerLabels)
	date = labelValue(lines, rules.dateLabels)
	return order, account, customer, date
}

// record is one reconstructed multi-line span with its 1-based source
// line number.
type record struct {
	lineNumber int
	text       string
}

// recordScanner reassembles multi-line item records from the line
// sequence below the vendor's item-table sentinel.
type recordScanner struct {
	brands    []string // upper-case, longest first
	sentinel  string   // item table heading, matched case-insensitively
	lookahead int      // max lines absorbed into one record
}

// startsRecord reports whether the line opens a new item record (known
// brand prefix at a word boundary).
func (s recordScanner) startsRecord(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, brand := range s.brands {
		if !strings.HasPrefix(upper, brand) {
			continue
		}
		rest := upper[len(brand):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return true
		}
	}
	return false
}

// scan walks the line sequence and produces one reconstructed string per
// candidate record. Lines are greedily absorbed after a record start, up
// to the lookahead, until a stop condition holds: the next line starts a
// new record, is a totals line, is a tray/location code, or is a bare
// size/quantity/date fragment after the record has already seen its size
// token.
func (s recordScanner) scan(lines []string) []record {
	start := 0
	if s.sentinel != "" {
		sentinelLower := strings.ToLower(s.sentinel)
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), sentinelLower) {
				start = i + 1
				break
			}
		}
	}

	lookahead := s.lookahead
	if lookahead <= 0 {
		lookahead = 4
	}

	var records []record
	i := start
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || isTotalsLine(line) || !s.startsRecord(line) {
			i++
			continue
		}

		rec := record{lineNumber: i + 1, text: line}
		sizeSeen := sizePattern.MatchString(line)

		absorbed := 0
		j := i + 1
		for j < len(lines) && absorbed < lookahead {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				j++
				continue
			}
			if s.startsRecord(next) || isTotalsLine(next) || isTrayCode(next) {
				break
			}
			if sizeSeen && isBareFragment(next) {
				break
			}
			rec.text += "\n" + next
			if sizePattern.MatchString(next) {
				sizeSeen = true
			}
			absorbed++
			j++
		}

		records = append(records, rec)
		i = j
	}
	return records
}
