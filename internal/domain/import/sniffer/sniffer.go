// Package sniffer provides automatic detection of sheet layouts.
// It locates header rows in sheets with leading metadata, detects CSV delimiters
// and generates fingerprints for header sets.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// DefaultMaxScanRows bounds the header search
const DefaultMaxScanRows = 20

// DefaultHeaderKeywords are the transport sheet header keywords (multi-language)
var DefaultHeaderKeywords = []string{
	// Spanish
	"conductor", "chofer", "chófer", "fecha", "precio", "importe", "cliente", "origen", "destino",
	// English
	"driver", "date", "price", "amount", "client", "origin", "destination",
}

// KeywordMatcher reports whether a cell text contains any header keyword
type KeywordMatcher struct {
	matcher *ahocorasick.Matcher
}

// NewKeywordMatcher builds a case-insensitive multi-keyword matcher
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	patterns := make([][]byte, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		patterns = append(patterns, []byte(kw))
	}
	if len(patterns) == 0 {
		return &KeywordMatcher{}
	}
	return &KeywordMatcher{matcher: ahocorasick.NewMatcher(patterns)}
}

// Contains reports whether s contains at least one keyword, ignoring case
func (m *KeywordMatcher) Contains(s string) bool {
	if m == nil || m.matcher == nil || s == "" {
		return false
	}
	return len(m.matcher.Match([]byte(strings.ToLower(s)))) > 0
}

// ScoreRow counts the text cells of a row that contain a keyword
func (m *KeywordMatcher) ScoreRow(row []record.Cell) int {
	score := 0
	for _, c := range row {
		if c.Kind == record.KindText && m.Contains(c.Text) {
			score++
		}
	}
	return score
}

// DetectHeaderRow returns the index of the row most likely to hold the column
// labels. Only the first maxRows rows are scanned. The first row with the
// highest score wins; when no row matches any keyword the first row is used.
func DetectHeaderRow(rows [][]record.Cell, keywords []string, maxRows int) int {
	return NewKeywordMatcher(keywords).DetectHeaderRow(rows, maxRows)
}

// DetectHeaderRow is DetectHeaderRow with a prebuilt matcher
func (m *KeywordMatcher) DetectHeaderRow(rows [][]record.Cell, maxRows int) int {
	if maxRows <= 0 {
		maxRows = DefaultMaxScanRows
	}

	best, bestScore := 0, 0
	for i, row := range rows {
		if i >= maxRows {
			break
		}
		if score := m.ScoreRow(row); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// Fingerprint creates a stable hash from header names
func Fingerprint(headers []string) string {
	// Normalize headers: lowercase, remove non-alphanumeric
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	joined := strings.Join(normalized, "|")
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}
