package sniffer

import "strings"

var delimiters = []rune{';', '\t', ',', '|'}

// DetectDelimiter picks the CSV delimiter from the first lines of a file.
// Each line votes for the delimiter it contains most often; ties between
// lines go to the delimiter seen on more lines. Comma is the fallback.
func DetectDelimiter(data []byte, maxLines int) rune {
	if maxLines <= 0 {
		maxLines = DefaultMaxScanRows
	}

	votes := make(map[rune]int, len(delimiters))
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if i >= maxLines {
			break
		}
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		if d, count := detectDelimiter(line); count > 0 {
			votes[d]++
		}
	}

	best, bestVotes := ',', 0
	for _, d := range delimiters {
		if votes[d] > bestVotes {
			best, bestVotes = d, votes[d]
		}
	}
	return best
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}
