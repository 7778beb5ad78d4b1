package internal

import (
	"regexp"
	"strconv"
	"strings"
)

// TokenKind discriminates the variants of a LinkToken.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenURL
	TokenFile
)

// FileReference is a file path extracted from transcript text, with optional
// line and column positions stripped from a ":line[:col]" or "#Lline[Ccol]"
// suffix.
type FileReference struct {
	Path   string `json:"path"`
	Line   *int   `json:"line,omitempty"`
	Column *int   `json:"column,omitempty"`
}

// LinkToken is one span of tokenized text. Text always holds the original
// source span, so concatenating the Text fields of a token sequence
// reproduces the input exactly.
type LinkToken struct {
	Kind TokenKind      `json:"kind"`
	Text string         `json:"text"`
	URL  string         `json:"url,omitempty"`
	File *FileReference `json:"file,omitempty"`
}

// Candidate patterns in priority order. Among matches at the same position
// the earlier pattern wins; across positions the leftmost match wins.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.-]*://[^\s<>"'` + "`" + `]+`), // scheme URL
	regexp.MustCompile(`file://[^\s<>"'` + "`" + `]+`),                    // file URL
	regexp.MustCompile(`www\.[^\s<>"'` + "`" + `]+`),                      // bare www URL
	regexp.MustCompile(`[A-Za-z]:[\\/][^\s<>"'` + "`" + `]*`),             // drive-letter path
	regexp.MustCompile(`\\\\[^\s<>"'` + "`" + `]+`),                       // UNC path
	regexp.MustCompile(`\.{0,2}/[^\s<>"'` + "`" + `]+`),                   // POSIX path
	regexp.MustCompile(`[A-Za-z0-9._~-]+(?:[\\/][A-Za-z0-9._~-]+)*\.[A-Za-z0-9]{1,4}(?::\d+(?::\d+)?|#L\d+(?:C\d+)?)?`), // bare segment with extension
}

const trailingPunctuation = "),.;:!?"

// Extensions that qualify a bare segment (no leading slash or dot-relative
// prefix) as a file reference.
var recognizedExtensions = map[string]bool{
	"bat": true, "c": true, "cc": true, "cfg": true, "conf": true, "cpp": true,
	"cs": true, "css": true, "csv": true, "db": true, "go": true, "h": true,
	"hpp": true, "html": true, "ini": true, "java": true, "js": true,
	"json": true, "jsx": true, "kt": true, "lock": true, "log": true,
	"md": true, "mod": true, "php": true, "png": true, "ps1": true,
	"py": true, "rb": true, "rs": true, "sh": true, "sql": true, "sum": true,
	"svg": true, "toml": true, "ts": true, "tsx": true, "txt": true,
	"xml": true, "yaml": true, "yml": true, "zig": true,
}

// Single letters that appear after a backslash in escaped text (\n, \t, ...).
// A backslash path whose first segment is one of these is almost certainly a
// literal escape sequence from encoded content, not a directory.
var escapeLetters = map[string]bool{
	"n": true, "r": true, "t": true, "b": true, "f": true, "v": true, "0": true,
}

// Tokenize splits text into a gap-free sequence of Text, URL, and File
// tokens. Unmatched spans and candidates that fail the path heuristics pass
// through as Text verbatim.
func Tokenize(text string) []LinkToken {
	var tokens []LinkToken
	flushText := func(span string) {
		if span == "" {
			return
		}
		if n := len(tokens); n > 0 && tokens[n-1].Kind == TokenText {
			tokens[n-1].Text += span
			return
		}
		tokens = append(tokens, LinkToken{Kind: TokenText, Text: span})
	}

	pos := 0
	for pos < len(text) {
		start, end := findCandidate(text, pos)
		if start < 0 {
			break
		}
		flushText(text[pos:start])

		candidate := text[start:end]
		core, trailing := stripTrailing(candidate)
		if token, ok := classifyCandidate(core); ok {
			tokens = append(tokens, token)
			flushText(trailing)
		} else {
			flushText(candidate)
		}
		pos = end
	}
	flushText(text[pos:])

	return tokens
}

// findCandidate locates the next pattern match at or after from, honoring
// leftmost-then-priority ordering and skipping matches glued to a preceding
// word character.
func findCandidate(text string, from int) (int, int) {
	search := from
	for search < len(text) {
		bestStart, bestEnd := -1, -1
		for _, pattern := range linkPatterns {
			loc := pattern.FindStringIndex(text[search:])
			if loc == nil {
				continue
			}
			start, end := search+loc[0], search+loc[1]
			if bestStart < 0 || start < bestStart {
				bestStart, bestEnd = start, end
			}
		}
		if bestStart < 0 {
			return -1, -1
		}
		if boundaryOK(text, bestStart) {
			return bestStart, bestEnd
		}
		search = bestStart + 1
	}
	return -1, -1
}

// boundaryOK rejects matches that begin in the middle of a word, which would
// otherwise split spans like "and/or" or "v1.2.3-rc.1" into bogus paths.
func boundaryOK(text string, start int) bool {
	if start == 0 {
		return true
	}
	prev := text[start-1]
	switch {
	case prev >= 'a' && prev <= 'z', prev >= 'A' && prev <= 'Z', prev >= '0' && prev <= '9':
		return false
	case prev == '/' || prev == '\\' || prev == '.' || prev == '-' || prev == '_' || prev == '~':
		return false
	}
	return true
}

// stripTrailing peels sentence punctuation off the end of a candidate so
// "See /tmp/report.csv." links the path, not the period.
func stripTrailing(candidate string) (string, string) {
	end := len(candidate)
	for end > 0 && strings.ContainsRune(trailingPunctuation, rune(candidate[end-1])) {
		end--
	}
	return candidate[:end], candidate[end:]
}

func classifyCandidate(candidate string) (LinkToken, bool) {
	if candidate == "" {
		return LinkToken{}, false
	}
	if isURL(candidate) {
		return LinkToken{Kind: TokenURL, Text: candidate, URL: candidate}, true
	}
	if ref, ok := parseFileReference(candidate); ok {
		return LinkToken{Kind: TokenFile, Text: candidate, File: ref}, true
	}
	return LinkToken{}, false
}

func isURL(candidate string) bool {
	lower := strings.ToLower(candidate)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "file://") ||
		strings.HasPrefix(lower, "www.")
}

var (
	lineColonSuffix = regexp.MustCompile(`^(.*?):(\d+)(?::(\d+))?$`)
	lineHashSuffix  = regexp.MustCompile(`^(.*?)#L(\d+)(?:C(\d+))?$`)
)

// parseFileReference validates a candidate against the file-path heuristics,
// first stripping a trailing :line[:col] or #Lline[Ccol] suffix into
// explicit fields.
func parseFileReference(candidate string) (*FileReference, bool) {
	path := candidate
	var line, column *int

	for _, suffix := range []*regexp.Regexp{lineHashSuffix, lineColonSuffix} {
		match := suffix.FindStringSubmatch(path)
		if match == nil || match[1] == "" {
			continue
		}
		if n, err := strconv.Atoi(match[2]); err == nil {
			line = &n
		}
		if match[3] != "" {
			if n, err := strconv.Atoi(match[3]); err == nil {
				column = &n
			}
		}
		path = match[1]
		break
	}

	if !looksLikePath(path) {
		return nil, false
	}
	return &FileReference{Path: path, Line: line, Column: column}, true
}

func looksLikePath(path string) bool {
	if path == "" {
		return false
	}
	if isDrivePath(path) || strings.HasPrefix(path, `\\`) {
		return !startsWithEscapeSegment(path)
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return true
	}
	return hasRecognizedExtension(path)
}

func isDrivePath(path string) bool {
	if len(path) < 3 {
		return false
	}
	letter := path[0]
	if !(letter >= 'a' && letter <= 'z' || letter >= 'A' && letter <= 'Z') {
		return false
	}
	return path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}

// startsWithEscapeSegment guards against literal backslash escapes inside
// encoded content being mistaken for a directory layout: in an undecoded
// JSON string a span like "C:\n\data" carries an escaped newline, not a
// directory named "n".
func startsWithEscapeSegment(path string) bool {
	rest := path
	switch {
	case isDrivePath(path):
		rest = path[3:]
	case strings.HasPrefix(path, `\\`):
		rest = path[2:]
	}
	segment := rest
	if idx := strings.IndexAny(rest, `\/`); idx >= 0 {
		segment = rest[:idx]
	}
	return escapeLetters[segment]
}

func hasRecognizedExtension(path string) bool {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return false
	}
	return recognizedExtensions[strings.ToLower(path[idx+1:])]
}
