package internal

import (
	"regexp"
	"strconv"
	"strings"
)

// ShellHeader holds the bracketed key=value fields a shell tool prepends to
// its output, e.g. "[pty_id=p1 status=running exit_code=0]".
type ShellHeader struct {
	PtyID       string
	Status      string
	Pty         *bool
	ExitCode    *int
	IdleTimeout *int
	BufferSize  *int
	Cursor      *int
	Reset       *bool
	PtyFallback *bool
}

// ShellOutput represents a parsed shell observation: the bracket header plus
// the remaining body text.
type ShellOutput struct {
	Header ShellHeader
	Body   string
}

// Failed reports whether the header carries a non-zero exit code.
func (so *ShellOutput) Failed() bool {
	return so.Header.ExitCode != nil && *so.Header.ExitCode != 0
}

var shellHeaderPattern = regexp.MustCompile(`^\[([^\]\n]*)\](.*)$`)

// ParseShellOutput attempts to read an observation body as shell-tool output.
// The first line must be a bracketed header; otherwise the text is not shell
// output and false is reported. Unrecognized tokens inside the brackets are
// preserved verbatim at the start of the body.
func ParseShellOutput(text string) (*ShellOutput, bool) {
	firstLine := text
	rest := ""
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
		rest = text[idx+1:]
	}

	match := shellHeaderPattern.FindStringSubmatch(firstLine)
	if match == nil {
		return nil, false
	}

	output := &ShellOutput{}
	var leftover []string
	for _, token := range strings.Fields(match[1]) {
		key, value, found := strings.Cut(token, "=")
		if !found || !parseShellField(&output.Header, key, value) {
			leftover = append(leftover, token)
		}
	}

	prefix := strings.Join(leftover, " ")
	// Text after the closing bracket keeps its original spacing.
	if trailing := strings.TrimLeft(match[2], " \t"); trailing != "" {
		if prefix != "" {
			prefix += " " + trailing
		} else {
			prefix = trailing
		}
	}

	body := rest
	if prefix != "" {
		if body != "" {
			body = prefix + "\n" + body
		} else {
			body = prefix
		}
	}
	output.Body = body

	return output, true
}

func parseShellField(header *ShellHeader, key, value string) bool {
	switch key {
	case "pty_id":
		header.PtyID = value
	case "status":
		header.Status = value
	case "pty":
		header.Pty = parseShellBool(value)
	case "reset":
		header.Reset = parseShellBool(value)
	case "pty_fallback":
		header.PtyFallback = parseShellBool(value)
	case "exit_code":
		return assignShellInt(&header.ExitCode, value)
	case "idle_timeout":
		return assignShellInt(&header.IdleTimeout, value)
	case "buffer_size":
		return assignShellInt(&header.BufferSize, value)
	case "cursor":
		return assignShellInt(&header.Cursor, value)
	default:
		return false
	}
	return true
}

func parseShellBool(value string) *bool {
	b := strings.EqualFold(value, "true")
	return &b
}

func assignShellInt(dst **int, value string) bool {
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	*dst = &n
	return true
}

var exitCodeMarker = regexp.MustCompile(`\[exit_code\s*=\s*(-?\d+)\]`)

// DetectExitCode scans observation text for an "[exit_code = N]" marker.
// This runs independently of the structured parsers so a failure is flagged
// even when no richer format matched.
func DetectExitCode(text string) (int, bool) {
	match := exitCodeMarker.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
