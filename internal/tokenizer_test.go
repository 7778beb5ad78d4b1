package internal

import (
	"strings"
	"testing"
)

func TestTokenizeBasicFileReference(t *testing.T) {
	tokens := Tokenize("See /tmp/report.csv for details.")

	if len(tokens) != 3 {
		t.Fatalf("len(tokens) = %d, want 3: %+v", len(tokens), tokens)
	}
	if tokens[0].Kind != TokenText || tokens[0].Text != "See " {
		t.Errorf("tokens[0] = %+v, want Text(\"See \")", tokens[0])
	}
	if tokens[1].Kind != TokenFile || tokens[1].File.Path != "/tmp/report.csv" {
		t.Errorf("tokens[1] = %+v, want File(/tmp/report.csv)", tokens[1])
	}
	if tokens[2].Kind != TokenText || tokens[2].Text != " for details." {
		t.Errorf("tokens[2] = %+v, want Text(\" for details.\")", tokens[2])
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	// Concatenating token text must reproduce the input byte for byte.
	inputs := []string{
		"",
		"plain prose with no references at all",
		"See /tmp/report.csv for details.",
		"open https://example.com/docs?q=1 and www.example.org.",
		"mixed /a/b.go and C:\\Users\\dev\\app.ts and \\\\server\\share\\x.txt",
		"broken ./partial and ../up/one.py, then main.go:42:7",
		"sentence ends with a path /var/log/syslog.",
		"and/or neither, v1.2.3-rc.1 either",
		"escaped C:\\n\\data stays text",
		"file #L ref src/app.ts#L10C5 done",
		"adjacent/tmp/x /tmp/y",
		"trailing slash dir /usr/local/",
	}

	for _, input := range inputs {
		tokens := Tokenize(input)
		var rebuilt strings.Builder
		for _, token := range tokens {
			rebuilt.WriteString(token.Text)
		}
		if rebuilt.String() != input {
			t.Errorf("round trip failed:\n input: %q\noutput: %q", input, rebuilt.String())
		}
	}
}

func TestTokenizeURLs(t *testing.T) {
	tests := []struct {
		text    string
		wantURL string
	}{
		{"docs at https://example.com/guide.", "https://example.com/guide"},
		{"see http://localhost:8080/health now", "http://localhost:8080/health"},
		{"local file://tmp/data.json here", "file://tmp/data.json"},
		{"or www.example.org/page works", "www.example.org/page"},
	}

	for _, tt := range tests {
		tokens := Tokenize(tt.text)
		var url string
		for _, token := range tokens {
			if token.Kind == TokenURL {
				url = token.URL
			}
		}
		if url != tt.wantURL {
			t.Errorf("Tokenize(%q) URL = %q, want %q", tt.text, url, tt.wantURL)
		}
	}
}

func TestTokenizeLineColumnSuffix(t *testing.T) {
	tests := []struct {
		text     string
		wantPath string
		wantLine int
		wantCol  int // 0 means nil
	}{
		{"/src/main.go:42", "/src/main.go", 42, 0},
		{"/src/main.go:42:7", "/src/main.go", 42, 7},
		{"src/app.ts#L10", "src/app.ts", 10, 0},
		{"src/app.ts#L10C5", "src/app.ts", 10, 5},
	}

	for _, tt := range tests {
		tokens := Tokenize(tt.text)
		if len(tokens) != 1 || tokens[0].Kind != TokenFile {
			t.Fatalf("Tokenize(%q) = %+v, want single file token", tt.text, tokens)
		}
		ref := tokens[0].File
		if ref.Path != tt.wantPath {
			t.Errorf("Tokenize(%q) path = %q, want %q", tt.text, ref.Path, tt.wantPath)
		}
		if ref.Line == nil || *ref.Line != tt.wantLine {
			t.Errorf("Tokenize(%q) line = %v, want %d", tt.text, ref.Line, tt.wantLine)
		}
		if tt.wantCol == 0 {
			if ref.Column != nil {
				t.Errorf("Tokenize(%q) column = %d, want nil", tt.text, *ref.Column)
			}
		} else if ref.Column == nil || *ref.Column != tt.wantCol {
			t.Errorf("Tokenize(%q) column = %v, want %d", tt.text, ref.Column, tt.wantCol)
		}
	}
}

func TestTokenizeTrailingPunctuation(t *testing.T) {
	tokens := Tokenize("read /etc/hosts, then /etc/fstab;")

	var files []string
	for _, token := range tokens {
		if token.Kind == TokenFile {
			files = append(files, token.File.Path)
		}
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 entries", files)
	}
	if files[0] != "/etc/hosts" || files[1] != "/etc/fstab" {
		t.Errorf("files = %v, want [/etc/hosts /etc/fstab]", files)
	}
}

func TestTokenizeWindowsPaths(t *testing.T) {
	tokens := Tokenize(`edit C:\Users\dev\app.ts and \\server\share\doc.md`)

	var files []string
	for _, token := range tokens {
		if token.Kind == TokenFile {
			files = append(files, token.File.Path)
		}
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 entries", files)
	}
	if files[0] != `C:\Users\dev\app.ts` {
		t.Errorf("files[0] = %q, want drive path", files[0])
	}
	if files[1] != `\\server\share\doc.md` {
		t.Errorf("files[1] = %q, want UNC path", files[1])
	}
}

func TestTokenizeEscapeSequenceGuard(t *testing.T) {
	// A backslash path whose first segment is an escape letter comes from
	// undecoded string content and must stay plain text.
	for _, text := range []string{`C:\n\data`, `C:\t\col`, `\\n\share`} {
		for _, token := range Tokenize(text) {
			if token.Kind == TokenFile {
				t.Errorf("Tokenize(%q) produced file token %+v, want text only", text, token)
			}
		}
	}

	// A real single-letter directory that is not an escape letter still links.
	tokens := Tokenize(`C:\x\data.txt`)
	found := false
	for _, token := range tokens {
		if token.Kind == TokenFile {
			found = true
		}
	}
	if !found {
		t.Error(`Tokenize(C:\x\data.txt) produced no file token, want one`)
	}
}

func TestTokenizeBareSegments(t *testing.T) {
	tests := []struct {
		text     string
		wantFile bool
	}{
		{"main.go", true},
		{"config.yaml", true},
		{"requirements.txt", true},
		{"archive.xyzzy", false}, // unrecognized extension
		{"1.2.3", false},
		{"etc.", false},
	}

	for _, tt := range tests {
		found := false
		for _, token := range Tokenize(tt.text) {
			if token.Kind == TokenFile {
				found = true
			}
		}
		if found != tt.wantFile {
			t.Errorf("Tokenize(%q) file token = %v, want %v", tt.text, found, tt.wantFile)
		}
	}
}

func TestTokenizeWordBoundary(t *testing.T) {
	// Matches glued to a preceding word character are not references.
	for _, text := range []string{"and/or choices", "some123/etc/passwd stays"} {
		for _, token := range Tokenize(text) {
			if token.Kind != TokenText {
				t.Errorf("Tokenize(%q) produced %+v, want text only", text, token)
			}
		}
	}
}

func TestTokenizeAdjacentTextMerged(t *testing.T) {
	// Rejected candidates merge back into surrounding text spans, never
	// producing two adjacent text tokens.
	tokens := Tokenize("not a path: and/or plus etc. end")
	for i := 1; i < len(tokens); i++ {
		if tokens[i-1].Kind == TokenText && tokens[i].Kind == TokenText {
			t.Fatalf("adjacent text tokens at %d: %+v", i, tokens)
		}
	}
}
