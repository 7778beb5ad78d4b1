package internal

import "strings"

// ApplyPatchTool is the tool identifier whose observations feed the patch
// aggregate.
const ApplyPatchTool = "apply_patch"

// ObservationFormat names the renderer an observation body was matched to.
type ObservationFormat string

const (
	FormatShell ObservationFormat = "shell"
	FormatPatch ObservationFormat = "patch"
	FormatAst   ObservationFormat = "ast"
	FormatDiff  ObservationFormat = "diff"
	FormatPlain ObservationFormat = "plain"
)

// TokenView pairs a link token with its resolved render policy.
type TokenView struct {
	Token      LinkToken
	Actionable bool
	Resolved   string
}

// StepView is one decorated transcript step ready for rendering.
type StepView struct {
	Step           Step
	Category       Category
	Format         ObservationFormat
	Shell          *ShellOutput
	Patch          *PatchResult
	Ast            map[string]interface{}
	DisplayContent string
	Tokens         []TokenView
	Failed         bool
	Collapsed      bool
}

// GroupView is one reasoning round of decorated steps.
type GroupView struct {
	Iteration *int
	Steps     []*StepView
}

// TranscriptView is the assembled, ordered view of a whole transcript.
type TranscriptView struct {
	SessionID string
	Groups    []GroupView
	Aggregate *PatchAggregate
	Pending   []PermissionRequest
	Streaming bool
}

// TranscriptAssembler turns an append-only step sequence into the decorated
// view model. It is safe to re-invoke on every re-render: parser and
// tokenizer results are memoized by content, steps already decorated are
// not reprocessed, and the patch aggregate only ever accumulates.
type TranscriptAssembler struct {
	cache      *FileExistenceCache
	workPath   string
	aggregator *PatchAggregator

	views      []*StepView
	processed  int
	patchCalls int

	tokenMemo map[string][]LinkToken
	shellMemo map[string]*ShellOutput
	patchMemo map[string]*PatchResult
	astMemo   map[string]map[string]interface{}
}

// NewTranscriptAssembler creates an assembler scoped to one open transcript.
// The existence cache is owned by the assembler's consumer so its lifetime
// matches the transcript's.
func NewTranscriptAssembler(cache *FileExistenceCache, workPath string) *TranscriptAssembler {
	if cache == nil {
		cache = NewFileExistenceCache(nil)
	}
	return &TranscriptAssembler{
		cache:      cache,
		workPath:   workPath,
		aggregator: NewPatchAggregator(),
		tokenMemo:  make(map[string][]LinkToken),
		shellMemo:  make(map[string]*ShellOutput),
		patchMemo:  make(map[string]*PatchResult),
		astMemo:    make(map[string]map[string]interface{}),
	}
}

// Assemble processes any steps appended since the previous call and returns
// the complete ordered view. The returned groups flatten back to the input
// step order exactly.
func (ta *TranscriptAssembler) Assemble(t *Transcript) *TranscriptView {
	for ; ta.processed < len(t.Steps); ta.processed++ {
		ta.views = append(ta.views, ta.decorate(t.Steps[ta.processed]))
	}
	ta.applyCollapseDefaults()

	view := &TranscriptView{
		SessionID: t.SessionID,
		Aggregate: ta.aggregator.Aggregate(),
		Pending:   t.Pending,
		Streaming: t.Streaming,
	}

	next := 0
	for _, group := range GroupIterations(t.Steps) {
		gv := GroupView{Iteration: group.Iteration}
		for range group.Steps {
			gv.Steps = append(gv.Steps, ta.views[next])
			next++
		}
		view.Groups = append(view.Groups, gv)
	}

	return view
}

// Reannotate re-resolves file tokens against the existence cache, upgrading
// references whose probes were still in flight when the step was decorated.
// Call it after the cache reports a resolution, or after waiting for
// outstanding probes to settle.
func (ta *TranscriptAssembler) Reannotate() {
	for _, view := range ta.views {
		for i := range view.Tokens {
			tv := &view.Tokens[i]
			if tv.Token.Kind != TokenFile || tv.Actionable || tv.Resolved == "" {
				continue
			}
			tv.Actionable = ta.cache.Status(tv.Resolved) == CheckExists
		}
	}
}

// decorate classifies and parses a single step. No parser failure escapes
// this boundary: a malformed step degrades to plain text and assembly of the
// rest of the transcript continues.
func (ta *TranscriptAssembler) decorate(step Step) *StepView {
	view := &StepView{
		Step:           step,
		Category:       Categorize(step.Type),
		DisplayContent: step.Content,
	}

	switch view.Category {
	case CategoryTool:
		if step.Type == StepObservation {
			ta.decorateObservation(view)
		}
	case CategoryFinal:
		if answer, ok := ExtractFinalAnswer(step.Content); ok {
			view.DisplayContent = answer
		}
		view.Tokens = ta.annotate(ta.tokenizeProse(view.DisplayContent))
	case CategoryThought, CategoryError:
		view.Tokens = ta.annotate(ta.tokenizeProse(view.DisplayContent))
	}

	return view
}

func (ta *TranscriptAssembler) decorateObservation(view *StepView) {
	content := view.Step.Content

	// Fixed parser precedence: shell > patch > ast > diff shape > plain.
	if shell := ta.parseShell(content); shell != nil {
		view.Format = FormatShell
		view.Shell = shell
		view.DisplayContent = shell.Body
		view.Failed = shell.Failed()
	} else if patch := ta.parsePatch(content); patch != nil {
		view.Format = FormatPatch
		view.Patch = patch
		view.Failed = !patch.OK
	} else if ast := ta.parseAst(content); ast != nil {
		view.Format = FormatAst
		view.Ast = ast
	} else if LooksLikeDiff(content) {
		view.Format = FormatDiff
	} else {
		view.Format = FormatPlain
	}

	// The exit-code marker flags failure no matter which parser matched.
	if code, ok := DetectExitCode(content); ok && code != 0 {
		view.Failed = true
	}

	if view.Step.ToolName() == ApplyPatchTool && view.Patch != nil {
		ta.patchCalls++
		ta.aggregator.Add(view.Patch)
	}

	switch view.Format {
	case FormatShell:
		view.Tokens = ta.annotate(ta.tokenize(view.Shell.Body))
	case FormatPlain, FormatDiff:
		view.Tokens = ta.annotate(ta.tokenize(content))
	}
}

// applyCollapseDefaults recomputes default collapse state. Observation
// bodies default collapsed, except AST payloads and, once more than one
// apply-patch call exists in the transcript, apply-patch results.
// Patch-shaped output from other tools follows the plain observation default.
func (ta *TranscriptAssembler) applyCollapseDefaults() {
	expandPatches := ta.patchCalls > 1
	for _, view := range ta.views {
		if view.Step.Type != StepObservation {
			continue
		}
		switch view.Format {
		case FormatAst:
			view.Collapsed = false
		case FormatPatch:
			view.Collapsed = !(expandPatches && view.Step.ToolName() == ApplyPatchTool)
		default:
			view.Collapsed = true
		}
	}
}

func (ta *TranscriptAssembler) parseShell(content string) *ShellOutput {
	if cached, ok := ta.shellMemo[content]; ok {
		return cached
	}
	parsed, _ := ParseShellOutput(content)
	ta.shellMemo[content] = parsed
	return parsed
}

func (ta *TranscriptAssembler) parsePatch(content string) *PatchResult {
	if cached, ok := ta.patchMemo[content]; ok {
		return cached
	}
	parsed, _ := ParsePatchResult(content)
	ta.patchMemo[content] = parsed
	return parsed
}

func (ta *TranscriptAssembler) parseAst(content string) map[string]interface{} {
	if cached, ok := ta.astMemo[content]; ok {
		return cached
	}
	parsed, _ := ParseAstPayload(content)
	ta.astMemo[content] = parsed
	return parsed
}

func (ta *TranscriptAssembler) tokenize(text string) []LinkToken {
	if cached, ok := ta.tokenMemo[text]; ok {
		return cached
	}
	tokens := Tokenize(text)
	ta.tokenMemo[text] = tokens
	return tokens
}

// tokenizeProse scans free text for references while leaving fenced code
// blocks and inline code spans alone; formatted spans were already handled
// by a richer pass and must not be re-linked.
func (ta *TranscriptAssembler) tokenizeProse(text string) []LinkToken {
	var tokens []LinkToken
	for _, span := range splitCodeSpans(text) {
		if span.code {
			tokens = append(tokens, LinkToken{Kind: TokenText, Text: span.text})
			continue
		}
		tokens = append(tokens, ta.tokenize(span.text)...)
	}
	return tokens
}

// annotate resolves each file token against the existence cache and records
// whether it should render as an actionable link.
func (ta *TranscriptAssembler) annotate(tokens []LinkToken) []TokenView {
	views := make([]TokenView, 0, len(tokens))
	for _, token := range tokens {
		tv := TokenView{Token: token}
		switch token.Kind {
		case TokenURL:
			tv.Actionable = true
		case TokenFile:
			resolved, checkable := ta.cache.Checkable(token.File.Path, ta.workPath)
			tv.Resolved = resolved
			if !checkable {
				tv.Actionable = true
			} else {
				tv.Actionable = ta.cache.Status(resolved) == CheckExists
			}
		}
		views = append(views, tv)
	}
	return views
}

type textSpan struct {
	text string
	code bool
}

// splitCodeSpans partitions text into code and non-code spans. Fenced blocks
// run from a ``` line to the closing fence; inline spans sit between
// backticks on one line. Concatenating the spans reproduces the input.
func splitCodeSpans(text string) []textSpan {
	var spans []textSpan
	emit := func(text string, code bool) {
		if text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].code == code {
			spans[n-1].text += text
			return
		}
		spans = append(spans, textSpan{text: text, code: code})
	}

	inFence := false
	lines := strings.SplitAfter(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			emit(line, true)
			inFence = !inFence
			continue
		}
		if inFence {
			emit(line, true)
			continue
		}
		emitInlineSpans(line, emit)
	}

	return spans
}

func emitInlineSpans(line string, emit func(string, bool)) {
	for {
		open := strings.IndexByte(line, '`')
		if open < 0 {
			emit(line, false)
			return
		}
		closing := strings.IndexByte(line[open+1:], '`')
		if closing < 0 {
			emit(line, false)
			return
		}
		emit(line[:open], false)
		emit(line[open:open+closing+2], true)
		line = line[open+closing+2:]
	}
}
