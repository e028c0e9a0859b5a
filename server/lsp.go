package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/hlang/compiler"
	"github.com/chazu/hlang/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "hlang-lsp"

// LspServer provides diagnostics, completion and hover for Hlang sources.
type LspServer struct {
	tabWidth int

	mu   sync.Mutex
	docs map[protocol.DocumentUri]*document

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// document is an open editor buffer and the declarations of its last
// successful parse.
type document struct {
	text  string
	decls []declaration
}

// declaration is a top-level name of a document.
type declaration struct {
	name      string
	kind      protocol.CompletionItemKind
	signature string
	line      int
}

// NewLSP creates a language server tokenizing with the given tab width.
func NewLSP(tabWidth int) *LspServer {
	s := &LspServer{
		tabWidth: tabWidth,
		docs:     make(map[protocol.DocumentUri]*document),
		version:  "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Hlang LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.update(ctx, params.TextDocument.URI, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update stores text, refreshes declarations when it parses and publishes
// its diagnostics.
func (s *LspServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	decls, diagnostics := analyze(text, s.tabWidth)

	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.text = text
	if len(diagnostics) == 0 {
		doc.decls = decls
	}
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *LspServer) lookup(uri protocol.DocumentUri) (string, []declaration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return "", nil, false
	}
	return doc.text, doc.decls, true
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, decls, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return complete(prefix, decls), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, decls, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return hover(word, decls), nil
}

// --- Analysis ---

// analyze parses text and returns its top-level declarations, or a single
// diagnostic at the line of the first error.
func analyze(text string, tabWidth int) ([]declaration, []protocol.Diagnostic) {
	program, err := compiler.Parse(text, compiler.WithTabWidth(tabWidth))
	if err != nil {
		return nil, []protocol.Diagnostic{diagnostic(text, err)}
	}
	return declarations(program), []protocol.Diagnostic{}
}

func diagnostic(text string, err error) protocol.Diagnostic {
	line, message := 0, err.Error()
	var syntaxErr *compiler.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, message = syntaxErr.Line-1, syntaxErr.Message
	}

	lines := strings.Split(text, "\n")
	if line >= len(lines) {
		line = len(lines) - 1
	}
	if line < 0 {
		line = 0
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(len(lines[line]))},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

func declarations(program []compiler.Stmt) []declaration {
	var decls []declaration
	for _, stmt := range program {
		switch s := stmt.(type) {
		case *compiler.Function:
			decls = append(decls, declaration{
				name:      s.Name.Lexeme,
				kind:      protocol.CompletionItemKindFunction,
				signature: signature(s),
				line:      s.Line(),
			})
		case *compiler.Class:
			var b strings.Builder
			fmt.Fprintf(&b, "class %s", s.Name.Lexeme)
			if s.Parent != nil {
				fmt.Fprintf(&b, " extends %s", s.Parent.Name.Lexeme)
			}
			for _, m := range s.Methods {
				fmt.Fprintf(&b, "\n    %s", signature(m))
			}
			decls = append(decls, declaration{
				name:      s.Name.Lexeme,
				kind:      protocol.CompletionItemKindClass,
				signature: b.String(),
				line:      s.Line(),
			})
		case *compiler.ExprStmt:
			if a, ok := s.Expr.(*compiler.Assign); ok && a.Declare {
				decls = append(decls, declaration{
					name:      a.Name.Lexeme,
					kind:      protocol.CompletionItemKindVariable,
					signature: "define " + a.Name.Lexeme,
					line:      a.Line(),
				})
			}
		case *compiler.Import:
			decls = append(decls, declaration{
				name:      s.Name.Lexeme,
				kind:      protocol.CompletionItemKindVariable,
				signature: fmt.Sprintf("import %s from %s", s.Name.Lexeme, s.Module()),
				line:      s.Line(),
			})
		}
	}
	return decls
}

func signature(fn *compiler.Function) string {
	var b strings.Builder
	if fn.IsStatic {
		b.WriteString("static ")
	}
	if fn.IsPrivate {
		b.WriteString("private ")
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	fmt.Fprintf(&b, "function %s(%s)", fn.Name.Lexeme, strings.Join(params, ", "))
	return b.String()
}

func complete(prefix string, decls []declaration) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if strings.HasPrefix(label, prefix) {
			items = append(items, protocol.CompletionItem{
				Label:      label,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &label,
			})
		}
	}

	for _, d := range decls {
		add(d.name, d.kind, firstLine(d.signature))
	}
	for _, name := range vm.NativeNames() {
		add(name, protocol.CompletionItemKindFunction, "native function")
	}
	for _, kw := range compiler.Keywords() {
		add(kw, protocol.CompletionItemKindKeyword, "keyword")
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func hover(word string, decls []declaration) *protocol.Hover {
	var value string
	for _, d := range decls {
		if d.name == word {
			value = fmt.Sprintf("```hlang\n%s\n```\n\nDeclared on line %d", d.signature, d.line)
			break
		}
	}
	if value == "" {
		if n, ok := vm.LookupNative(word); ok {
			value = fmt.Sprintf("**%s** native function taking %d argument(s)", n.Name, n.Args)
		} else if typ, ok := compiler.LookupKeyword(word); ok {
			value = fmt.Sprintf("**%s** keyword (`%s`)", word, typ)
		}
	}
	if value == "" {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// --- Text extraction helpers ---

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(rune(line[end])) {
		end++
	}
	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
