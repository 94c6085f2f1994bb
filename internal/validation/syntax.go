package validation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/exec"
	"github.com/ShayCichocki/agentnexus/internal/logging"
)

// SyntaxChecker parses source and reports the first syntax error.
type SyntaxChecker interface {
	Check(ctx context.Context, source []byte) error
}

// SyntaxError describes where parsing failed. Line and Column are 1-based.
type SyntaxError struct {
	Line   int
	Column int
	Near   string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%s at line %d, column %d near %q", e.Reason, e.Line, e.Column, e.Near)
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Reason, e.Line, e.Column)
}

// PythonSyntax checks Python source with the tree-sitter grammar.
// A new parser is created per call because parsers are not safe for
// concurrent use.
type PythonSyntax struct{}

// Check returns a *SyntaxError for the first ERROR or missing node.
func (PythonSyntax) Check(ctx context.Context, source []byte) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	if n := firstError(root); n != nil {
		return nodeError(n, source)
	}
	return &SyntaxError{Line: 1, Column: 1, Reason: "invalid syntax"}
}

// firstError walks the tree depth first and returns the earliest error node.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func nodeError(n *sitter.Node, source []byte) *SyntaxError {
	pos := n.StartPoint()
	e := &SyntaxError{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
		Reason: "invalid syntax",
	}
	if n.IsMissing() {
		e.Reason = "missing " + n.Type()
		return e
	}
	near := string(source[n.StartByte():n.EndByte()])
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = near[:i]
	}
	if len(near) > 40 {
		near = near[:40]
	}
	e.Near = strings.TrimSpace(near)
	return e
}

// compileScript compiles stdin without running it and reports the first
// error on stderr as "<marker><line>:<col>:<message>".
const compileScript = `import sys
src = sys.stdin.buffer.read()
try:
    compile(src, "<source>", "exec", dont_inherit=True)
except (SyntaxError, ValueError) as e:
    line = getattr(e, "lineno", None) or 1
    col = getattr(e, "offset", None) or 1
    msg = getattr(e, "msg", None) or str(e)
    sys.stderr.write("` + compileMarker + `%d:%d:%s\n" % (line, col, msg))
    sys.exit(1)
`

const compileMarker = "nexus-syntax:"

// CompileSyntax checks source with the interpreter's own compiler, so it
// rejects everything the interpreter would refuse to run. When the
// interpreter cannot be started the fallback checker decides instead.
type CompileSyntax struct {
	runner      exec.CommandRunner
	interpreter string
	timeout     time.Duration
	fallback    SyntaxChecker
	logger      *zap.Logger
}

// NewCompileSyntax creates a checker that runs interpreter. fallback may be nil.
func NewCompileSyntax(runner exec.CommandRunner, interpreter string, timeout time.Duration, fallback SyntaxChecker, logger *zap.Logger) *CompileSyntax {
	return &CompileSyntax{
		runner:      runner,
		interpreter: interpreter,
		timeout:     timeout,
		fallback:    fallback,
		logger:      logging.OrNop(logger),
	}
}

// Check returns a *SyntaxError carrying the interpreter's message.
func (c *CompileSyntax) Check(ctx context.Context, source []byte) error {
	err := c.compile(ctx, source)
	if err == nil {
		return nil
	}
	var se *SyntaxError
	if errors.As(err, &se) || c.fallback == nil {
		return err
	}
	c.logger.Warn("interpreter syntax check unavailable, using parser", zap.Error(err))
	return c.fallback.Check(ctx, source)
}

func (c *CompileSyntax) compile(ctx context.Context, source []byte) error {
	if c.interpreter == "" {
		return errors.New("no interpreter configured")
	}
	opts := exec.Options{Stdin: string(source), Timeout: c.timeout}
	res, err := c.runner.Capture(ctx, opts, c.interpreter, "-c", compileScript)
	if err != nil {
		return fmt.Errorf("run %s: %w", c.interpreter, err)
	}
	if res.ExitCode == 0 {
		return nil
	}
	if se := parseCompileError(res.Stderr, source); se != nil {
		return se
	}
	return fmt.Errorf("%s exited %d: %s", c.interpreter, res.ExitCode, strings.TrimSpace(res.Stderr))
}

// parseCompileError reads the marker line written by compileScript.
func parseCompileError(stderr string, source []byte) *SyntaxError {
	i := strings.LastIndex(stderr, compileMarker)
	if i < 0 {
		return nil
	}
	line, _, _ := strings.Cut(stderr[i+len(compileMarker):], "\n")
	parts := strings.SplitN(strings.TrimRight(line, "\r"), ":", 3)
	if len(parts) != 3 {
		return nil
	}
	ln, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	return &SyntaxError{
		Line:   max(ln, 1),
		Column: max(col, 1),
		Near:   sourceLine(source, ln),
		Reason: strings.TrimSpace(parts[2]),
	}
}

func sourceLine(source []byte, n int) string {
	lines := strings.Split(string(source), "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	near := strings.TrimSpace(lines[n-1])
	if len(near) > 40 {
		near = near[:40]
	}
	return near
}
