package assertion

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/tools/go/ast/astutil"
)

// CallSite identifies where an assertion was written and the
// source text of its condition.
type CallSite struct {
	// File is the source file of the call.
	File string

	// Line is the line reported by the runtime for the call.
	Line int

	// Expression is the condition as written, with
	// That(a).Eq(b) rendered as "a == b". Empty when the
	// source file is unavailable.
	Expression string

	// Note describes conditions whose operands cannot be
	// recovered, such as negations and logical operators.
	Note string
}

// Notes attached to plain boolean conditions.
const (
	NoteNegation = "negated conditions are not decomposed and " +
		"operand values are unavailable; use CheckFalse or " +
		"RequireFalse"
	NoteLogical = "logical operators are not decomposed and " +
		"operand values are unavailable"
	NoteComparison = "comparison written without That; " +
		"operand values are unavailable"
)

var operatorMethods = map[string]string{
	"Eq": "==",
	"Ne": "!=",
	"Lt": "<",
	"Le": "<=",
	"Gt": ">",
	"Ge": ">=",
}

type sourceFile struct {
	fset *token.FileSet
	file *ast.File
	src  []byte
	err  error
}

// sources caches parsed files by path.
var sources sync.Map

// Locate describes the call to method made skip frames above
// the caller of Locate. The caller's file is parsed once and
// cached; if it cannot be read only file and line are set.
func Locate(skip int, method string) CallSite {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallSite{File: "unknown"}
	}

	site := CallSite{File: file, Line: line}
	sf := loadSource(file)
	if sf.err != nil {
		return site
	}

	call := sf.findCall(line, method)
	if call == nil || len(call.Args) == 0 {
		return site
	}
	site.Expression, site.Note = sf.describe(call.Args[0])
	return site
}

func loadSource(path string) *sourceFile {
	if v, ok := sources.Load(path); ok {
		return v.(*sourceFile)
	}

	sf := &sourceFile{fset: token.NewFileSet()}
	src, err := os.ReadFile(path)
	if err == nil {
		sf.src = src
		sf.file, err = parser.ParseFile(
			sf.fset, path, src, parser.SkipObjectResolution,
		)
	}
	sf.err = err

	v, _ := sources.LoadOrStore(path, sf)
	return v.(*sourceFile)
}

// findCall returns the innermost call of method whose line
// range contains line.
func (sf *sourceFile) findCall(
	line int,
	method string,
) *ast.CallExpr {
	var best *ast.CallExpr
	ast.Inspect(sf.file, func(n ast.Node) bool {
		if n == nil {
			return false
		}
		start := sf.fset.Position(n.Pos()).Line
		end := sf.fset.Position(n.End()).Line
		if line < start || line > end {
			return false
		}

		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != method {
			return true
		}
		if best == nil || call.End()-call.Pos() < best.End()-best.Pos() {
			best = call
		}
		return true
	})
	return best
}

func (sf *sourceFile) describe(arg ast.Expr) (string, string) {
	if text, ok := sf.comparison(arg); ok {
		return text, ""
	}
	return sf.text(arg), opaqueNote(arg)
}

// comparison renders That(a) as "a" and That(a).Eq(b) as
// "a == b".
func (sf *sourceFile) comparison(e ast.Expr) (string, bool) {
	call, ok := astutil.Unparen(e).(*ast.CallExpr)
	if !ok {
		return "", false
	}
	if lhs, ok := thatOperand(call); ok {
		return sf.text(lhs), true
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	op, ok := operatorMethods[sel.Sel.Name]
	if !ok {
		return "", false
	}
	inner, ok := sel.X.(*ast.CallExpr)
	if !ok {
		return "", false
	}
	lhs, ok := thatOperand(inner)
	if !ok {
		return "", false
	}
	return sf.text(lhs) + " " + op + " " + sf.text(call.Args[0]), true
}

func (sf *sourceFile) text(e ast.Expr) string {
	tf := sf.fset.File(e.Pos())
	if tf == nil {
		return ""
	}
	start, end := tf.Offset(e.Pos()), tf.Offset(e.End())
	if start < 0 || end > len(sf.src) || start > end {
		return ""
	}
	return strings.Join(strings.Fields(string(sf.src[start:end])), " ")
}

func thatOperand(call *ast.CallExpr) (ast.Expr, bool) {
	if len(call.Args) != 1 {
		return nil, false
	}
	var name string
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		name = fn.Name
	case *ast.SelectorExpr:
		name = fn.Sel.Name
	}
	if name != "That" {
		return nil, false
	}
	return call.Args[0], true
}

func opaqueNote(e ast.Expr) string {
	switch x := astutil.Unparen(e).(type) {
	case *ast.UnaryExpr:
		if x.Op == token.NOT {
			return NoteNegation
		}
	case *ast.BinaryExpr:
		switch x.Op {
		case token.LAND, token.LOR:
			return NoteLogical
		case token.EQL, token.NEQ, token.LSS,
			token.LEQ, token.GTR, token.GEQ:
			return NoteComparison
		}
	}
	return ""
}
