package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
)

// dump renders an expression as an s-expression for compact assertions.
func dump(e Expr) string {
	switch n := e.(type) {
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", n.Op, dump(n.Left), dump(n.Right))
	case *Logical:
		return fmt.Sprintf("(%s %s %s)", n.Operator.Lexeme, dump(n.Left), dump(n.Right))
	case *Literal:
		switch v := n.Value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			return strconv.Quote(v)
		case bool:
			return strconv.FormatBool(v)
		}
		return "nothing"
	case *Variable:
		return n.Name.Lexeme
	case *Assign:
		word := "to"
		if n.Declare {
			word = "define"
		}
		if n.Value == nil {
			return fmt.Sprintf("(%s %s)", word, n.Name.Lexeme)
		}
		return fmt.Sprintf("(%s %s %s)", word, n.Name.Lexeme, dump(n.Value))
	case *Unary:
		if n.Amount != nil {
			return fmt.Sprintf("(%s %s %s)", n.Operator.Lexeme, dump(n.Right), dump(n.Amount))
		}
		return fmt.Sprintf("(%s %s)", n.Operator.Lexeme, dump(n.Right))
	case *Call:
		parts := []string{"call", dump(n.Callee)}
		for _, a := range n.Arguments {
			parts = append(parts, dump(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *Get:
		return fmt.Sprintf("(get %s %s)", dump(n.Object), n.Name.Lexeme)
	case *Set:
		return fmt.Sprintf("(set %s %s %s)", dump(n.Object), n.Name.Lexeme, dump(n.Value))
	case *Index:
		return fmt.Sprintf("(index %s %s)", dump(n.Object), dump(n.Index))
	case *SetIndex:
		return fmt.Sprintf("(setindex %s %s %s)", dump(n.Object), dump(n.Index), dump(n.Value))
	case *List:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = dump(el)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case *This:
		return "this"
	case *Parent:
		return "parent"
	case *Lambda:
		names := []string{"lambda"}
		for _, p := range n.Params {
			names = append(names, p.Lexeme)
		}
		return "(" + strings.Join(names, " ") + ")"
	}
	return fmt.Sprintf("<%T>", e)
}

func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	expr, err := NewParser(tokens).ParseExpression()
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", src, err)
	}
	return expr
}

func mustParse(t *testing.T, src string) []Stmt {
	t.Helper()
	stmts, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return stmts
}

func TestParserAddition(t *testing.T) {
	expr := parseExpr(t, "1 add 2")
	bin, ok := expr.(*Binary)
	if !ok {
		t.Fatalf("expected *Binary, got %T", expr)
	}
	if bin.Op != OpAdd {
		t.Errorf("Op = %v, want add", bin.Op)
	}
	if bin.Operator.Type != TokenAdd {
		t.Errorf("Operator = %v, want ADD", bin.Operator)
	}
	if l, ok := bin.Left.(*Literal); !ok || l.Value != 1.0 {
		t.Errorf("Left = %s, want 1", dump(bin.Left))
	}
	if r, ok := bin.Right.(*Literal); !ok || r.Value != 2.0 {
		t.Errorf("Right = %s, want 2", dump(bin.Right))
	}
}

func TestParserExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// literals
		{"42", "42"},
		{`"hi"`, `"hi"`},
		{"true", "true"},
		{"nothing", "nothing"},
		{"[1, 2, 3]", "[1 2 3]"},
		{"[]", "[]"},

		// arithmetic and precedence
		{"1 plus 2 minus 3", "(subtract (add 1 2) 3)"},
		{"1 add 2 multiply 3", "(add 1 (multiply 2 3))"},
		{"(1 add 2) multiply by 3", "(multiply (add 1 2) 3)"},
		{"10 divide by 2 modulus 3", "(modulus (divide 10 2) 3)"},
		{"a - b", "(subtract a b)"},
		{"-a multiply b", "(multiply (- a) b)"},

		// equality and comparison
		{"a is b", "(is a b)"},
		{"a is not b", "(is not a b)"},
		{"a is equal to b", "(is a b)"},
		{"a is not equal to b", "(is not a b)"},
		{"a not equal to b", "(is not a b)"},
		{"a equal b", "(is a b)"},
		{"a greater than b", "(greater than a b)"},
		{"a is greater than b", "(greater than a b)"},
		{"a is less than or equal to b", "(less than or equal to a b)"},
		{"a greater than or equal b", "(greater than or equal to a b)"},
		{"a greater than b or c", "(or (greater than a b) c)"},
		{"a add 1 is less than b", "(less than (add a 1) b)"},
		{"a is b and c is not d", "(and (is a b) (is not c d))"},
		{"a or b and c", "(or a (and b c))"},
		{"not a is b", "(is (not a) b)"},
		{"a is not greater than b", "(not (greater than a b))"},
		{"a is not less than or equal to b", "(not (less than or equal to a b))"},
		{"a is not greater than b and c", "(and (not (greater than a b)) c)"},

		// assignment
		{"define x to 1", "(define x 1)"},
		{"define x", "(define x)"},
		{"x to y to 2", "(to x (to y 2))"},
		{"p.name to 3", "(set p name 3)"},
		{"xs[0] to 1", "(setindex xs 0 1)"},
		{"define total to a add b", "(define total (add a b))"},

		// prefix words
		{"increment x", "(increment x)"},
		{"incremented x by 2", "(incremented x 2)"},
		{"decrement this.count by n add 1", "(add (decrement (get this count) n) 1)"},
		{"increment xs[i]", "(increment (index xs i))"},
		{"type of x", "(type x)"},
		{"complement of 5", "(complement 5)"},

		// calls, properties, indexing
		{"f()", "(call f)"},
		{"f(1, a add 2)", "(call f 1 (add a 2))"},
		{"obj.method(1).field", "(get (call (get obj method) 1) field)"},
		{"xs[i add 1][0]", "(index (index xs (add i 1)) 0)"},
		{"parent.init(x)", "(call (get parent init) x)"},
		{"this.x", "(get this x)"},
		{"lambda(a, b) a add b", "(lambda a b)"},
		{"lambda() then 1", "(lambda)"},

		// operator words as callees
		{"add(2, 3)", "(call add 2 3)"},
		{"x add add(1, 2)", "(add x (call add 1 2))"},
		{"modulus(7, 2) multiply 2", "(multiply (call modulus 7 2) 2)"},
		{"math.subtract(1)", "(call (get math subtract) 1)"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := dump(parseExpr(t, tc.input)); got != tc.want {
				t.Errorf("parse %q = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestParserLambdaImplicitReturn(t *testing.T) {
	lambda, ok := parseExpr(t, "lambda(x) x multiply x").(*Lambda)
	if !ok {
		t.Fatal("expected *Lambda")
	}
	if len(lambda.Body) != 1 {
		t.Fatalf("body has %d statements, want 1", len(lambda.Body))
	}
	ret, ok := lambda.Body[0].(*Return)
	if !ok {
		t.Fatalf("body[0] = %T, want *Return", lambda.Body[0])
	}
	if got := dump(ret.Value); got != "(multiply x x)" {
		t.Errorf("return value = %s", got)
	}
}

func TestParserLambdaBlockBody(t *testing.T) {
	stmts := mustParse(t, "define f to lambda(x)\n    print x\n    return x\nprint f(1)")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	assign := stmts[0].(*ExprStmt).Expr.(*Assign)
	lambda, ok := assign.Value.(*Lambda)
	if !ok {
		t.Fatalf("value = %T, want *Lambda", assign.Value)
	}
	if len(lambda.Body) != 2 {
		t.Errorf("lambda body has %d statements, want 2", len(lambda.Body))
	}
}

func TestParserIf(t *testing.T) {
	src := `if x is 1 then
    print "one"
else if x is 2
    print "two"
else
    print "many"
`
	stmts := mustParse(t, src)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	first, ok := stmts[0].(*If)
	if !ok {
		t.Fatalf("expected *If, got %T", stmts[0])
	}
	if got := dump(first.Condition); got != "(is x 1)" {
		t.Errorf("condition = %s", got)
	}
	if len(first.Then.Statements) != 1 {
		t.Errorf("then has %d statements", len(first.Then.Statements))
	}
	second, ok := first.Else.(*If)
	if !ok {
		t.Fatalf("else = %T, want *If", first.Else)
	}
	last, ok := second.Else.(*Block)
	if !ok {
		t.Fatalf("else = %T, want *Block", second.Else)
	}
	if p, ok := last.Statements[0].(*Print); !ok || dump(p.Expr) != `"many"` {
		t.Errorf("last branch = %#v", last.Statements[0])
	}
}

func TestParserSingleLineBodies(t *testing.T) {
	stmts := mustParse(t, "if ok then print 1 else print 2\nwhile x then x to x subtract 1")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	ifStmt := stmts[0].(*If)
	if ifStmt.Else == nil {
		t.Error("else branch missing")
	}
	while := stmts[1].(*While)
	if got := dump(while.Body.Statements[0].(*ExprStmt).Expr); got != "(to x (subtract x 1))" {
		t.Errorf("while body = %s", got)
	}
}

func TestParserForEach(t *testing.T) {
	stmts := mustParse(t, "for each item in [1, 2]\n    print item\n")
	loop, ok := stmts[0].(*ForEach)
	if !ok {
		t.Fatalf("expected *ForEach, got %T", stmts[0])
	}
	if loop.Item.Lexeme != "item" {
		t.Errorf("item = %q", loop.Item.Lexeme)
	}
	if got := dump(loop.Iterable); got != "[1 2]" {
		t.Errorf("iterable = %s", got)
	}
}

func TestParserFunction(t *testing.T) {
	stmts := mustParse(t, "function add(a, b)\n\tthen return a add b\n")
	fn, ok := stmts[0].(*Function)
	if !ok {
		t.Fatalf("expected *Function, got %T", stmts[0])
	}
	if fn.Name.Lexeme != "add" || len(fn.Params) != 2 {
		t.Errorf("function = %s/%d", fn.Name.Lexeme, len(fn.Params))
	}
	ret, ok := fn.Body[0].(*Return)
	if !ok {
		t.Fatalf("body[0] = %T, want *Return", fn.Body[0])
	}
	if got := dump(ret.Value); got != "(add a b)" {
		t.Errorf("return = %s", got)
	}
}

func TestParserReturnWithoutValue(t *testing.T) {
	stmts := mustParse(t, "function f()\n    return\n    print 1\n")
	fn := stmts[0].(*Function)
	if len(fn.Body) != 2 {
		t.Fatalf("body has %d statements, want 2", len(fn.Body))
	}
	if ret := fn.Body[0].(*Return); ret.Value != nil {
		t.Errorf("bare return has value %s", dump(ret.Value))
	}
}

func TestParserClass(t *testing.T) {
	src := `class Dog extends Animal
    function init(name)
        parent.init(name)
    static function create()
        return Dog("rex")
    private function secret()
        return 1
    static private function both()
        return 2
`
	stmts := mustParse(t, src)
	class, ok := stmts[0].(*Class)
	if !ok {
		t.Fatalf("expected *Class, got %T", stmts[0])
	}
	if class.Name.Lexeme != "Dog" {
		t.Errorf("name = %q", class.Name.Lexeme)
	}
	if class.Parent == nil || class.Parent.Name.Lexeme != "Animal" {
		t.Errorf("parent = %v", class.Parent)
	}
	want := []struct {
		name            string
		static, private bool
	}{
		{"init", false, false},
		{"create", true, false},
		{"secret", false, true},
		{"both", true, true},
	}
	if len(class.Methods) != len(want) {
		t.Fatalf("got %d methods, want %d", len(class.Methods), len(want))
	}
	for i, w := range want {
		m := class.Methods[i]
		if m.Name.Lexeme != w.name || m.IsStatic != w.static || m.IsPrivate != w.private {
			t.Errorf("method %d = %s static=%v private=%v, want %+v",
				i, m.Name.Lexeme, m.IsStatic, m.IsPrivate, w)
		}
	}
}

func TestParserImportExport(t *testing.T) {
	stmts := mustParse(t, "import square from \"math\"\nimport cube from lib\nexport square")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	first := stmts[0].(*Import)
	if first.Name.Lexeme != "square" || first.Module() != "math" {
		t.Errorf("import = %s from %s", first.Name.Lexeme, first.Module())
	}
	if second := stmts[1].(*Import); second.Module() != "lib" {
		t.Errorf("module = %q, want lib", second.Module())
	}
	if export := stmts[2].(*Export); export.Name.Lexeme != "square" {
		t.Errorf("export = %q", export.Name.Lexeme)
	}
}

func TestParserStatementsFollowDirectly(t *testing.T) {
	stmts := mustParse(t, "print 1 print 2 break")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	if _, ok := stmts[2].(*Break); !ok {
		t.Errorf("stmts[2] = %T, want *Break", stmts[2])
	}
}

func TestParserFunctionNamedByOperatorWord(t *testing.T) {
	stmts := mustParse(t, "function add(a, b)\n\tthen return a add b\nprint add(2, 3)\nexport add\n")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	fn := stmts[0].(*Function)
	if fn.Name.Type != TokenIdentifier || fn.Name.Lexeme != "add" {
		t.Errorf("name = %v, want identifier add", fn.Name)
	}
	if got := dump(stmts[1].(*Print).Expr); got != "(call add 2 3)" {
		t.Errorf("print = %s", got)
	}
	if export := stmts[2].(*Export); export.Name.Lexeme != "add" {
		t.Errorf("export = %q", export.Name.Lexeme)
	}
}

func TestParserNewLineEndsExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"minus", "define x to 3\nx\n-1", []string{"(define x 3)", "x", "(- 1)"}},
		{"paren", "print x\n(1 add 2)", []string{"x", "(add 1 2)"}},
		{"bracket", "print \"a\"\n[1, 2]", []string{`"a"`, "[1 2]"}},
		{"operator word call", "print x\nadd(1, 2)", []string{"x", "(call add 1 2)"}},
		{"operator word continues", "print x\nadd 1", []string{"(add x 1)"}},
		{"same line", "print x - 1 print f(1)[0]", []string{"(subtract x 1)", "(index (call f 1) 0)"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, stmt := range mustParse(t, tc.input) {
				switch s := stmt.(type) {
				case *Print:
					got = append(got, dump(s.Expr))
				case *ExprStmt:
					got = append(got, dump(s.Expr))
				default:
					t.Fatalf("unexpected statement %T", stmt)
				}
			}
			if strings.Join(got, "; ") != strings.Join(tc.want, "; ") {
				t.Errorf("statements = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParserReturnStopsAtLineEnd(t *testing.T) {
	stmts := mustParse(t, "function f()\n    return\n    -1\n")
	fn := stmts[0].(*Function)
	if len(fn.Body) != 2 {
		t.Fatalf("body has %d statements, want 2", len(fn.Body))
	}
	if ret := fn.Body[0].(*Return); ret.Value != nil {
		t.Errorf("bare return took %s from the next line", dump(ret.Value))
	}
}

func TestParserLines(t *testing.T) {
	stmts := mustParse(t, "print 1\n\nif x\n    print 2\n")
	if got := stmts[0].Line(); got != 1 {
		t.Errorf("print line = %d, want 1", got)
	}
	ifStmt := stmts[1].(*If)
	if got := ifStmt.Line(); got != 3 {
		t.Errorf("if line = %d, want 3", got)
	}
	if got := ifStmt.Then.Statements[0].Line(); got != 4 {
		t.Errorf("nested print line = %d, want 4", got)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input string
		line  int
		want  string // substring of the message
	}{
		{"print", 1, "expected expression"},
		{"1 to 2", 1, "invalid assignment target"},
		{"f(1, 2", 1, "expected ')' after arguments"},
		{"xs[1", 1, "expected ']' after index"},
		{"for item in xs\n    print item", 1, "expected 'each'"},
		{"function (a)\n    return a", 1, "expected function name"},
		{"function f(a b)\n    return a", 1, "expected ')' after parameters"},
		{"class A\n    print 1", 2, "expected method declaration"},
		{"import x \"m\"", 1, "expected 'from'"},
		{"import x from 3", 1, "expected module name"},
		{"a greater b", 1, "expected 'than'"},
		{"type x", 1, "expected 'of'"},
		{"increment 3", 1, "expected variable, property or element"},
		{"print 1\tprint 2", 1, "unexpected indentation"},
		{"define 3 to 4", 1, "expected variable name"},
		{"print 1\nprint (2", 2, "expected ')' after expression"},
		{"print (2\nprint 3", 1, "expected ')' after expression"},
		{"f(1,\n2\nprint 3", 1, "expected ')' after arguments"},
		{"define xs to [1,\n2\nprint 3", 1, "expected ']' after list elements"},
		{"function print(a)\n    return a", 1, "expected function name"},
		{"add 1", 1, "expected expression"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			_, err := Parse(tc.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tc.input)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v does not wrap ErrSyntax", err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if se.Line != tc.line {
				t.Errorf("line = %d, want %d (%v)", se.Line, tc.line, err)
			}
			if !strings.Contains(se.Message, tc.want) {
				t.Errorf("message = %q, want it to contain %q", se.Message, tc.want)
			}
		})
	}
}

func TestParserAppendsMissingEOF(t *testing.T) {
	tokens := []Token{{Type: TokenPrint, Lexeme: "print", Line: 1}, {Type: TokenNumber, Lexeme: "1", Literal: 1.0, Line: 1}}
	stmts, err := NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Errorf("got %d statements, want 1", len(stmts))
	}
}

func TestParseExpressionRejectsTrailingTokens(t *testing.T) {
	tokens, err := Tokenize("1 add 2 3")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewParser(tokens).ParseExpression(); err == nil {
		t.Error("ParseExpression accepted trailing tokens")
	}
}
