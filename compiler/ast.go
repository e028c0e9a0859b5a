package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for Hlang
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Line() int
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// BinaryOp is the resolved operator of a Binary expression. Several source
// spellings map to one operator ("add", "plus"; "is", "is equal to").
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
)

var binaryOpNames = [...]string{
	OpAdd:          "add",
	OpSubtract:     "subtract",
	OpMultiply:     "multiply",
	OpDivide:       "divide",
	OpModulus:      "modulus",
	OpEqual:        "is",
	OpNotEqual:     "is not",
	OpGreater:      "greater than",
	OpGreaterEqual: "greater than or equal to",
	OpLess:         "less than",
	OpLessEqual:    "less than or equal to",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// Binary represents an arithmetic, equality or relational expression.
type Binary struct {
	Left     Expr
	Operator Token // first word of the operator
	Op       BinaryOp
	Right    Expr
}

func (n *Binary) Line() int { return n.Operator.Line }
func (n *Binary) node()     {}
func (n *Binary) expr()     {}

// Logical represents a short-circuiting and/or expression.
type Logical struct {
	Left     Expr
	Operator Token // AND or OR
	Right    Expr
}

func (n *Logical) Line() int { return n.Operator.Line }
func (n *Logical) node()     {}
func (n *Logical) expr()     {}

// Call represents a call of a function, method or class.
type Call struct {
	Callee    Expr
	Paren     Token // closing paren, for error lines
	Arguments []Expr
}

func (n *Call) Line() int { return n.Paren.Line }
func (n *Call) node()     {}
func (n *Call) expr()     {}

// List represents a list literal [a, b, c].
type List struct {
	Bracket  Token
	Elements []Expr
}

func (n *List) Line() int { return n.Bracket.Line }
func (n *List) node()     {}
func (n *List) expr()     {}

// Index represents element access xs[i].
type Index struct {
	Object  Expr
	Bracket Token
	Index   Expr
}

func (n *Index) Line() int { return n.Bracket.Line }
func (n *Index) node()     {}
func (n *Index) expr()     {}

// Literal represents a number, string, boolean or nothing.
type Literal struct {
	Token Token
	Value any // float64, string, bool or nil
}

func (n *Literal) Line() int { return n.Token.Line }
func (n *Literal) node()     {}
func (n *Literal) expr()     {}

// Variable represents a variable reference.
type Variable struct {
	Name Token
}

func (n *Variable) Line() int { return n.Name.Line }
func (n *Variable) node()     {}
func (n *Variable) expr()     {}

// Assign represents "define x to v" (Declare) or "x to v".
type Assign struct {
	Name    Token
	Value   Expr
	Declare bool
}

func (n *Assign) Line() int { return n.Name.Line }
func (n *Assign) node()     {}
func (n *Assign) expr()     {}

// Unary represents a prefix operator: not, -, increment, decrement, type of,
// complement of.
type Unary struct {
	Operator Token
	Right    Expr
	Amount   Expr // "increment x by n"; nil means 1
}

func (n *Unary) Line() int { return n.Operator.Line }
func (n *Unary) node()     {}
func (n *Unary) expr()     {}

// Get represents property access obj.name.
type Get struct {
	Object Expr
	Name   Token
}

func (n *Get) Line() int { return n.Name.Line }
func (n *Get) node()     {}
func (n *Get) expr()     {}

// Set represents property assignment obj.name to v.
type Set struct {
	Object Expr
	Name   Token
	Value  Expr
}

func (n *Set) Line() int { return n.Name.Line }
func (n *Set) node()     {}
func (n *Set) expr()     {}

// SetIndex represents element assignment xs[i] to v.
type SetIndex struct {
	Object  Expr
	Bracket Token
	Index   Expr
	Value   Expr
}

func (n *SetIndex) Line() int { return n.Bracket.Line }
func (n *SetIndex) node()     {}
func (n *SetIndex) expr()     {}

// This represents the 'this' pseudo-variable.
type This struct {
	Keyword Token
}

func (n *This) Line() int { return n.Keyword.Line }
func (n *This) node()     {}
func (n *This) expr()     {}

// Parent represents the 'parent' pseudo-variable.
type Parent struct {
	Keyword Token
}

func (n *Parent) Line() int { return n.Keyword.Line }
func (n *Parent) node()     {}
func (n *Parent) expr()     {}

// Lambda represents an anonymous function.
type Lambda struct {
	Keyword Token
	Params  []Token
	Body    []Stmt
}

func (n *Lambda) Line() int { return n.Keyword.Line }
func (n *Lambda) node()     {}
func (n *Lambda) expr()     {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Print writes the value of an expression.
type Print struct {
	Keyword Token
	Expr    Expr
}

func (n *Print) Line() int { return n.Keyword.Line }
func (n *Print) node()     {}
func (n *Print) stmt()     {}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Expr Expr
}

func (n *ExprStmt) Line() int { return n.Expr.Line() }
func (n *ExprStmt) node()     {}
func (n *ExprStmt) stmt()     {}

// Block is a sequence of statements with its own scope.
type Block struct {
	Start      int
	Statements []Stmt
}

func (n *Block) Line() int { return n.Start }
func (n *Block) node()     {}
func (n *Block) stmt()     {}

// If represents if/then/else.
type If struct {
	Keyword   Token
	Condition Expr
	Then      *Block
	Else      Stmt // *Block, *If or nil
}

func (n *If) Line() int { return n.Keyword.Line }
func (n *If) node()     {}
func (n *If) stmt()     {}

// While represents a while loop.
type While struct {
	Keyword   Token
	Condition Expr
	Body      *Block
}

func (n *While) Line() int { return n.Keyword.Line }
func (n *While) node()     {}
func (n *While) stmt()     {}

// ForEach represents "for each item in list".
type ForEach struct {
	Keyword  Token
	Item     Token
	Iterable Expr
	Body     *Block
}

func (n *ForEach) Line() int { return n.Keyword.Line }
func (n *ForEach) node()     {}
func (n *ForEach) stmt()     {}

// Function represents a function or method declaration.
type Function struct {
	Name      Token
	Params    []Token
	Body      []Stmt
	IsStatic  bool
	IsPrivate bool
}

func (n *Function) Line() int { return n.Name.Line }
func (n *Function) node()     {}
func (n *Function) stmt()     {}

// Class represents a class declaration.
type Class struct {
	Name    Token
	Parent  *Variable // nil without "extends"
	Methods []*Function
}

func (n *Class) Line() int { return n.Name.Line }
func (n *Class) node()     {}
func (n *Class) stmt()     {}

// Return represents a return statement.
type Return struct {
	Keyword Token
	Value   Expr // nil for a bare return
}

func (n *Return) Line() int { return n.Keyword.Line }
func (n *Return) node()     {}
func (n *Return) stmt()     {}

// Break represents a break statement.
type Break struct {
	Keyword Token
}

func (n *Break) Line() int { return n.Keyword.Line }
func (n *Break) node()     {}
func (n *Break) stmt()     {}

// Import represents "import name from source".
type Import struct {
	Keyword Token
	Name    Token
	Source  Token // STRING or IDENTIFIER
}

// Module returns the module name the import refers to.
func (n *Import) Module() string {
	if s, ok := n.Source.Literal.(string); ok {
		return s
	}
	return n.Source.Lexeme
}

func (n *Import) Line() int { return n.Keyword.Line }
func (n *Import) node()     {}
func (n *Import) stmt()     {}

// Export represents "export name".
type Export struct {
	Keyword Token
	Name    Token
}

func (n *Export) Line() int { return n.Keyword.Line }
func (n *Export) node()     {}
func (n *Export) stmt()     {}
