package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Token types for the Hlang tokenizer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Punctuation
	TokenLeftParen TokenType = iota
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenDot
	TokenMinus

	// Literals
	TokenString
	TokenNumber
	TokenIdentifier

	// Keywords
	TokenAnd
	TokenElse
	TokenFalse
	TokenTrue
	TokenFunction
	TokenClass
	TokenFor
	TokenEach
	TokenIf
	TokenNothing
	TokenWhile
	TokenPrint
	TokenReturn
	TokenEqual
	TokenIs
	TokenNot
	TokenBy
	TokenDivide
	TokenMultiply
	TokenAdd
	TokenSubtract
	TokenModulus
	TokenGreater
	TokenImport
	TokenFrom
	TokenExport
	TokenLess
	TokenThan
	TokenThen
	TokenThis
	TokenExtends
	TokenDefine
	TokenParent
	TokenStatic
	TokenPrivate
	TokenTo
	TokenIn
	TokenBreak
	TokenLambda
	TokenIncrement
	TokenDecrement
	TokenOr
	TokenTypeKeyword
	TokenComplement
	TokenOf

	// Structure
	TokenIndent
	TokenDedent
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenMinus:        "-",
	TokenString:       "STRING",
	TokenNumber:       "NUMBER",
	TokenIdentifier:   "IDENTIFIER",
	TokenAnd:          "AND",
	TokenElse:         "ELSE",
	TokenFalse:        "FALSE",
	TokenTrue:         "TRUE",
	TokenFunction:     "FUNCTION",
	TokenClass:        "CLASS",
	TokenFor:          "FOR",
	TokenEach:         "EACH",
	TokenIf:           "IF",
	TokenNothing:      "NOTHING",
	TokenWhile:        "WHILE",
	TokenPrint:        "PRINT",
	TokenReturn:       "RETURN",
	TokenEqual:        "EQUAL",
	TokenIs:           "IS",
	TokenNot:          "NOT",
	TokenBy:           "BY",
	TokenDivide:       "DIVIDE",
	TokenMultiply:     "MULTIPLY",
	TokenAdd:          "ADD",
	TokenSubtract:     "SUBTRACT",
	TokenModulus:      "MODULUS",
	TokenGreater:      "GREATER",
	TokenImport:       "IMPORT",
	TokenFrom:         "FROM",
	TokenExport:       "EXPORT",
	TokenLess:         "LESS",
	TokenThan:         "THAN",
	TokenThen:         "THEN",
	TokenThis:         "THIS",
	TokenExtends:      "EXTENDS",
	TokenDefine:       "DEFINE",
	TokenParent:       "PARENT",
	TokenStatic:       "STATIC",
	TokenPrivate:      "PRIVATE",
	TokenTo:           "TO",
	TokenIn:           "IN",
	TokenBreak:        "BREAK",
	TokenLambda:       "LAMBDA",
	TokenIncrement:    "INCREMENT",
	TokenDecrement:    "DECREMENT",
	TokenOr:           "OR",
	TokenTypeKeyword:  "TYPE",
	TokenComplement:   "COMPLEMENT",
	TokenOf:           "OF",
	TokenIndent:       "INDENT",
	TokenDedent:       "DEDENT",
	TokenEOF:          "EOF",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Lexeme  string // exact source text
	Literal any    // float64 for numbers, string for strings, nil otherwise
	Line    int    // 1-based
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF, TokenIndent, TokenDedent:
		return t.Type.String()
	}
	if len(t.Lexeme) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Lexeme[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
}

// keywords maps reserved words to their token types. Several words are
// synonyms (plus/add, minus/subtract, incremented/increment, ...).
var keywords = map[string]TokenType{
	"and":         TokenAnd,
	"else":        TokenElse,
	"false":       TokenFalse,
	"true":        TokenTrue,
	"function":    TokenFunction,
	"class":       TokenClass,
	"for":         TokenFor,
	"each":        TokenEach,
	"if":          TokenIf,
	"nothing":     TokenNothing,
	"while":       TokenWhile,
	"print":       TokenPrint,
	"return":      TokenReturn,
	"equal":       TokenEqual,
	"is":          TokenIs,
	"not":         TokenNot,
	"by":          TokenBy,
	"divide":      TokenDivide,
	"multiply":    TokenMultiply,
	"add":         TokenAdd,
	"subtract":    TokenSubtract,
	"plus":        TokenAdd,
	"minus":       TokenSubtract,
	"modulus":     TokenModulus,
	"greater":     TokenGreater,
	"import":      TokenImport,
	"from":        TokenFrom,
	"export":      TokenExport,
	"less":        TokenLess,
	"than":        TokenThan,
	"then":        TokenThen,
	"this":        TokenThis,
	"extends":     TokenExtends,
	"define":      TokenDefine,
	"parent":      TokenParent,
	"static":      TokenStatic,
	"private":     TokenPrivate,
	"to":          TokenTo,
	"in":          TokenIn,
	"break":       TokenBreak,
	"lambda":      TokenLambda,
	"increment":   TokenIncrement,
	"incremented": TokenIncrement,
	"decrement":   TokenDecrement,
	"decremented": TokenDecrement,
	"or":          TokenOr,
	"type":        TokenTypeKeyword,
	"complement":  TokenComplement,
	"of":          TokenOf,
}

// LookupKeyword returns the token type for a reserved word.
func LookupKeyword(word string) (TokenType, bool) {
	t, ok := keywords[word]
	return t, ok
}

// Keywords returns every reserved word in sorted order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
