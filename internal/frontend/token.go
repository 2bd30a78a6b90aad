// Package frontend turns Venom source text into an internal/ast.Program:
// a lexer producing a Token stream and a recursive-descent/Pratt parser
// consuming it, condensed into one package since Venom's surface grammar
// is small enough not to need separate lexer/parser packages.
package frontend

import "fmt"

// TokenType names one lexical category.
type TokenType int

const (
	EOF TokenType = iota
	NEWLINE
	IDENT
	INT
	FLOAT
	STRING

	// keywords
	DEF
	CLASS
	ATTR
	EXTENDS
	END
	WHILE
	RETURN
	NEW
	NIL
	TRUE
	FALSE
	AND
	OR
	NOT

	// punctuation
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	COMMA
	COLON
	DOT
	ARROW
	ASSIGN

	// operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ
	NEQ
	LT
	LE
	GT
	GE
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", NEWLINE: "NEWLINE", IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	DEF: "def", CLASS: "class", ATTR: "attr", EXTENDS: "extends", END: "end", WHILE: "while",
	RETURN: "return", NEW: "new", NIL: "nil", TRUE: "true", FALSE: "false", AND: "and", OR: "or", NOT: "not",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", COMMA: ",", COLON: ":", DOT: ".", ARROW: "->", ASSIGN: "=",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NEQ: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"def": DEF, "class": CLASS, "attr": ATTR, "extends": EXTENDS, "end": END,
	"while": WHILE, "return": RETURN, "new": NEW, "nil": NIL,
	"true": TRUE, "false": FALSE, "and": AND, "or": OR, "not": NOT,
}

// Token is one scanned lexeme: its category, the exact source text, and
// its position for diagnostics.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}
