package parser

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes sudice's surface syntax: integer literals, the NdM dice
// prefix, infix arithmetic/comparison/boolean operators, the postfix
// modifier suite, and select brackets. Dice is matched before Integer so
// "3d6" lexes as one token instead of an integer immediately followed by a
// bare identifier "d6".
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Dice", `[0-9]+d[0-9]+`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Operator", `(==|!=|\\h|\\l)`, nil},
		{"Punctuation", `[-+*/<>^_?:\[\]()]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
