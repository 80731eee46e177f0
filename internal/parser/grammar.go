package parser

// Grammar expresses sudice's surface syntax as a participle struct
// grammar, the way kanso-lang's grammar package turns its surface
// language into a parse tree: each precedence level is its own struct, with
// a left operand and a slice of trailing operators so participle builds a
// single non-left-recursive rule per level.

type Program struct {
	Expr *Expr `@@`
}

type Expr struct {
	Left *AndExpr `@@`
	Ops  []*OrOp  `{ @@ }`
}

type OrOp struct {
	Right *AndExpr `"or" @@`
}

type AndExpr struct {
	Left *CompareExpr `@@`
	Ops  []*AndOp     `{ @@ }`
}

type AndOp struct {
	Right *CompareExpr `"and" @@`
}

// CompareExpr is non-associative: sudice has no chained comparisons.
type CompareExpr struct {
	Left *AdditiveExpr `@@`
	Rest *CompareOp    `[ @@ ]`
}

type CompareOp struct {
	Operator string        `@("<" | ">" | "==" | "!=")`
	Right    *AdditiveExpr `@@`
}

type AdditiveExpr struct {
	Left *MultiplicativeExpr `@@`
	Ops  []*AddOp            `{ @@ }`
}

type AddOp struct {
	Operator string              `@("+" | "-")`
	Right    *MultiplicativeExpr `@@`
}

type MultiplicativeExpr struct {
	Left *PostfixExpr `@@`
	Ops  []*MulOp     `{ @@ }`
}

type MulOp struct {
	Operator string       `@("*" | "/")`
	Right    *PostfixExpr `@@`
}

// PostfixExpr chains the modifier suite (rr/rl/rh/\l/\h/^/_/b/w) left to
// right onto a primary: "1d20 b 2 ^ 15" applies BestOf before Ceil.
type PostfixExpr struct {
	Primary  *Primary     `@@`
	Suffixes []*PostfixOp `{ @@ }`
}

type PostfixOp struct {
	Reroll        *int64 `  "rr" @Integer`
	RerollLowest  *int64 `| "rl" @Integer`
	RerollHighest *int64 `| "rh" @Integer`
	DropLowest    *int64 `| "\l" @Integer`
	DropHighest   *int64 `| "\h" @Integer`
	Ceil          *int64 `| "^" @Integer`
	Floor         *int64 `| "_" @Integer`
	BestOf        *int64 `| "b" @Integer`
	WorstOf       *int64 `| "w" @Integer`
}

type Primary struct {
	Dice   *string `  @Dice`
	Select *Select `| @@`
	Number *int64  `| @Integer`
	Paren  *Expr   `| "(" @@ ")"`
}

// Select is the bracketed multi-way case: "[ pred ? arm1 arm2 … ]". Arm 1
// is taken when the predicate collapses to true (1), arm 2 when
// it collapses to false (2), arm n when it collapses to n; a predicate value
// past the last arm falls through to the default behavior of returning the
// predicate itself, with no separate default expression to parse.
type Select struct {
	Pred *Expr   `"[" @@ "?"`
	Arms []*Expr `@@ { @@ } "]"`
}
