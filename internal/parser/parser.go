// Package parser is sudice's frontend: it turns source text into an
// ir.Program using a participle parser-combinator grammar, built once and
// reused across every Parse call. Nothing downstream depends on this
// package's internals — checker and interp only ever see the ir.Program
// it emits.
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"sudice/internal/ir"
)

var participleParser = buildParser()

func buildParser() *participle.Parser[Program] {
	p, err := participle.Build[Program](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("parser: failed to build grammar: %w", err))
	}
	return p
}

// Parse compiles sudice source text directly into an ir.Program.
func Parse(source string) (*ir.Program, error) {
	ast, err := participleParser.ParseString("", source)
	if err != nil {
		return nil, reportParseError(source, err)
	}
	return Compile(ast)
}

// reportParseError turns a participle error into one carrying a caret-style
// location the way kanso's grammar.ParseFile does.
func reportParseError(src string, err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return fmt.Errorf("parser: %w", err)
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	var caretLine string
	if pos.Line >= 1 && pos.Line <= len(lines) {
		line := lines[pos.Line-1]
		caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"
		caretLine = "\n" + line + "\n" + color.HiRedString(caret)
	}
	return fmt.Errorf("parser: syntax error at line %d, column %d: %s%s", pos.Line, pos.Column, pe.Message(), caretLine)
}
