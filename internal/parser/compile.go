package parser

import (
	"fmt"
	"strconv"
	"strings"

	"sudice/internal/ir"
	"sudice/internal/sudiceerr"
)

// compiler accumulates instructions as the AST is walked. It never
// backtracks: every grammar node is visited exactly once, left to right,
// mirroring the grammar's own expr/jump_seq recursion.
type compiler struct {
	code []ir.Inst
}

// Compile lowers a parsed Program into an ir.Program. Every opcode this
// package emits leaves the stack exactly as its operator expects, by
// construction rather than by a separate well-formedness pass.
func Compile(prog *Program) (*ir.Program, error) {
	c := &compiler{}
	if err := c.expr(prog.Expr); err != nil {
		return nil, err
	}
	return ir.New(c.code), nil
}

func (c *compiler) emit(inst ir.Inst) { c.code = append(c.code, inst) }

func (c *compiler) expr(e *Expr) error {
	if err := c.andExpr(e.Left); err != nil {
		return err
	}
	for _, op := range e.Ops {
		if err := c.andExpr(op.Right); err != nil {
			return err
		}
		c.emit(ir.SimpleInst(ir.Or))
	}
	return nil
}

func (c *compiler) andExpr(e *AndExpr) error {
	if err := c.compareExpr(e.Left); err != nil {
		return err
	}
	for _, op := range e.Ops {
		if err := c.compareExpr(op.Right); err != nil {
			return err
		}
		c.emit(ir.SimpleInst(ir.And))
	}
	return nil
}

func (c *compiler) compareExpr(e *CompareExpr) error {
	if err := c.additiveExpr(e.Left); err != nil {
		return err
	}
	if e.Rest == nil {
		return nil
	}
	if err := c.additiveExpr(e.Rest.Right); err != nil {
		return err
	}
	switch e.Rest.Operator {
	case "<":
		c.emit(ir.SimpleInst(ir.Lt))
	case ">":
		c.emit(ir.SimpleInst(ir.Gt))
	case "==":
		c.emit(ir.SimpleInst(ir.Eq))
	case "!=":
		c.emit(ir.SimpleInst(ir.Ne))
	default:
		return fmt.Errorf("parser: unknown comparison operator %q", e.Rest.Operator)
	}
	return nil
}

func (c *compiler) additiveExpr(e *AdditiveExpr) error {
	if err := c.multiplicativeExpr(e.Left); err != nil {
		return err
	}
	for _, op := range e.Ops {
		if err := c.multiplicativeExpr(op.Right); err != nil {
			return err
		}
		switch op.Operator {
		case "+":
			c.emit(ir.SimpleInst(ir.Add))
		case "-":
			c.emit(ir.SimpleInst(ir.Sub))
		default:
			return fmt.Errorf("parser: unknown additive operator %q", op.Operator)
		}
	}
	return nil
}

func (c *compiler) multiplicativeExpr(e *MultiplicativeExpr) error {
	if err := c.postfixExpr(e.Left); err != nil {
		return err
	}
	for _, op := range e.Ops {
		if err := c.postfixExpr(op.Right); err != nil {
			return err
		}
		switch op.Operator {
		case "*":
			c.emit(ir.SimpleInst(ir.Mul))
		case "/":
			c.emit(ir.SimpleInst(ir.Div))
		default:
			return fmt.Errorf("parser: unknown multiplicative operator %q", op.Operator)
		}
	}
	return nil
}

// postfixExpr compiles a primary and then its chained modifier suite.
// bodyStart is recorded before the primary so that a BestOf/WorstOf
// suffix's offset always spans everything compiled for this chain so
// far — including any earlier modifier in the same chain — matching how
// "1d20 ^ 15 b 2" repeats the capped roll, not just the bare roll.
func (c *compiler) postfixExpr(e *PostfixExpr) error {
	bodyStart := len(c.code)
	if err := c.primary(e.Primary); err != nil {
		return err
	}
	for _, suf := range e.Suffixes {
		switch {
		case suf.Reroll != nil:
			c.emit(ir.NumInst(*suf.Reroll))
			c.emit(ir.SimpleInst(ir.Reroll))
		case suf.RerollLowest != nil:
			c.emit(ir.NumInst(*suf.RerollLowest))
			c.emit(ir.SimpleInst(ir.RerollLowest))
		case suf.RerollHighest != nil:
			c.emit(ir.NumInst(*suf.RerollHighest))
			c.emit(ir.SimpleInst(ir.RerollHighest))
		case suf.DropLowest != nil:
			c.emit(ir.NumInst(*suf.DropLowest))
			c.emit(ir.SimpleInst(ir.DropLowest))
		case suf.DropHighest != nil:
			c.emit(ir.NumInst(*suf.DropHighest))
			c.emit(ir.SimpleInst(ir.DropHighest))
		case suf.Ceil != nil:
			c.emit(ir.NumInst(*suf.Ceil))
			c.emit(ir.SimpleInst(ir.Ceil))
		case suf.Floor != nil:
			c.emit(ir.NumInst(*suf.Floor))
			c.emit(ir.SimpleInst(ir.Floor))
		case suf.BestOf != nil:
			k := len(c.code) - bodyStart
			c.emit(ir.NumInst(*suf.BestOf))
			c.emit(ir.CountInst(ir.BestOf, int64(k)))
		case suf.WorstOf != nil:
			k := len(c.code) - bodyStart
			c.emit(ir.NumInst(*suf.WorstOf))
			c.emit(ir.CountInst(ir.WorstOf, int64(k)))
		default:
			return fmt.Errorf("parser: postfix operator with no operand")
		}
	}
	return nil
}

func (c *compiler) primary(p *Primary) error {
	switch {
	case p.Dice != nil:
		return c.dice(*p.Dice)
	case p.Select != nil:
		return c.selectExpr(p.Select)
	case p.Number != nil:
		c.emit(ir.NumInst(*p.Number))
		return nil
	case p.Paren != nil:
		return c.expr(p.Paren)
	default:
		return fmt.Errorf("parser: empty primary expression")
	}
}

// dice compiles an "NdM" literal. Count is pushed first and face second so
// that, at Roll time, TOS holds the face bound and the popped operand
// holds the die count.
func (c *compiler) dice(literal string) error {
	parts := strings.SplitN(literal, "d", 2)
	if len(parts) != 2 {
		return fmt.Errorf("parser: malformed dice literal %q", literal)
	}
	count, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("parser: malformed die count in %q: %w", literal, err)
	}
	face, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parser: malformed face count in %q: %w", literal, err)
	}
	c.emit(ir.NumInst(count))
	c.emit(ir.NumInst(face))
	c.emit(ir.SimpleInst(ir.Roll))
	return nil
}

// selectExpr compiles "[ pred ? arm1 arm2 … ]" into a Select opcode
// followed by each arm's body and a trailing Jump to the instruction past
// the whole construct. Arm 1 (the t==1 fallthrough) needs no jump target
// of its own; every later arm is backpatched once its start position and
// the final post-select position are known. The last arm needs no
// trailing Jump at all: it already ends exactly where control should land.
func (c *compiler) selectExpr(sel *Select) error {
	if len(sel.Arms) == 0 {
		return sudiceerr.NewParseError("select must have at least one arm", sudiceerr.Span{})
	}
	if err := c.expr(sel.Pred); err != nil {
		return err
	}

	selectPos := len(c.code)
	c.emit(ir.Inst{Op: ir.Select})

	offsets := make([]int, len(sel.Arms))
	jumpPositions := make([]int, 0, len(sel.Arms)-1)

	if err := c.expr(sel.Arms[0]); err != nil {
		return err
	}
	for i := 1; i < len(sel.Arms); i++ {
		jumpPositions = append(jumpPositions, len(c.code))
		c.emit(ir.Inst{Op: ir.Jump})

		offsets[i-1] = len(c.code) - selectPos - 1
		if err := c.expr(sel.Arms[i]); err != nil {
			return err
		}
	}

	postSelect := len(c.code)
	offsets[len(offsets)-1] = postSelect - selectPos - 1
	for _, jp := range jumpPositions {
		c.code[jp].Arg = int64(postSelect - jp - 1)
	}
	c.code[selectPos] = ir.SelectInst(offsets)
	return nil
}
