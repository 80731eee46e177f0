// Package ir defines the intermediate representation produced by a sudice
// frontend: a flat, immutable sequence of opcodes that the checker and the
// interpreter both walk as a simple linear stack program.
package ir

import "fmt"

// Op identifies a single opcode in the instruction alphabet.
type Op uint8

const (
	Num Op = iota
	Add
	Sub
	Mul
	Div
	Roll
	Reroll
	RerollLowest
	RerollHighest
	DropLowest
	DropHighest
	Ceil
	Floor
	BestOf
	WorstOf
	Select
	Jump
	Lt
	Gt
	Eq
	Ne
	And
	Or
)

// Abs and Neg are deliberately not part of this enumeration: no frontend
// syntax produces them, and carrying unused opcode names forward would let
// a careless frontend emit an opcode no component can execute.

func (op Op) String() string {
	switch op {
	case Num:
		return "Num"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Roll:
		return "Roll"
	case Reroll:
		return "Reroll"
	case RerollLowest:
		return "RerollLowest"
	case RerollHighest:
		return "RerollHighest"
	case DropLowest:
		return "DropLowest"
	case DropHighest:
		return "DropHighest"
	case Ceil:
		return "Ceil"
	case Floor:
		return "Floor"
	case BestOf:
		return "BestOf"
	case WorstOf:
		return "WorstOf"
	case Select:
		return "Select"
	case Jump:
		return "Jump"
	case Lt:
		return "Lt"
	case Gt:
		return "Gt"
	case Eq:
		return "Eq"
	case Ne:
		return "Ne"
	case And:
		return "And"
	case Or:
		return "Or"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Inst is one IR instruction. Which fields are meaningful depends on Op:
//
//	Num                  -> Arg is the literal value
//	BestOf, WorstOf      -> Arg is the instruction count the loop body spans
//	Jump                 -> Arg is the forward offset
//	Select               -> Offsets holds the per-arm jump distances, with
//	                        the last entry being the distance past the whole
//	                        select
//
// All other opcodes carry no operand; their operands live on the runtime or
// abstract stack instead.
type Inst struct {
	Op      Op
	Arg     int64
	Offsets []int
}

// NumInst builds a Num instruction.
func NumInst(v int64) Inst { return Inst{Op: Num, Arg: v} }

// SimpleInst builds a zero-operand instruction.
func SimpleInst(op Op) Inst { return Inst{Op: op} }

// CountInst builds an instruction whose only operand is an integer count
// (BestOf, WorstOf, Jump).
func CountInst(op Op, n int64) Inst { return Inst{Op: op, Arg: n} }

// SelectInst builds a Select instruction from its arm offsets.
func SelectInst(offsets []int) Inst { return Inst{Op: Select, Offsets: offsets} }

// Program is a complete, immutable IR unit. The frontend builds one and
// hands it, by read-only reference, to both the checker and the
// interpreter; neither ever mutates Code.
type Program struct {
	Code []Inst
}

// New wraps a finished instruction slice as a Program.
func New(code []Inst) *Program {
	return &Program{Code: code}
}

// Len reports the instruction count.
func (p *Program) Len() int { return len(p.Code) }
