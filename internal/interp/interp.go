// Package interp implements the sudice interpreter: a single-pass stack
// machine that turns an ir.Program and an RNG into one integer sample.
//
// The execution model is a value stack plus a TOS register held outside the
// slice to avoid an access per opcode, and a secondary accumulator stack
// that lets BestOf/WorstOf repeat a prefix of already-executed instructions
// by rewinding the instruction pointer instead of recursing.
package interp

import (
	"sort"

	"sudice/internal/ir"
	"sudice/internal/rng"
)

// accumFrame is a parked loop frame for BestOf/WorstOf, keyed by the
// instruction pointer of the opcode that owns it so nested loops compose.
type accumFrame struct {
	ptr       int
	remaining int64
	value     int64
}

// Interpret runs prog to completion against src and returns the single
// integer result left on the stack. It panics with a *ShapeViolation if
// prog asks a vector-only opcode to operate on a Scalar — a condition the
// checker is responsible for ruling out before interpretation ever begins.
func Interpret(prog *ir.Program, src rng.Source) int64 {
	code := prog.Code
	stack := make([]Value, 0, len(code))
	accum := make([]accumFrame, 0)
	var tos Value = Scalar(0)
	dcp := 0

	pop := func() Value {
		n := len(stack) - 1
		v := stack[n]
		stack = stack[:n]
		return v
	}
	push := func(v Value) {
		stack = append(stack, v)
	}

	binOp := func(f func(a, b int64) int64) {
		x := pop()
		tos = Scalar(f(tos.Collapse(), x.Collapse()))
	}
	cmpOp := func(f func(a, b int64) bool) {
		x := pop()
		tos = boolValue(f(tos.Collapse(), x.Collapse()))
	}

	for dcp < len(code) {
		inst := code[dcp]
		switch inst.Op {
		case ir.Reroll, ir.RerollLowest, ir.RerollHighest, ir.DropLowest, ir.DropHighest, ir.Ceil, ir.Floor:
			// A modifier's operand is the Num compiled after its target, so it
			// arrives in tos with the target just beneath it; swap them so the
			// cases below find the target in tos and the operand on the stack.
			top := len(stack) - 1
			stack[top], tos = tos, stack[top]
		}
		switch inst.Op {
		case ir.Num:
			push(tos)
			tos = Scalar(inst.Arg)

		case ir.Add:
			binOp(func(a, b int64) int64 { return a + b })
		case ir.Sub:
			// tos holds the right operand and x the left (Num always moves
			// the running value into tos and pushes the prior one), so the
			// left-minus-right result is b - a, not a - b.
			binOp(func(a, b int64) int64 { return b - a })
		case ir.Mul:
			binOp(func(a, b int64) int64 { return a * b })
		case ir.Div:
			binOp(func(a, b int64) int64 { return b / a })

		case ir.Roll:
			n := pop().Collapse()
			face := tos.Collapse()
			tos = rollVector(n, face, src)

		case ir.Reroll:
			target := pop().Collapse()
			tos = reroll(mustVector(tos, "Reroll"), target, src)
		case ir.RerollLowest:
			n := pop().Collapse()
			tos = rerollEnd(mustVector(tos, "RerollLowest"), n, src, true)
		case ir.RerollHighest:
			n := pop().Collapse()
			tos = rerollEnd(mustVector(tos, "RerollHighest"), n, src, false)

		case ir.DropLowest:
			n := pop().Collapse()
			tos = dropLowest(mustVector(tos, "DropLowest"), n)
		case ir.DropHighest:
			n := pop().Collapse()
			tos = dropHighest(mustVector(tos, "DropHighest"), n)

		case ir.Ceil:
			n := pop().Collapse()
			tos = clamp(tos, n, func(v, bound int64) bool { return v > bound })
		case ir.Floor:
			n := pop().Collapse()
			tos = clamp(tos, n, func(v, bound int64) bool { return v < bound })

		case ir.BestOf:
			dcp = runLoop(&accum, &stack, &tos, dcp, inst.Arg, max64)
		case ir.WorstOf:
			dcp = runLoop(&accum, &stack, &tos, dcp, inst.Arg, min64)

		case ir.Select:
			t := tos.Collapse()
			k := int64(len(inst.Offsets) - 1)
			idx := t - 2
			switch {
			case idx >= 0 && idx < k:
				dcp += inst.Offsets[int(idx)]
				tos = pop()
			case t == 1:
				tos = pop()
			default:
				dcp += inst.Offsets[len(inst.Offsets)-1]
				tos = Scalar(t)
			}

		case ir.Jump:
			dcp += int(inst.Arg)

		case ir.Lt:
			// Same left/right inversion as Sub/Div: tos is the right operand.
			cmpOp(func(a, b int64) bool { return b < a })
		case ir.Gt:
			cmpOp(func(a, b int64) bool { return b > a })
		case ir.Eq:
			cmpOp(func(a, b int64) bool { return a == b })
		case ir.Ne:
			cmpOp(func(a, b int64) bool { return a != b })
		case ir.And:
			x := pop()
			tos = boolValue(isTruthy(tos) && isTruthy(x))
		case ir.Or:
			x := pop()
			tos = boolValue(isTruthy(tos) || isTruthy(x))

		default:
			panic(&ShapeViolation{Op: inst.Op.String(), Msg: "unrecognized opcode"})
		}
		dcp++
	}
	return tos.Collapse()
}

func boolValue(b bool) Scalar {
	if b {
		return Scalar(1)
	}
	return Scalar(2)
}

func isTruthy(v Value) bool { return v.Collapse() == 1 }

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// runLoop implements the BestOf/WorstOf trampoline. The count
// operand always sits in tos (the most recently compiled Num) and the
// freshly-rolled sample sits just below it on the stack, on every arrival
// here alike: the compiled layout is body, Num(count), BestOf/WorstOf, so
// re-running the body also re-runs Num(count) on every loop back-edge.
//
// On first arrival it parks an accumulator frame keyed by this opcode's own
// position and rewinds dcp to re-execute the body; on later arrivals it
// folds the new sample into the frame with combine (max or min) and either
// rewinds again or retires with the accumulated result.
func runLoop(accum *[]accumFrame, stack *[]Value, tos *Value, dcp int, k int64, combine func(a, b int64) int64) int {
	pop := func() Value {
		s := *stack
		n := len(s) - 1
		v := s[n]
		*stack = s[:n]
		return v
	}

	sample := pop().Collapse()
	count := (*tos).Collapse()

	if n := len(*accum); n > 0 && (*accum)[n-1].ptr == dcp {
		frame := &(*accum)[n-1]
		frame.value = combine(frame.value, sample)
		frame.remaining--
		if frame.remaining <= 0 {
			v := frame.value
			*accum = (*accum)[:n-1]
			*tos = Scalar(v)
			return dcp
		}
		*tos = pop()
		return dcp - int(k) - 2
	}

	if count <= 1 {
		*tos = Scalar(sample)
		return dcp
	}
	*accum = append(*accum, accumFrame{ptr: dcp, remaining: count - 1, value: sample})
	*tos = pop()
	return dcp - int(k) - 2
}

func rollVector(n, face int64, src rng.Source) Value {
	if n <= 0 {
		panic(&ShapeViolation{Op: "Roll", Msg: "die count must be positive"})
	}
	dice := make([]int64, n)
	for i := range dice {
		dice[i] = src.Roll(face)
	}
	sort.Slice(dice, func(i, j int) bool { return dice[i] < dice[j] })
	return Vector{Face: face, Dice: dice}
}

func reroll(v Vector, target int64, src rng.Source) Value {
	dice := append([]int64(nil), v.Dice...)
	for i, d := range dice {
		if d == target {
			dice[i] = src.Roll(v.Face)
		}
	}
	sort.Slice(dice, func(i, j int) bool { return dice[i] < dice[j] })
	return Vector{Face: v.Face, Dice: dice}
}

// rerollEnd resamples the first n (lowest=true) or last n (lowest=false)
// dice of the sorted vector, then resorts.
func rerollEnd(v Vector, n int64, src rng.Source, lowest bool) Value {
	if n < 0 || n > int64(len(v.Dice)) {
		panic(&ShapeViolation{Op: "RerollLowest/RerollHighest", Msg: "reroll count exceeds vector length"})
	}
	dice := append([]int64(nil), v.Dice...)
	if lowest {
		for i := int64(0); i < n; i++ {
			dice[i] = src.Roll(v.Face)
		}
	} else {
		start := int64(len(dice)) - n
		for i := start; i < int64(len(dice)); i++ {
			dice[i] = src.Roll(v.Face)
		}
	}
	sort.Slice(dice, func(i, j int) bool { return dice[i] < dice[j] })
	return Vector{Face: v.Face, Dice: dice}
}

func dropLowest(v Vector, n int64) Value {
	length := int64(len(v.Dice))
	if n >= length {
		panic(&ShapeViolation{Op: "DropLowest", Msg: "cannot drop all dice from a vector"})
	}
	dice := append([]int64(nil), v.Dice[n:]...)
	return Vector{Face: v.Face, Dice: dice}
}

func dropHighest(v Vector, n int64) Value {
	length := int64(len(v.Dice))
	if n >= length {
		panic(&ShapeViolation{Op: "DropHighest", Msg: "cannot drop all dice from a vector"})
	}
	dice := append([]int64(nil), v.Dice[:length-n]...)
	return Vector{Face: v.Face, Dice: dice}
}

func clamp(v Value, bound int64, over func(value, bound int64) bool) Value {
	switch t := v.(type) {
	case Scalar:
		if over(int64(t), bound) {
			return Scalar(bound)
		}
		return t
	case Vector:
		dice := make([]int64, len(t.Dice))
		for i, d := range t.Dice {
			if over(d, bound) {
				dice[i] = bound
			} else {
				dice[i] = d
			}
		}
		return Vector{Face: t.Face, Dice: dice}
	default:
		panic(&ShapeViolation{Op: "Ceil/Floor", Msg: "unrecognized value shape"})
	}
}
