// Package checker statically computes a sound [min, max] envelope for an
// ir.Program by abstractly re-executing it against twin stacks — one
// tracking the minimum each instruction could produce, the other the
// maximum — instead of sampling.
package checker

import (
	"fmt"

	"sudice/internal/ir"
	"sudice/internal/sudiceerr"
)

// state is the pair of abstract stacks the checker threads through a run.
// The two stacks always have identical depth, and whenever one side's TOS
// is a vector, the other side's must be too — any violation of that
// invariant is a defective-frontend bug, not a user mistake, so it panics
// rather than returning an error.
type state struct {
	minStack []aValue
	maxStack []aValue
	minTos   aValue
	maxTos   aValue
}

func (s *state) pop() (aValue, aValue) {
	if len(s.minStack) != len(s.maxStack) {
		panic("checker: min/max stack depth diverged")
	}
	n := len(s.minStack) - 1
	minX, maxX := s.minStack[n], s.maxStack[n]
	s.minStack, s.maxStack = s.minStack[:n], s.maxStack[:n]
	return minX, maxX
}

func (s *state) push() {
	s.minStack = append(s.minStack, s.minTos)
	s.maxStack = append(s.maxStack, s.maxTos)
}

func requireVectors(minV, maxV aValue) {
	if minV.isVector != maxV.isVector {
		panic("checker: shape asymmetry between min and max stacks")
	}
	if !minV.isVector {
		panic("checker: opcode requires a vector, found a scalar")
	}
}

// Check walks prog and returns a sound (min, max) envelope for the value
// it can produce, or a *sudiceerr.Error for a statically-detected unsound
// program (catastrophic drop, an out-of-range static reroll target).
func Check(prog *ir.Program) (minOut, maxOut int64, err error) {
	st := &state{
		minStack: make([]aValue, 0, len(prog.Code)),
		maxStack: make([]aValue, 0, len(prog.Code)),
	}
	if _, err := run(prog.Code, 0, false, st); err != nil {
		return 0, 0, err
	}
	return st.minTos.collapse(), st.maxTos.collapse(), nil
}

// run abstractly executes code starting at dcp. When untilJump is true
// (only legal while exploring a Select arm) it stops as soon as it reaches
// a Jump instruction and returns the index of that Jump without applying
// it; encountering Jump outside that mode means the IR is corrupt.
func run(code []ir.Inst, dcp int, untilJump bool, st *state) (int, error) {
	for dcp < len(code) {
		inst := code[dcp]
		switch inst.Op {
		case ir.Reroll, ir.RerollLowest, ir.RerollHighest, ir.DropLowest, ir.DropHighest, ir.Ceil, ir.Floor:
			// A modifier's operand is the Num compiled after its target, so it
			// arrives in tos with the target just beneath it; swap them so the
			// cases below find the target in tos and the operand on the stack.
			top := len(st.minStack) - 1
			st.minStack[top], st.minTos = st.minTos, st.minStack[top]
			st.maxStack[top], st.maxTos = st.maxTos, st.maxStack[top]
		}
		switch inst.Op {
		case ir.Jump:
			if !untilJump {
				panic("checker: stray Jump outside a select arm")
			}
			return dcp, nil

		case ir.Num:
			st.push()
			st.minTos = ascalar(inst.Arg)
			st.maxTos = ascalar(inst.Arg)

		case ir.Add:
			arith(st, func(a, b int64) int64 { return a + b }, func(a, b int64) int64 { return a + b })
		case ir.Sub:
			// tos holds the right operand, the popped value the left one.
			// Subtraction inverts: minimize a-b by subtracting max(b); maximize by subtracting min(b).
			minX, maxX := st.pop()
			newMin := minX.collapse() - st.maxTos.collapse()
			newMax := maxX.collapse() - st.minTos.collapse()
			st.minTos, st.maxTos = ascalar(newMin), ascalar(newMax)
		case ir.Mul:
			arith(st, func(a, b int64) int64 { return a * b }, func(a, b int64) int64 { return a * b })
		case ir.Div:
			minX, maxX := st.pop()
			newMin := minX.collapse() / st.maxTos.collapse()
			newMax := maxX.collapse() / st.minTos.collapse()
			st.minTos, st.maxTos = ascalar(newMin), ascalar(newMax)

		case ir.Roll:
			// TOS holds the face-count bound, the popped operand the
			// die-count bound.
			minCount, maxCount := st.pop()
			maxFace := st.maxTos.collapse()
			st.minTos = avector(minCount.collapse(), 1)
			st.maxTos = avector(maxCount.collapse(), maxFace)

		case ir.Reroll, ir.RerollLowest, ir.RerollHighest:
			minX, maxX := st.pop()
			requireVectors(st.minTos, st.maxTos)
			// Only Reroll's operand is a die value; RerollLowest/RerollHighest
			// take a dice count, which the face range does not bound.
			if inst.Op == ir.Reroll && minX.collapse() == maxX.collapse() {
				target := minX.collapse()
				face := st.maxTos.face
				if target < 1 || target > face {
					return 0, sudiceerr.NewCheckError(
						fmt.Sprintf("reroll target %d is outside the die's range [1, %d]", target, face))
				}
			}
			// Reroll family is shape- and bound-neutral: it cannot move values
			// outside [1, face], so the vector envelope is left unchanged.

		case ir.DropLowest:
			if err := dropOp(st, true); err != nil {
				return 0, err
			}
		case ir.DropHighest:
			if err := dropOp(st, false); err != nil {
				return 0, err
			}

		case ir.Ceil:
			minX, maxX := st.pop()
			st.minTos = clampAbove(st.minTos, minX.collapse())
			st.maxTos = clampAbove(st.maxTos, maxX.collapse())
		case ir.Floor:
			minX, maxX := st.pop()
			st.minTos = clampBelow(st.minTos, minX.collapse())
			st.maxTos = clampBelow(st.maxTos, maxX.collapse())

		case ir.BestOf, ir.WorstOf:
			// Bound-neutral in a sound analysis: max-of-samples <= max of the
			// underlying distribution, min-of-samples >= its min. tos holds
			// the iteration count, the popped value the sample's own bound —
			// discard the former and keep the latter as the result.
			minX, maxX := st.pop()
			st.minTos, st.maxTos = minX, maxX

		case ir.Select:
			next, err := checkSelect(code, dcp, inst, st)
			if err != nil {
				return 0, err
			}
			dcp = next

		case ir.Lt:
			compare(st,
				func(maxL, minL, maxR, minR int64) bool { return maxL < minR },
				func(maxL, minL, maxR, minR int64) bool { return maxR < minL })
		case ir.Gt:
			compare(st,
				func(maxL, minL, maxR, minR int64) bool { return maxR < minL },
				func(maxL, minL, maxR, minR int64) bool { return maxL < minR })
		case ir.Eq:
			eqOp(st, false)
		case ir.Ne:
			eqOp(st, true)

		case ir.And:
			boolOp(st, func(a, b bool) bool { return a && b })
		case ir.Or:
			boolOp(st, func(a, b bool) bool { return a || b })

		default:
			panic("checker: unrecognized opcode " + inst.Op.String())
		}
		dcp++
	}
	return dcp, nil
}

func arith(st *state, minF, maxF func(a, b int64) int64) {
	minX, maxX := st.pop()
	st.minTos = ascalar(minF(st.minTos.collapse(), minX.collapse()))
	st.maxTos = ascalar(maxF(st.maxTos.collapse(), maxX.collapse()))
}

func dropOp(st *state, lowest bool) error {
	minX, maxX := st.pop()
	requireVectors(st.minTos, st.maxTos)

	minN := minX.collapse()
	if minN >= st.minTos.length {
		which := "DropHighest"
		if lowest {
			which = "DropLowest"
		}
		return sudiceerr.NewCheckError(fmt.Sprintf("%s(%d) would drop all %d dice", which, minN, st.minTos.length))
	}
	st.minTos = avector(st.minTos.length-minN, st.minTos.face)

	maxN := maxX.collapse()
	if maxN >= st.maxTos.length {
		panic("checker: max-side drop exceeds vector length; min/max symmetry should prevent this")
	}
	st.maxTos = avector(st.maxTos.length-maxN, st.maxTos.face)
	return nil
}

func clampAbove(v aValue, n int64) aValue {
	if v.isVector {
		if v.face > n {
			return avector(v.length, n)
		}
		return v
	}
	if v.scalar > n {
		return ascalar(n)
	}
	return v
}

func clampBelow(v aValue, n int64) aValue {
	if v.isVector {
		if v.face < n {
			return avector(v.length, n)
		}
		return v
	}
	if v.scalar < n {
		return ascalar(n)
	}
	return v
}

// compare implements Lt (and, with its arguments swapped, Gt): certainlyTrue
// and certainlyFalse each receive the cross pair of bounds that settles the
// comparison one way or the other; when neither holds the outcome is
// uncertain and collapses to the canonical [1, 2] range.
func compare(st *state, certainlyTrue, certainlyFalse func(maxL, minL, maxR, minR int64) bool) {
	// tos holds the right operand's bounds, the popped value the left's.
	minX, maxX := st.pop()
	maxL, minL := maxX.collapse(), minX.collapse()
	maxR, minR := st.maxTos.collapse(), st.minTos.collapse()
	switch {
	case certainlyTrue(maxL, minL, maxR, minR):
		st.minTos, st.maxTos = ascalar(1), ascalar(1)
	case certainlyFalse(maxL, minL, maxR, minR):
		st.minTos, st.maxTos = ascalar(2), ascalar(2)
	default:
		st.minTos, st.maxTos = ascalar(1), ascalar(2)
	}
}

// eqOp implements Eq (negate=false) and Ne (negate=true). Eq is certainly
// false — and Ne certainly true — whenever the two ranges are disjoint; Eq
// is certainly true — and Ne certainly false — only when both sides have
// collapsed to the exact same known scalar. Anything else is uncertain.
func eqOp(st *state, negate bool) {
	minX, maxX := st.pop()
	maxL, minL := st.maxTos.collapse(), st.minTos.collapse()
	maxR, minR := maxX.collapse(), minX.collapse()
	disjoint := maxL < minR || maxR < minL
	certainlyEqual := minL == maxL && minR == maxR && minL == minR

	eqIsTrue, eqIsFalse := int64(1), int64(2)
	switch {
	case certainlyEqual:
		result(st, eqIsTrue, negate)
	case disjoint:
		result(st, eqIsFalse, negate)
	default:
		st.minTos, st.maxTos = ascalar(1), ascalar(2)
	}
}

// result sets both bounds to a certain outcome, flipping true/false when
// negate (Ne) is in effect.
func result(st *state, eqOutcome int64, negate bool) {
	v := eqOutcome
	if negate {
		if v == 1 {
			v = 2
		} else {
			v = 1
		}
	}
	st.minTos, st.maxTos = ascalar(v), ascalar(v)
}

func boolOp(st *state, combine func(a, b bool) bool) {
	minX, maxX := st.pop()
	lCanTrue := st.minTos.collapse() <= 1 && 1 <= st.maxTos.collapse()
	rCanTrue := minX.collapse() <= 1 && 1 <= maxX.collapse()
	if combine(lCanTrue, rCanTrue) {
		st.minTos, st.maxTos = ascalar(1), ascalar(2)
	} else {
		st.minTos, st.maxTos = ascalar(2), ascalar(2)
	}
}

// checkSelect enumerates every arm a sound range of the predicate could
// reach plus the default (out-of-range) case, recursively re-checking each
// from its own instruction pointer, and folds their bounds together.
//
// Every arm — including the t==1 fallthrough arm — starts with the value
// from beneath the predicate restored as its TOS, as in the interpreter;
// the checker pops that value once here and hands every probe a snapshot
// of the stack underneath it so each arm starts from the same restored
// state. Each probe stops at its arm's trailing Jump or, for the last arm,
// at the end of the select. Afterwards that value sits beneath the folded
// result again, so the stack is as deep as it was before the Select.
func checkSelect(code []ir.Inst, dcp int, inst ir.Inst, st *state) (int, error) {
	armCount := len(inst.Offsets) - 1
	if armCount < 0 {
		panic("checker: select with no offsets")
	}
	minT, maxT := st.minTos.collapse(), st.maxTos.collapse()
	selectCode := code[:dcp+inst.Offsets[len(inst.Offsets)-1]+1]

	baseMin, baseMax := st.pop()
	restMin, restMax := st.minStack, st.maxStack

	var mins, maxs []int64
	for i := 0; i <= armCount; i++ {
		t := int64(i + 1)
		if t < minT || t > maxT {
			continue
		}
		start := dcp + 1
		if i > 0 {
			start = dcp + inst.Offsets[i-1] + 1
		}
		probe := &state{
			minStack: append([]aValue(nil), restMin...),
			maxStack: append([]aValue(nil), restMax...),
			minTos:   baseMin,
			maxTos:   baseMax,
		}
		if _, err := run(selectCode, start, true, probe); err != nil {
			return 0, err
		}
		mins = append(mins, probe.minTos.collapse())
		maxs = append(maxs, probe.maxTos.collapse())
	}
	if minT < 1 || maxT > int64(armCount+1) {
		mins = append(mins, minT)
		maxs = append(maxs, maxT)
	}
	if len(mins) == 0 {
		panic("checker: select predicate range reaches no arm and no default")
	}

	st.minStack, st.maxStack = append(restMin, baseMin), append(restMax, baseMax)
	st.minTos = ascalar(minOf(mins))
	st.maxTos = ascalar(maxOf(maxs))
	return dcp + inst.Offsets[len(inst.Offsets)-1], nil
}
