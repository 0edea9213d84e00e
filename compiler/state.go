package compiler

import (
	"context"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/scheduler"
)

// evalState is the per-call evaluation state. It is immutable: entering a
// recursive cell returns a new state, so concurrent branches never share
// mutable data.
type evalState struct {
	sched scheduler.Scheduler
	stack *frame
}

// frame records a recursive cell active at an instance location.
type frame struct {
	cell *cell
	at   jsonptr.Pointer
	next *frame
}

func newEvalState(s scheduler.Scheduler) *evalState {
	if s == nil {
		s = scheduler.Inline{}
	}
	return &evalState{sched: s}
}

// enter pushes c at the instance location. It returns false when c is
// already active there, meaning evaluation went round a cycle without
// consuming any of the instance.
func (st *evalState) enter(c *cell, at jsonptr.Pointer) (*evalState, bool) {
	for f := st.stack; f != nil; f = f.next {
		if f.cell == c && f.at == at {
			return st, false
		}
	}
	return &evalState{sched: st.sched, stack: &frame{cell: c, at: at, next: st.stack}}, true
}

// cell is the placeholder handed out by the recursion guard. Its target is
// filled in once the location finishes compiling.
type cell struct {
	loc       result.Locator
	target    Validator
	recursive bool
}

func (c *cell) invoke(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
	if c.recursive {
		next, ok := st.enter(c, at)
		if !ok {
			return []*result.Result{result.OK(result.ID{Schema: c.loc, Instance: at})}
		}
		st = next
	}
	return c.target(ctx, inst, at, st)
}

// fanOut evaluates n independent branches with the state's scheduler.
// Branches skipped because ctx was cancelled yield nil.
func fanOut(ctx context.Context, st *evalState, n int, fn func(i int) []*result.Result) [][]*result.Result {
	out := make([][]*result.Result, n)
	if n == 0 {
		return out
	}
	st.sched.Run(ctx, n, func(i int) {
		out[i] = fn(i)
	})
	return out
}
