package bundle

import (
	"github.com/forgepack/forge/internal/errors"
)

// Order computes a topological load order over b.PBRs, populating
// b.PBRsByOrder (spec §4.2 C4 Load Orderer).
//
// Algorithm: iterated depth-first post-order emission. A stack set detects
// back-edges; a PBR encountered while still on the stack via a non-
// unordered edge is a fatal cycle error naming both endpoints.
//
// Edge lookup reads uses[pbr.Role] for the source list: a PBR's declared
// dependencies live under its own role's uses entry (spec §4.2's asymmetry
// note — only the target of an edge is forced in role=use; a test PBR's
// uses[test] edges are walked here, not uses[use]). Resolved open question
// 2 — both environments' uses edges are always followed explicitly, not via
// positional array iteration.
func Order(b *Bundle) error {
	state := &orderState{
		visited:  make(map[PBRKey]bool),
		onStack:  make(map[PBRKey]bool),
		order:    make([]*PBR, 0, len(b.PBRs)),
	}

	// Deterministic root iteration: Go map iteration over b.PBRs is
	// unordered, so PBRs are walked in the order the resolver created them
	// (the insertion-order slice behind pbrInsertionOrder). Resolution
	// order is itself deterministic given a deterministic package loader,
	// so the resulting load order is too (P6).
	for _, pbr := range b.pbrInsertionOrder() {
		if err := visitOrder(b, state, pbr); err != nil {
			return err
		}
	}

	b.PBRsByOrder = state.order
	return nil
}

type orderState struct {
	visited map[PBRKey]bool
	onStack map[PBRKey]bool
	order   []*PBR
}

func visitOrder(b *Bundle, state *orderState, pbr *PBR) error {
	key := pbr.ID()
	if state.visited[key] {
		return nil
	}
	state.onStack[key] = true

	unordered := pbr.Package.Unordered
	for _, env := range AllEnvironments {
		for _, name := range pbr.Package.Uses[pkgmodelRole(pbr.Role)][pkgmodelEnv(env)] {
			if unordered[name] {
				continue
			}
			dep, ok := b.findUsePBRByName(name)
			if !ok {
				continue
			}
			if state.onStack[dep.ID()] {
				return errors.NewCycleError(pbr.Package.Name, dep.Package.Name)
			}
			if err := visitOrder(b, state, dep); err != nil {
				return err
			}
		}
	}

	state.onStack[key] = false
	state.visited[key] = true
	state.order = append(state.order, pbr)
	return nil
}
