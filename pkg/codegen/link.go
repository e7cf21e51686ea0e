package codegen

import (
	"github.com/charmbracelet/log"
)

const unresolved = -1

// Link rewrites every jump operand from a label id into the index of that
// label's instruction. On error the sequence is left untouched. Linking an
// already linked sequence is a no-op.
func Link(seq *Sequence) error {
	if seq.Linked {
		return nil
	}

	// Pass 1: label table
	// Label ids are dense, so an id past the sequence length cannot be valid
	// and must not size the table.
	maxLabel := -1
	for i, instr := range seq.Instructions {
		if instr.Op != OpLabel {
			continue
		}
		id, _ := instr.Int()
		if id < 0 || id >= int64(len(seq.Instructions)) {
			return &LinkError{Label: int(id), Index: i, Err: ErrUnresolvedLabel}
		}
		if int(id) > maxLabel {
			maxLabel = int(id)
		}
	}

	table := make([]int, maxLabel+1)
	for i := range table {
		table[i] = unresolved
	}

	for i, instr := range seq.Instructions {
		if instr.Op != OpLabel {
			continue
		}
		id, _ := instr.Int()
		if table[id] != unresolved {
			return &LinkError{Label: int(id), Index: i, Err: ErrDuplicateLabel}
		}
		table[id] = i
	}

	// Pass 2: resolve targets before touching the sequence
	targets := make(map[int]int)
	for i, instr := range seq.Instructions {
		if !instr.IsJump() {
			continue
		}
		id, ok := instr.Int()
		if !ok || id < 0 || int(id) > maxLabel || table[id] == unresolved {
			return &LinkError{Label: int(id), Index: i, Err: ErrUnresolvedLabel}
		}
		targets[i] = table[id]
	}

	for i, target := range targets {
		seq.Instructions[i].Arg = IntOperand(target)
	}
	seq.Linked = true

	log.Debug("Linked IR", "labels", maxLabel+1, "jumps", len(targets))
	return nil
}
