package codegen

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per instruction: index, source line and the instruction.
// Jumps of an unlinked sequence print their label as L<id>.
func Dump(w io.Writer, seq *Sequence) error {
	for i, instr := range seq.Instructions {
		text := instr.String()
		if instr.IsJump() && !seq.Linked {
			id, _ := instr.Int()
			text = fmt.Sprintf("%s L%d", instr.Op, id)
		}
		if _, err := fmt.Fprintf(w, "[%03d] (L%d) %s\n", i, instr.Line, text); err != nil {
			return err
		}
	}
	return nil
}

// String returns the dump of the sequence
func (s *Sequence) String() string {
	var sb strings.Builder
	_ = Dump(&sb, s)
	return sb.String()
}
