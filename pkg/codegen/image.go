package codegen

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	imageMagic   = "MINIVM"
	imageVersion = 1
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codegen: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// image is the on-disk form of a Sequence
type image struct {
	Magic        string             `cbor:"1,keyasint"`
	Version      int                `cbor:"2,keyasint"`
	Linked       bool               `cbor:"3,keyasint"`
	Labels       int                `cbor:"4,keyasint"`
	Instructions []imageInstruction `cbor:"5,keyasint"`
}

type imageInstruction struct {
	Op   string  `cbor:"1,keyasint"`
	Int  *int64  `cbor:"2,keyasint,omitempty"`
	Name *string `cbor:"3,keyasint,omitempty"`
	Line int     `cbor:"4,keyasint"`
}

// MarshalImage serializes a Sequence to CBOR bytes.
func MarshalImage(seq *Sequence) ([]byte, error) {
	img := image{
		Magic:        imageMagic,
		Version:      imageVersion,
		Linked:       seq.Linked,
		Labels:       seq.Labels,
		Instructions: make([]imageInstruction, len(seq.Instructions)),
	}

	for i, instr := range seq.Instructions {
		out := imageInstruction{Op: string(instr.Op), Line: instr.Line}
		switch arg := instr.Arg.(type) {
		case IntOperand:
			v := int64(arg)
			out.Int = &v
		case NameOperand:
			s := string(arg)
			out.Name = &s
		}
		img.Instructions[i] = out
	}

	data, err := cborEncMode.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("codegen: marshal image: %w", err)
	}
	return data, nil
}

// UnmarshalImage deserializes and validates a Sequence from CBOR bytes.
func UnmarshalImage(data []byte) (*Sequence, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("codegen: unmarshal image: %w", err)
	}
	if img.Magic != imageMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadImage, img.Magic)
	}
	if img.Version != imageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadImage, img.Version)
	}

	seq := &Sequence{
		Linked:       img.Linked,
		Labels:       img.Labels,
		Instructions: make([]Instruction, len(img.Instructions)),
	}
	for i, in := range img.Instructions {
		instr := Instruction{Op: Operation(in.Op), Line: in.Line}
		switch {
		case in.Int != nil && in.Name != nil:
			return nil, fmt.Errorf("%w: instruction %d has two operands", ErrBadImage, i)
		case in.Int != nil:
			instr.Arg = IntOperand(*in.Int)
		case in.Name != nil:
			instr.Arg = NameOperand(*in.Name)
		}
		seq.Instructions[i] = instr
	}

	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadImage, err)
	}
	return seq, nil
}
