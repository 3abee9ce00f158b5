package ty

import (
	"slices"
	"strings"
)

type Safety uint8

const (
	Safe Safety = iota
	Unsafe
)

func (s Safety) String() string {
	if s == Unsafe {
		return "unsafe"
	}
	return "safe"
}

// RustAbi is the default calling convention
const RustAbi = "Rust"

// FnSig is the signature of a function pointer
type FnSig struct {
	// InputsAndOutput holds the parameter types followed by the return type
	InputsAndOutput []*Type
	CVariadic       bool
	Safety          Safety
	Abi             string
}

func NewFnSig(inputs []*Type, output *Type) FnSig {
	return FnSig{
		InputsAndOutput: append(slices.Clone(inputs), output),
		Abi:             RustAbi,
	}
}

func (s FnSig) Inputs() []*Type { return s.InputsAndOutput[:len(s.InputsAndOutput)-1] }
func (s FnSig) Output() *Type   { return s.InputsAndOutput[len(s.InputsAndOutput)-1] }

func (s FnSig) OuterExclusiveBinder() DebruijnIndex {
	var res DebruijnIndex
	for _, t := range s.InputsAndOutput {
		res = max(res, t.outerExclusiveBinder)
	}
	return res
}

func (s FnSig) Equal(other Relatable) bool {
	o, ok := other.(FnSig)
	return ok &&
		s.CVariadic == o.CVariadic &&
		s.Safety == o.Safety &&
		s.Abi == o.Abi &&
		slices.Equal(s.InputsAndOutput, o.InputsAndOutput)
}

func (s FnSig) String() string {
	sb := &strings.Builder{}
	s.write(sb)
	return sb.String()
}

func (s FnSig) write(sb *strings.Builder) {
	if s.Safety == Unsafe {
		sb.WriteString("unsafe ")
	}
	if s.Abi != RustAbi && s.Abi != "" {
		sb.WriteString(`extern "` + s.Abi + `" `)
	}
	sb.WriteString("fn(")
	for i, input := range s.Inputs() {
		if i > 0 {
			sb.WriteString(", ")
		}
		input.write(sb)
	}
	if s.CVariadic {
		if len(s.Inputs()) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")")
	if out := s.Output(); out != out.ctxt.Types.Unit {
		sb.WriteString(" -> ")
		out.write(sb)
	}
}
