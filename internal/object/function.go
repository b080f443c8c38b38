package object

import (
	"fmt"
	"io"
)

// Function is a user-defined, bytecode-backed callable: an offset into an
// Executable plus the Closure frame it closed over at definition time.
type Function struct {
	base
	Name     string
	ExeIndex int // instruction offset of the function body within its Executable
	Argc     int
	Captured *Closure
}

var FunctionType = newType("function", AtomicComposite)

const functionHeaderSize = 40

func NewFunction(h *Heap, name string, exeIndex, argc int, captured *Closure) (*Function, error) {
	if err := h.charge(functionHeaderSize); err != nil {
		return nil, err
	}
	return &Function{base: newBase(FunctionType), Name: name, ExeIndex: exeIndex, Argc: argc, Captured: captured}, nil
}

func init() {
	FunctionType.ToBool = func(o Object) bool { return true }
	FunctionType.Walk = func(o Object, visit func(slot *Object)) {
		f := o.(*Function)
		if f.Captured != nil {
			var slot Object = f.Captured
			visit(&slot)
		}
	}
	FunctionType.Print = func(o Object, w io.Writer) {
		f := o.(*Function)
		if f.Name != "" {
			fmt.Fprintf(w, "<function %s>", f.Name)
			return
		}
		io.WriteString(w, "<function>")
	}
}

// NativeFunction is a Go-implemented builtin exposed to compiled code
// under the spec's "native function" object kind — the prelude's
// stringFromInteger is one; its abs, min and max are ordinary wisp
// Functions compiled from prelude.wisp.
type NativeFunction struct {
	base
	Name string
	Argc int // -1 means variadic
	Fn   func(h *Heap, args []Object) (Object, error)
}

var NativeFunctionType = newType("native_function", AtomicComposite)

const nativeFunctionHeaderSize = 40

func NewNativeFunction(h *Heap, name string, argc int, fn func(h *Heap, args []Object) (Object, error)) (*NativeFunction, error) {
	if err := h.charge(nativeFunctionHeaderSize); err != nil {
		return nil, err
	}
	return &NativeFunction{base: newBase(NativeFunctionType), Name: name, Argc: argc, Fn: fn}, nil
}

func init() {
	NativeFunctionType.ToBool = func(o Object) bool { return true }
	NativeFunctionType.Print = func(o Object, w io.Writer) {
		fmt.Fprintf(w, "<native function %s>", o.(*NativeFunction).Name)
	}
}

// Callable is satisfied by both Function and NativeFunction. The
// interpreter's CALL opcode handler does not use it; it type-switches on
// the two concrete types.
type Callable interface {
	Object
	ArgCount() int
}

func (f *Function) ArgCount() int       { return f.Argc }
func (f *NativeFunction) ArgCount() int { return f.Argc }
