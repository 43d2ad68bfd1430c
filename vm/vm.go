package vm

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ForeignFunc is a foreign function registered with a VM and addressed by
// 16-bit index from bytecode's CALL_FOREIGN instruction. It runs
// synchronously with respect to the calling fiber's dispatch step; if
// it wants to suspend, it sets fiber.Suspended and returns, after arranging
// (typically by retaining the ObjForeignResume it's handed) for some outside
// party to later call Resume.
type ForeignFunc func(vm *VM, fiber *ObjFiber)

// VM is the embedding root: one heap, one installed CodeBlock, one foreign
// function table, one reference table, and the currently running fiber
// chain. Unlike a Thread/Program split where a thread merely references a
// separately compiled program, this VM owns the heap and code directly,
// collapsed into a single struct since nothing else in this core needs to
// run more than one program at a time.
type VM struct {
	heap *Heap

	block *ObjCodeBlock

	foreignFns []ForeignFunc

	refs *RefTable

	fiber *ObjFiber

	config Config
	log    *zap.Logger

	// mu is taken by the exported entry points AddConstant, WriteChunk,
	// WriteLabel, NewString, NewForeignResume and CollectGarbage. It does not
	// guard every allocation: registerObj and the dispatch loop in Interpret
	// allocate, and touch the reference table, without taking it.
	mu sync.Mutex
}

// NewVM creates a VM per config. The zero Config produces every documented
// default.
func NewVM(config Config) *VM {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	vm := &VM{
		heap:   newHeap(config),
		refs:   newRefTable(),
		config: config,
		log:    log,
	}
	vm.heap.roots = vm.markRoots
	vm.block = NewCodeBlock(vm)
	vm.fiber = newFiber(vm.heap, config.valueStackCap(), config.frameStackCap(), config.rootStackCap())
	return vm
}

// FreeVM releases everything reachable from vm. Go's own GC will reclaim the
// backing memory; this severs the roots the collector's mark phase consults
// and runs one final sweep, releasing the reference table and foreign
// function table along with every object.
func (vm *VM) FreeVM() {
	vm.heap.roots = nil
	vm.heap.collect()
	vm.block = nil
	vm.fiber = nil
	vm.foreignFns = nil
	vm.refs = newRefTable()
}

func (vm *VM) markRoots(gc *gcState) {
	if vm.block != nil {
		gc.grayObj(vm.block)
	}
	for f := vm.fiber; f != nil; f = f.Caller {
		gc.grayObj(f)
	}
}

// AddConstant appends v to the installed CodeBlock's constant pool.
func (vm *VM) AddConstant(v Value) (byte, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.block.AddConstant(v)
}

// WriteChunk appends one bytecode byte compiled from line to the installed
// CodeBlock.
func (vm *VM) WriteChunk(b byte, line int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.block.WriteChunk(b, line)
}

// WriteLabel records a disassembler label at byteIndex.
func (vm *VM) WriteLabel(byteIndex int, text string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.block.WriteLabel(vm, byteIndex, text)
}

// NewString allocates an ObjString on vm's heap, wrapped as a Value. Exposed
// for callers (e.g. the asm package and foreign functions) that need to
// build string values without reaching into vm's unexported heap field.
func (vm *VM) NewString(s string) Value {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return ObjVal(newString(vm.heap, s))
}

// AddForeign registers fn and returns its 16-bit index.
func (vm *VM) AddForeign(fn ForeignFunc) (uint16, error) {
	if len(vm.foreignFns) >= 1<<16 {
		return 0, fmt.Errorf("vm: foreign function table full (65536 entries)")
	}
	idx := uint16(len(vm.foreignFns))
	vm.foreignFns = append(vm.foreignFns, fn)
	return idx, nil
}

// NewFiber creates a fiber whose instruction pointer starts at ip, with
// initialStack values pushed.
func (vm *VM) NewFiber(ip int, initialStack []Value) *ObjFiber {
	f := newFiber(vm.heap, vm.config.valueStackCap(), vm.config.frameStackCap(), vm.config.rootStackCap())
	f.IP = ip
	for _, v := range initialStack {
		f.push(v)
	}
	return f
}

// CollectGarbage forces an out-of-band collection cycle.
func (vm *VM) CollectGarbage() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.heap.collect()
}

// Block returns the VM's installed CodeBlock.
func (vm *VM) Block() *ObjCodeBlock { return vm.block }

// Refs returns the VM's mutable reference table.
func (vm *VM) Refs() *RefTable { return vm.refs }

// RootFiber returns the VM's initially-created fiber.
func (vm *VM) RootFiber() *ObjFiber { return vm.fiber }

// UserData returns the opaque value supplied at configuration time.
func (vm *VM) UserData() any { return vm.config.UserData }

// Interpret runs fiber to completion, suspension, or fatal error. See
// interp.go for the dispatch loop itself.
func (vm *VM) Interpret(fiber *ObjFiber) (res Result, abortCode int, err error) {
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FatalError)
			if !ok {
				fe = fatalf(OpNop, fiber.IP, "%v", r)
			}
			res, abortCode, err = ResultRuntimeError, 0, fe
		}
	}()
	return vm.run(fiber)
}
