package vm

import "encoding/binary"

// This file is the decode-execute dispatch loop, plus the handler protocol
// in handlers.go: a switch over a byte-at-a-time instruction stream, reading
// operands with small helper readers that advance fiber.IP directly (there
// is no separate local ip copy), addressing a flat CodeBlock and enlarged
// with the effect-handler opcodes.

func readU8(code []byte, ip int) (byte, int) { return code[ip], ip + 1 }
func readI8(code []byte, ip int) (int8, int) { return int8(code[ip]), ip + 1 }
func readU16(code []byte, ip int) (uint16, int) {
	return binary.BigEndian.Uint16(code[ip : ip+2]), ip + 2
}
func readI16(code []byte, ip int) (int16, int) {
	return int16(binary.BigEndian.Uint16(code[ip : ip+2])), ip + 2
}
func readU32(code []byte, ip int) (uint32, int) {
	return binary.BigEndian.Uint32(code[ip : ip+4]), ip + 4
}

func findSlot(fiber *ObjFiber, frameIdx, slotIdx int) (Value, error) {
	if fiber.frameCount() <= frameIdx {
		return Nil, fatalf(OpFind, fiber.IP, "FIND frame index %d outside frame stack bounds", frameIdx)
	}
	vf, ok := asVarFrame(fiber.peekFrame(frameIdx))
	if !ok {
		return Nil, fatalf(OpFind, fiber.IP, "FIND target at depth %d is not a variable frame", frameIdx)
	}
	if slotIdx < 0 || slotIdx >= len(vf.Slots) {
		return Nil, fatalf(OpFind, fiber.IP, "FIND slot index %d outside frame's %d slots", slotIdx, len(vf.Slots))
	}
	return vf.Slots[slotIdx], nil
}

// run is the interpreter's outer loop.
func (vm *VM) run(fiber *ObjFiber) (Result, int, error) {
	vm.fiber = fiber
	code := vm.block.Code

	for {
		if fiber.Suspended {
			return ResultSuspended, 0, nil
		}
		if fiber.IP >= len(code) {
			return ResultSuccess, 0, nil
		}

		var b byte
		b, fiber.IP = readU8(code, fiber.IP)
		op := Opcode(b)

		switch op {
		case OpNop:
			// no-op

		case OpAbort:
			var code8 byte
			code8, fiber.IP = readU8(code, fiber.IP)
			return ResultAbort, int(code8), nil

		case OpOffset:
			var delta int16
			delta, fiber.IP = readI16(code, fiber.IP)
			fiber.IP += int(delta)

		case OpCall:
			var target uint32
			target, fiber.IP = readU32(code, fiber.IP)
			cf := newCallFrame(vm.heap, nil, fiber.IP)
			fiber.pushFrame(cf)
			fiber.IP = int(target)

		case OpTailcall:
			var target uint32
			target, fiber.IP = readU32(code, fiber.IP)
			fiber.IP = int(target)

		case OpReturn:
			if fiber.frameCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "RETURN with an empty frame stack")
			}
			cf, ok := asCallFrame(fiber.popFrame())
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "RETURN expects a call frame on top of the frame stack")
			}
			fiber.IP = cf.AfterLocation

		case OpConstant:
			var idx byte
			idx, fiber.IP = readU8(code, fiber.IP)
			if int(idx) >= len(vm.block.Constants) {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "constant index %d out of range", idx)
			}
			fiber.push(vm.block.Constants[idx])

		case OpNegate:
			v := fiber.pop()
			fiber.push(Double(-v.AsDouble()))

		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			b := fiber.pop().AsDouble()
			a := fiber.pop().AsDouble()
			var r float64
			switch op {
			case OpAdd:
				r = a + b
			case OpSubtract:
				r = a - b
			case OpMultiply:
				r = a * b
			case OpDivide:
				r = a / b
			}
			fiber.push(Double(r))

		case OpEqual:
			b := fiber.pop()
			a := fiber.pop()
			fiber.push(Bool(Equal(a, b)))

		case OpGreater:
			b := fiber.pop().AsDouble()
			a := fiber.pop().AsDouble()
			fiber.push(Bool(a > b))

		case OpLess:
			b := fiber.pop().AsDouble()
			a := fiber.pop().AsDouble()
			fiber.push(Bool(a < b))

		case OpTrue:
			fiber.push(True)

		case OpFalse:
			fiber.push(False)

		case OpNot:
			v := fiber.pop()
			fiber.push(Bool(!v.Truth()))

		case OpBoolAnd:
			b := fiber.pop().AsBool()
			a := fiber.pop().AsBool()
			fiber.push(Bool(a && b))

		case OpBoolOr:
			b := fiber.pop().AsBool()
			a := fiber.pop().AsBool()
			fiber.push(Bool(a || b))

		case OpBoolEq:
			b := fiber.pop().AsBool()
			a := fiber.pop().AsBool()
			fiber.push(Bool(a == b))

		case OpBoolNeq:
			b := fiber.pop().AsBool()
			a := fiber.pop().AsBool()
			fiber.push(Bool(a != b))

		case OpConcat:
			b := fiber.pop()
			a := fiber.pop()
			bs, ok1 := b.AsObj().(*ObjString)
			as, ok2 := a.AsObj().(*ObjString)
			if !ok1 || !ok2 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "CONCAT requires two strings")
			}
			fiber.push(ObjVal(newString(vm.heap, as.Data+bs.Data)))

		case OpStore:
			var n byte
			n, fiber.IP = readU8(code, fiber.IP)
			if fiber.valueCount() < int(n) {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "STORE needs %d values, only have %d", n, fiber.valueCount())
			}
			slots := make([]Value, n)
			for i := 0; i < int(n); i++ {
				slots[i] = fiber.peek(i)
			}
			fiber.dropValues(int(n))
			fiber.pushFrame(newVarFrame(vm.heap, slots))

		case OpFind:
			var frameIdx, slotIdx uint16
			frameIdx, fiber.IP = readU16(code, fiber.IP)
			slotIdx, fiber.IP = readU16(code, fiber.IP)
			v, err := findSlot(fiber, int(frameIdx), int(slotIdx))
			if err != nil {
				return ResultRuntimeError, 0, err
			}
			fiber.push(v)

		case OpForget:
			if fiber.frameCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "FORGET with an empty frame stack")
			}
			fiber.popFrame()

		case OpClosure, OpRecursive:
			var body uint32
			body, fiber.IP = readU32(code, fiber.IP)
			var paramCount byte
			paramCount, fiber.IP = readU8(code, fiber.IP)
			var closedCount uint16
			closedCount, fiber.IP = readU16(code, fiber.IP)

			extra := 0
			if op == OpRecursive {
				extra = 1
			}
			captured := make([]Value, int(closedCount)+extra)
			closure := newClosure(vm.heap, int(body), int(paramCount), captured, ResumeMany)
			if op == OpRecursive {
				closure.Captured[0] = ObjVal(closure)
			}
			for i := 0; i < int(closedCount); i++ {
				var frame, slot uint16
				frame, fiber.IP = readU16(code, fiber.IP)
				slot, fiber.IP = readU16(code, fiber.IP)
				v, err := findSlot(fiber, int(frame), int(slot))
				if err != nil {
					return ResultRuntimeError, 0, err
				}
				closure.Captured[extra+i] = v
			}
			fiber.push(ObjVal(closure))

		case OpMutual:
			var n byte
			n, fiber.IP = readU8(code, fiber.IP)
			if err := vm.execMutual(fiber, int(n)); err != nil {
				return ResultRuntimeError, 0, err
			}

		case OpCallClosure, OpTailcallClosure:
			if fiber.valueCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "%s requires a closure on the value stack", op)
			}
			v := fiber.pop()
			closure, ok := v.AsObj().(*ObjClosure)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "%s expects a closure value", op)
			}
			after := fiber.IP
			if op == OpTailcallClosure {
				if fiber.frameCount() == 0 {
					return ResultRuntimeError, 0, fatalf(op, fiber.IP, "TAILCALL_CLOSURE requires a call frame to replace")
				}
				oldFrame, ok := asCallFrame(fiber.popFrame())
				if !ok {
					return ResultRuntimeError, 0, fatalf(op, fiber.IP, "TAILCALL_CLOSURE expects a call frame on top of the frame stack")
				}
				after = oldFrame.AfterLocation
			}
			fiber.pushRoot(v)
			newFrame, err := buildClosureCallFrame(vm, fiber, closure, nil, nil, after)
			fiber.popRoot()
			if err != nil {
				return ResultRuntimeError, 0, err
			}
			fiber.IP = closure.CodeOffset
			fiber.pushFrame(newFrame)

		case OpClosureOnce, OpClosureOnceTail, OpClosureMany:
			if fiber.valueCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "%s requires a closure on the value stack", op)
			}
			top := fiber.peek(0)
			closure, ok := top.AsObj().(*ObjClosure)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "%s expects a closure value on top of the stack", op)
			}
			switch op {
			case OpClosureOnce:
				closure.Limit = ResumeOnce
			case OpClosureOnceTail:
				closure.Limit = ResumeOnceTail
			case OpClosureMany:
				closure.Limit = ResumeMany
			}

		case OpHandle:
			var afterDelta int16
			afterDelta, fiber.IP = readI16(code, fiber.IP)
			var handleID uint32
			handleID, fiber.IP = readU32(code, fiber.IP)
			var paramCount, handlerCount byte
			paramCount, fiber.IP = readU8(code, fiber.IP)
			handlerCount, fiber.IP = readU8(code, fiber.IP)
			if err := vm.execHandle(fiber, int(afterDelta), int(handleID), int(paramCount), int(handlerCount)); err != nil {
				return ResultRuntimeError, 0, err
			}

		case OpInject:
			var handleID uint32
			handleID, fiber.IP = readU32(code, fiber.IP)
			execInject(fiber, int(handleID))

		case OpEject:
			var handleID uint32
			handleID, fiber.IP = readU32(code, fiber.IP)
			if err := execEject(fiber, int(handleID)); err != nil {
				return ResultRuntimeError, 0, err
			}

		case OpComplete:
			target, err := vm.execComplete(fiber)
			if err != nil {
				return ResultRuntimeError, 0, err
			}
			fiber.IP = target

		case OpEscape:
			var handleID uint32
			handleID, fiber.IP = readU32(code, fiber.IP)
			var handlerIdx byte
			handlerIdx, fiber.IP = readU8(code, fiber.IP)
			target, err := vm.execEscape(fiber, int(handleID), int(handlerIdx))
			if err != nil {
				return ResultRuntimeError, 0, err
			}
			fiber.IP = target

		case OpReact:
			var handleID uint32
			handleID, fiber.IP = readU32(code, fiber.IP)
			var handlerIdx byte
			handlerIdx, fiber.IP = readU8(code, fiber.IP)
			target, err := vm.execReact(fiber, int(handleID), int(handlerIdx))
			if err != nil {
				return ResultRuntimeError, 0, err
			}
			fiber.IP = target

		case OpCallContinuation, OpTailcallContinuation:
			if fiber.valueCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "%s expects a continuation on the value stack", op)
			}
			v := fiber.pop()
			cont, ok := v.AsObj().(*ObjContinuation)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "%s expects a continuation value", op)
			}
			after := fiber.IP
			if op == OpTailcallContinuation {
				if fiber.frameCount() == 0 {
					return ResultRuntimeError, 0, fatalf(op, fiber.IP, "TAILCALL_CONTINUATION requires a call frame to replace")
				}
				cf, ok := asCallFrame(fiber.popFrame())
				if !ok {
					return ResultRuntimeError, 0, fatalf(op, fiber.IP, "TAILCALL_CONTINUATION expects a call frame on top of the frame stack")
				}
				after = cf.AfterLocation
			}
			fiber.pushRoot(v)
			target, err := vm.resumeContinuation(fiber, cont, after)
			fiber.popRoot()
			if err != nil {
				return ResultRuntimeError, 0, err
			}
			fiber.IP = target

		case OpZap:
			if fiber.valueCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "ZAP on an empty value stack")
			}
			fiber.pop()

		case OpSwap:
			if fiber.valueCount() < 2 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "SWAP needs two values")
			}
			n := len(fiber.Values)
			fiber.Values[n-1], fiber.Values[n-2] = fiber.Values[n-2], fiber.Values[n-1]

		case OpDup:
			if fiber.valueCount() == 0 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "DUP on an empty value stack")
			}
			fiber.push(fiber.peek(0))

		case OpDup2:
			if fiber.valueCount() < 2 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "DUP2 needs two values")
			}
			a, b := fiber.peek(1), fiber.peek(0)
			fiber.push(a)
			fiber.push(b)

		case OpExch:
			if fiber.valueCount() < 3 {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "EXCH needs three values")
			}
			n := len(fiber.Values)
			fiber.Values[n-1], fiber.Values[n-3] = fiber.Values[n-3], fiber.Values[n-1]

		case OpListNil:
			fiber.push(Nil)

		case OpListCons:
			head := fiber.pop()
			tail := fiber.pop()
			fiber.push(ObjVal(newListCons(vm.heap, head, tail)))

		case OpListHead:
			v := fiber.pop()
			cell, ok := v.AsObj().(*ObjListCons)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "LIST_HEAD on an empty list")
			}
			fiber.push(cell.Head)

		case OpListTail:
			v := fiber.pop()
			cell, ok := v.AsObj().(*ObjListCons)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "LIST_TAIL on an empty list")
			}
			fiber.push(cell.Tail)

		case OpListIsEmpty:
			v := fiber.pop()
			fiber.push(Bool(v.IsNil()))

		case OpListAppend:
			b := fiber.pop()
			a := fiber.pop()
			fiber.push(listAppend(vm.heap, a, b))

		case OpArrayNew:
			var n byte
			n, fiber.IP = readU8(code, fiber.IP)
			vals := make([]Value, n)
			for i := range vals {
				vals[i] = Nil
			}
			fiber.push(ObjVal(newArray(vm.heap, vals)))

		case OpArrayFill:
			v := fiber.pop()
			n := int(fiber.pop().AsDouble())
			arr, ok := fiber.peek(0).AsObj().(*ObjArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "ARRAY_FILL expects an array")
			}
			arr.fill(n, v)

		case OpArraySnoc:
			v := fiber.pop()
			arr, ok := fiber.peek(0).AsObj().(*ObjArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "ARRAY_SNOC expects an array")
			}
			arr.snoc(v)

		case OpArrayGet:
			idx := int(fiber.pop().AsDouble())
			v := fiber.pop()
			arr, ok := v.AsObj().(*ObjArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "ARRAY_GET expects an array")
			}
			r, err := arr.getAt(idx)
			if err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}
			fiber.push(r)

		case OpArraySet:
			val := fiber.pop()
			idx := int(fiber.pop().AsDouble())
			arr, ok := fiber.peek(0).AsObj().(*ObjArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "ARRAY_SET expects an array")
			}
			if err := arr.setAt(idx, val); err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}

		case OpArrayLen:
			v := fiber.pop()
			arr, ok := v.AsObj().(*ObjArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "ARRAY_LEN expects an array")
			}
			fiber.push(Double(float64(len(arr.Values))))

		case OpSliceNew:
			length := int(fiber.pop().AsDouble())
			start := int(fiber.pop().AsDouble())
			src := fiber.pop()
			arr, ok := src.AsObj().(*ObjArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "SLICE_NEW expects a source array")
			}
			sl, err := newSlice(vm.heap, arr, start, length)
			if err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}
			fiber.push(ObjVal(sl))

		case OpByteArrayNew:
			var n byte
			n, fiber.IP = readU8(code, fiber.IP)
			fiber.push(ObjVal(newByteArray(vm.heap, make([]byte, n))))

		case OpByteArrayFill:
			v := byte(fiber.pop().AsDouble())
			n := int(fiber.pop().AsDouble())
			arr, ok := fiber.peek(0).AsObj().(*ObjByteArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "BYTE_ARRAY_FILL expects a byte array")
			}
			arr.fill(n, v)

		case OpByteArraySnoc:
			v := byte(fiber.pop().AsDouble())
			arr, ok := fiber.peek(0).AsObj().(*ObjByteArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "BYTE_ARRAY_SNOC expects a byte array")
			}
			arr.snoc(v)

		case OpByteArrayGet:
			idx := int(fiber.pop().AsDouble())
			v := fiber.pop()
			arr, ok := v.AsObj().(*ObjByteArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "BYTE_ARRAY_GET expects a byte array")
			}
			r, err := arr.getAt(idx)
			if err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}
			fiber.push(Double(float64(r)))

		case OpByteArraySet:
			val := byte(fiber.pop().AsDouble())
			idx := int(fiber.pop().AsDouble())
			arr, ok := fiber.peek(0).AsObj().(*ObjByteArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "BYTE_ARRAY_SET expects a byte array")
			}
			if err := arr.setAt(idx, val); err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}

		case OpByteArrayLen:
			v := fiber.pop()
			arr, ok := v.AsObj().(*ObjByteArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "BYTE_ARRAY_LEN expects a byte array")
			}
			fiber.push(Double(float64(len(arr.Bytes))))

		case OpByteSliceNew:
			length := int(fiber.pop().AsDouble())
			start := int(fiber.pop().AsDouble())
			src := fiber.pop()
			arr, ok := src.AsObj().(*ObjByteArray)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "BYTE_SLICE_NEW expects a source byte array")
			}
			sl, err := newByteSlice(vm.heap, arr, start, length)
			if err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}
			fiber.push(ObjVal(sl))

		case OpMapNew:
			var size uint16
			size, fiber.IP = readU16(code, fiber.IP)
			fiber.push(ObjVal(newMap(vm.heap, int(size))))

		case OpMapGet:
			k := fiber.pop()
			m, ok := fiber.pop().AsObj().(*ObjMap)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "MAP_GET expects a map")
			}
			v, found := m.Get(k)
			fiber.push(v)
			fiber.push(Bool(found))

		case OpMapSet:
			v := fiber.pop()
			k := fiber.pop()
			m, ok := fiber.peek(0).AsObj().(*ObjMap)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "MAP_SET expects a map")
			}
			m.Set(k, v)

		case OpMapDelete:
			k := fiber.pop()
			m, ok := fiber.peek(0).AsObj().(*ObjMap)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "MAP_DELETE expects a map")
			}
			m.Delete(k)

		case OpMapLen:
			m, ok := fiber.pop().AsObj().(*ObjMap)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "MAP_LEN expects a map")
			}
			fiber.push(Double(float64(m.Len())))

		case OpStructNew:
			var structID uint16
			structID, fiber.IP = readU16(code, fiber.IP)
			var fieldCount byte
			fieldCount, fiber.IP = readU8(code, fiber.IP)
			if fiber.valueCount() < int(fieldCount) {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "STRUCT_NEW needs %d fields", fieldCount)
			}
			fields := make([]Value, fieldCount)
			for i := 0; i < int(fieldCount); i++ {
				fields[i] = fiber.peek(int(fieldCount) - 1 - i)
			}
			fiber.dropValues(int(fieldCount))
			fiber.push(ObjVal(newStruct(vm.heap, int(structID), fields)))

		case OpStructGet:
			var idx byte
			idx, fiber.IP = readU8(code, fiber.IP)
			v := fiber.pop()
			st, ok := v.AsObj().(*ObjStruct)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "STRUCT_GET expects a struct")
			}
			r, err := st.getField(int(idx))
			if err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}
			fiber.push(r)

		case OpStructSet:
			var idx byte
			idx, fiber.IP = readU8(code, fiber.IP)
			val := fiber.pop()
			st, ok := fiber.peek(0).AsObj().(*ObjStruct)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "STRUCT_SET expects a struct")
			}
			if err := st.setField(int(idx), val); err != nil {
				return ResultRuntimeError, 0, &FatalError{Op: op, IP: fiber.IP, Message: err.Error()}
			}

		case OpRefNew:
			v := fiber.pop()
			fiber.push(ObjVal(newRef(vm.heap, vm.refs, v)))

		case OpRefGet:
			v := fiber.pop()
			ref, ok := v.AsObj().(*ObjRef)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "REF_GET expects a ref")
			}
			val, found := ref.Get()
			if !found {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "use of uninitialized ref")
			}
			fiber.push(val)

		case OpRefSet:
			val := fiber.pop()
			v := fiber.pop()
			ref, ok := v.AsObj().(*ObjRef)
			if !ok {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "REF_SET expects a ref")
			}
			ref.Set(val)

		case OpCallForeign:
			var idx uint16
			idx, fiber.IP = readU16(code, fiber.IP)
			if int(idx) >= len(vm.foreignFns) {
				return ResultRuntimeError, 0, fatalf(op, fiber.IP, "CALL_FOREIGN index %d out of range", idx)
			}
			vm.foreignFns[idx](vm, fiber)

		default:
			return ResultRuntimeError, 0, fatalf(op, fiber.IP, "unknown opcode")
		}
	}
}
