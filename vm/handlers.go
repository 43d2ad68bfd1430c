package vm

// This file implements the algebraic effect handler / delimited
// continuation protocol: HANDLE, INJECT, EJECT, COMPLETE, ESCAPE, REACT,
// CALL_CONTINUATION, TAILCALL_CONTINUATION. The frame-building and
// handler-lookup logic below mirrors the callClosureFrame/findFreeHandler
// shape a reference C effect-handler interpreter uses for the same
// protocol, adapted to Go's slice-backed stacks.

// buildClosureCallFrame pops closure.ParamCount values off the value stack
// (which are therefore in reverse/top-first order), then appends, in order,
// the optional frameVars' slots and the closure's captured values — with an
// optional continuation value prepended as slot 0 when cont != nil (the
// ESCAPE/REACT "operation arguments, then handle-frame variables, then
// handler captures" framing, with the continuation itself as an extra
// leading slot for REACT).
func buildClosureCallFrame(vm *VM, fiber *ObjFiber, closure *ObjClosure, frameVars *VarFrame, cont *ObjContinuation, after int) (*CallFrame, error) {
	if fiber.valueCount() < closure.ParamCount {
		return nil, fatalf(OpCallClosure, fiber.IP, "not enough values on the stack to call closure (need %d, have %d)", closure.ParamCount, fiber.valueCount())
	}

	var slots []Value
	if cont != nil {
		slots = append(slots, ObjVal(cont))
	}
	for i := 0; i < closure.ParamCount; i++ {
		slots = append(slots, fiber.pop())
	}
	if frameVars != nil {
		slots = append(slots, frameVars.Slots...)
	}
	slots = append(slots, closure.Captured...)

	return newCallFrame(vm.heap, slots, after), nil
}

// findFreeHandler walks the frame stack top-down looking for the nearest
// HandleFrame with HandleID == handleID and Nesting == 0. Returns the depth
// from the top (0 == topmost frame) and the frame itself.
func findFreeHandler(fiber *ObjFiber, handleID int) (int, *HandleFrame, error) {
	n := fiber.frameCount()
	for depth := 0; depth < n; depth++ {
		hf, ok := asHandleFrame(fiber.peekFrame(depth))
		if !ok {
			continue
		}
		if hf.HandleID == handleID && hf.Nesting == 0 {
			return depth, hf, nil
		}
	}
	return 0, nil, fatalf(OpEscape, fiber.IP, "no unnested handle frame found for handle id %d", handleID)
}

// execHandle implements HANDLE afterOffset, id, p, h.
func (vm *VM) execHandle(fiber *ObjFiber, afterDelta int, handleID, paramCount, handlerCount int) error {
	if fiber.valueCount() < handlerCount+paramCount+1 {
		return fatalf(OpHandle, fiber.IP, "HANDLE did not have the required number of values on the stack")
	}

	// Popped directly into index order (not reversed), matching the
	// original's `frame->handlers[i] = POP_VAL()` / `slots[i] = POP_VAL()`
	// loops: index 0 is whichever value was on top of the stack.
	handlers := make([]*ObjClosure, handlerCount)
	for i := 0; i < handlerCount; i++ {
		v := fiber.pop()
		c, ok := v.AsObj().(*ObjClosure)
		if !ok {
			return fatalf(OpHandle, fiber.IP, "HANDLE expected a closure value for handler %d", i)
		}
		handlers[i] = c
	}
	afterV := fiber.pop()
	afterClosure, ok := afterV.AsObj().(*ObjClosure)
	if !ok {
		return fatalf(OpHandle, fiber.IP, "HANDLE expected a closure value for the after-closure")
	}
	params := make([]Value, paramCount)
	for i := 0; i < paramCount; i++ {
		params[i] = fiber.pop()
	}

	hf := newHandleFrame(vm.heap, params, fiber.IP+afterDelta, handleID, afterClosure, handlers)
	fiber.pushFrame(hf)
	return nil
}

// execInject implements INJECT id.
func execInject(fiber *ObjFiber, handleID int) {
	n := fiber.frameCount()
	for depth := 0; depth < n; depth++ {
		hf, ok := asHandleFrame(fiber.peekFrame(depth))
		if !ok {
			continue
		}
		if hf.HandleID == handleID {
			hf.Nesting++
			if hf.Nesting == 1 {
				return
			}
		}
	}
}

// execEject implements EJECT id.
func execEject(fiber *ObjFiber, handleID int) error {
	n := fiber.frameCount()
	for depth := 0; depth < n; depth++ {
		hf, ok := asHandleFrame(fiber.peekFrame(depth))
		if !ok {
			continue
		}
		if hf.HandleID == handleID {
			hf.Nesting--
			if hf.Nesting <= 0 {
				if hf.Nesting != 0 {
					return fatalf(OpEject, fiber.IP, "EJECT occurred without a matching prior INJECT")
				}
				return nil
			}
		}
	}
	return nil
}

// execComplete implements COMPLETE.
func (vm *VM) execComplete(fiber *ObjFiber) (int, error) {
	if fiber.frameCount() == 0 {
		return 0, fatalf(OpComplete, fiber.IP, "COMPLETE expects at least one frame on the frame stack")
	}
	hf, ok := asHandleFrame(fiber.peekFrame(0))
	if !ok {
		return 0, fatalf(OpComplete, fiber.IP, "COMPLETE expects a handle frame at the top of the frame stack")
	}
	if hf.AfterClosure.ParamCount != 0 {
		return 0, fatalf(OpComplete, fiber.IP, "COMPLETE only supports after-closures with zero formal parameters")
	}

	newFrame, err := buildClosureCallFrame(vm, fiber, hf.AfterClosure, &hf.VarFrame, nil, hf.AfterLocation)
	if err != nil {
		return 0, err
	}
	fiber.popFrame()
	fiber.pushFrame(newFrame)
	return hf.AfterClosure.CodeOffset, nil
}

// execEscape implements ESCAPE id, h.
func (vm *VM) execEscape(fiber *ObjFiber, handleID, handlerIdx int) (int, error) {
	depth, hf, err := findFreeHandler(fiber, handleID)
	if err != nil {
		return 0, err
	}
	if handlerIdx < 0 || handlerIdx >= len(hf.Handlers) {
		return 0, fatalf(OpEscape, fiber.IP, "ESCAPE handler index %d out of range", handlerIdx)
	}
	handler := hf.Handlers[handlerIdx]

	switch handler.Limit {
	case ResumeNone:
		newFrame, err := buildClosureCallFrame(vm, fiber, handler, &hf.VarFrame, nil, hf.AfterLocation)
		if err != nil {
			return 0, err
		}
		fiber.Values = fiber.Values[:0]
		fiber.truncateFrames(fiber.frameCount() - depth - 1)
		fiber.pushFrame(newFrame)
		return handler.CodeOffset, nil

	case ResumeOnceTail:
		if len(hf.VarFrame.Slots) == 0 {
			newFrame, err := buildClosureCallFrame(vm, fiber, handler, &hf.VarFrame, nil, hf.AfterLocation)
			if err != nil {
				return 0, err
			}
			fiber.pushFrame(newFrame)
			return handler.CodeOffset, nil
		}
		fallthrough

	default:
		return vm.captureAndReact(fiber, depth, hf, handler)
	}
}

// execReact implements REACT id, h: always captures a continuation, even
// where ESCAPE might have degenerated to a plain call.
func (vm *VM) execReact(fiber *ObjFiber, handleID, handlerIdx int) (int, error) {
	depth, hf, err := findFreeHandler(fiber, handleID)
	if err != nil {
		return 0, err
	}
	if handlerIdx < 0 || handlerIdx >= len(hf.Handlers) {
		return 0, fatalf(OpReact, fiber.IP, "REACT handler index %d out of range", handlerIdx)
	}
	handler := hf.Handlers[handlerIdx]
	return vm.captureAndReact(fiber, depth, hf, handler)
}

// captureAndReact is the shared "snapshot a continuation" path used by
// REACT unconditionally and by ESCAPE whenever the handler's resumption
// limit requires one. The saved value count is VALUE_COUNT() -
// handler.paramCount, i.e. everything below the operation's own arguments.
func (vm *VM) captureAndReact(fiber *ObjFiber, depth int, hf *HandleFrame, handler *ObjClosure) (int, error) {
	frameCount := depth + 1
	savedStackCount := fiber.valueCount() - handler.ParamCount
	if savedStackCount < 0 {
		return 0, fatalf(OpReact, fiber.IP, "not enough values on the stack for handler operation arguments")
	}

	savedStack := make([]Value, savedStackCount)
	copy(savedStack, fiber.Values[:savedStackCount])

	savedFrames := make([]Obj, frameCount)
	for i := 0; i < frameCount; i++ {
		savedFrames[i] = fiber.peekFrame(frameCount - 1 - i)
	}

	cont := newContinuation(vm.heap, fiber.IP, len(hf.VarFrame.Slots), savedStack, savedFrames)

	fiber.pushRoot(ObjVal(cont))
	newFrame, err := buildClosureCallFrame(vm, fiber, handler, &hf.VarFrame, cont, hf.AfterLocation)
	fiber.popRoot()
	if err != nil {
		return 0, err
	}

	fiber.Values = fiber.Values[:0]
	fiber.truncateFrames(fiber.frameCount() - frameCount)
	fiber.pushFrame(newFrame)
	return handler.CodeOffset, nil
}

// resumeContinuation implements the shared core of CALL_CONTINUATION and
// TAILCALL_CONTINUATION: rebuild the saved HandleFrame with
// fresh handle-parameters read off the stack, splice the saved value slice
// underneath any resumer-supplied return values, push the rebuilt handle
// frame then the rest of the saved frames, and jump to resumeLocation.
// afterLocation is the current ip for the non-tail call, or the popped call
// frame's AfterLocation for the tail call.
func (vm *VM) resumeContinuation(fiber *ObjFiber, cont *ObjContinuation, afterLocation int) (int, error) {
	if len(cont.SavedFrames) == 0 {
		return 0, fatalf(OpCallContinuation, fiber.IP, "continuation has no saved frames")
	}
	mark, ok := asHandleFrame(cont.SavedFrames[0])
	if !ok {
		return 0, fatalf(OpCallContinuation, fiber.IP, "continuation's bottom saved frame is not a handle frame")
	}
	if fiber.valueCount() <= len(mark.VarFrame.Slots) {
		return 0, fatalf(OpCallContinuation, fiber.IP, "not enough values on the stack to resume continuation")
	}

	params := make([]Value, len(mark.VarFrame.Slots))
	for i := range params {
		params[i] = fiber.pop()
	}
	updated := newHandleFrame(vm.heap, params, afterLocation, mark.HandleID, mark.AfterClosure, mark.Handlers)
	updated.Nesting = mark.Nesting

	remaining := make([]Value, fiber.valueCount())
	copy(remaining, fiber.Values)
	fiber.Values = fiber.Values[:0]
	fiber.Values = append(fiber.Values, cont.SavedStack...)
	fiber.Values = append(fiber.Values, remaining...)

	fiber.pushFrame(updated)
	for _, fr := range cont.SavedFrames[1:] {
		fiber.pushFrame(fr)
	}

	return cont.ResumeLocation, nil
}
