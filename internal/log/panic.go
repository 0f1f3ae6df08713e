package log

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// maxPanicFrames bounds the stack recorded for a recovered panic.
const maxPanicFrames = 32

// Panic records a recovered value under "panic" with its Go type and the
// stack of the panicking goroutine. It must be called from the deferred
// function that recovered, while the panicking frames are still on the stack.
func Panic(recovered any) func(e *zerolog.Event) {
	stack := panicStack()
	return func(e *zerolog.Event) {
		e.Dict("panic", zerolog.Dict().
			Str("type", fmt.Sprintf("%T", recovered)).
			Interface("value", recovered).
			Strs("stack", stack))
	}
}

// panicStack lists "function file:line" entries, skipping runtime frames
// such as gopanic and the deferred call machinery.
func panicStack() []string {
	pcs := make([]uintptr, maxPanicFrames)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			stack = append(stack, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return stack
}
