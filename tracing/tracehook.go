package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/propriosim/sim"
)

// CollectTrace let the tracer to collect trace from a domain
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// A traceHook forwards the records to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTransaction:
		h.t.TraceTransaction(ctx.Item.(TransactionRecord))
	case HookPosSync:
		h.t.TraceSync(ctx.Item.(SyncRecord))
	case HookPosMemAccess:
		h.t.TraceMemAccess(ctx.Item.(MemAccessRecord))
	case HookPosError:
		h.t.TraceError(ctx.Item.(ErrorRecord))
	}
}
