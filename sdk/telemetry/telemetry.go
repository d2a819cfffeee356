// Package telemetry stamps request contexts with trace ids.
package telemetry

import (
	"context"

	"github.com/jrazmi/yata/sdk/cryptids"
)

type telKey int

const traceIDKey telKey = 1

// NoTrace is reported when a context carries no trace id.
const NoTrace = "--------NOTRACE--------"

// Telemetry generates and reads per-request trace ids.
type Telemetry struct{}

func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID returns a context carrying a fresh trace id.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	tid, err := cryptids.GenerateID()
	if err != nil {
		return context.WithValue(ctx, traceIDKey, NoTrace)
	}
	return context.WithValue(ctx, traceIDKey, tid)
}

func (t Telemetry) GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}

// TraceID reads the trace id without a Telemetry value. It returns "" when
// none is set, which suits logger.WithTraceID.
func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}
