package telemetry

import (
	"testing"
	"time"
)

func TestObserveBeforeInitDoesNotPanic(t *testing.T) {
	ObserveScan(time.Millisecond, "ok")
	ObserveQuery(time.Millisecond, "ok")
	ObserveContext(time.Millisecond)
	RecordCacheHit()
	RecordCacheMiss()
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	ObserveScan(time.Millisecond, "ok")
}
