package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordForm("sent", "COMMAND")
	RecordForm("received", "RETURN")
	RecordCommand("echo", "ok", 3*time.Millisecond)
	RecordCommand("echo", "error", 5*time.Millisecond)
}
