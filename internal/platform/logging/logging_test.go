package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"visit-planner-service/internal/platform/obs"
)

func TestTimeLogsFailuresWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("production", &buf)

	ctx := obs.WithRequestID(context.Background(), "req-1")
	err := errors.New("boom")
	obs.Time(ctx, "services.Plan")(&err)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["op"] != "services.Plan" || line["req_id"] != "req-1" || line["error"] != "boom" {
		t.Fatalf("unexpected log line %v", line)
	}
	if line["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", line["level"])
	}
}

func TestProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("production", &buf)

	var err error
	obs.Time(context.Background(), "quiet")(&err)

	if buf.Len() != 0 {
		t.Fatalf("expected no output at info level, got %q", buf.String())
	}
}
