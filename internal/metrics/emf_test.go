package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

// captureOutput routes EMF output into a buffer for the duration of a test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	return &buf
}

func TestNew_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "TestFunction"
	defer func() { functionName = "" }()

	r := New("TestNamespace")
	if r.namespace != "TestNamespace" {
		t.Errorf("expected namespace TestNamespace, got %s", r.namespace)
	}
	if r.dimensions["FunctionName"] != "TestFunction" {
		t.Errorf("expected FunctionName dimension TestFunction, got %s", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""
	buf := captureOutput(t)

	New(Namespace).
		Dimension("Outcome", "Success").
		Metric("EditLatencyMs", 1234.5, UnitMilliseconds).
		Count("EditResult").
		Property("sessionId", "abc-123").
		Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}

	if doc["Outcome"] != "Success" {
		t.Errorf("expected Outcome=Success, got %v", doc["Outcome"])
	}
	if doc["EditLatencyMs"] != 1234.5 {
		t.Errorf("expected EditLatencyMs=1234.5, got %v", doc["EditLatencyMs"])
	}
	if doc["EditResult"] != float64(1) {
		t.Errorf("expected EditResult=1, got %v", doc["EditResult"])
	}
	if doc["sessionId"] != "abc-123" {
		t.Errorf("expected sessionId=abc-123, got %v", doc["sessionId"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	buf := captureOutput(t)
	New("Test").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestRecorder_DefaultOutputOutsideLambda(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""
	SetOutput(nil)
	if w := currentOutput(); w == nil {
		t.Fatal("currentOutput returned nil")
	}
	// Must not panic or write to stdout.
	New("Test").Count("X").Flush()
}

func TestRecorder_Count(t *testing.T) {
	functionName = ""
	rec := New("Test")
	rec.Count("Errors")

	if v, ok := rec.values["Errors"]; !ok || v != float64(1) {
		t.Errorf("expected Errors=1, got %v", v)
	}
	if m, ok := rec.metrics["Errors"]; !ok || m.Unit != UnitCount {
		t.Errorf("expected unit Count, got %v", m.Unit)
	}
}

func TestRecorder_Chaining(t *testing.T) {
	functionName = ""
	rec := New("Test").
		Dimension("Op", "test").
		Duration("Duration", 100*time.Millisecond).
		Count("Calls").
		Property("id", "xyz")

	if rec.dimensions["Op"] != "test" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["Duration"] != float64(100) {
		t.Error("chaining Duration failed")
	}
	if rec.metrics["Duration"].Unit != UnitMilliseconds {
		t.Error("Duration should use milliseconds")
	}
	if rec.values["Calls"] != float64(1) {
		t.Error("chaining Count failed")
	}
	if rec.properties["id"] != "xyz" {
		t.Error("chaining Property failed")
	}
}

func TestEdit(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""
	buf := captureOutput(t)

	Edit("SafetyBlocked", 2*time.Second)

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["Outcome"] != "SafetyBlocked" {
		t.Errorf("Outcome = %v", doc["Outcome"])
	}
	if doc["EditLatencyMs"] != float64(2000) || doc["EditResult"] != float64(1) {
		t.Errorf("metrics = %v / %v", doc["EditLatencyMs"], doc["EditResult"])
	}
}
