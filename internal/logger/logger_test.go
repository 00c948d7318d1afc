package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// testLogger returns a Logger writing JSON into buf.
func testLogger(buf *bytes.Buffer) *Logger {
	return &Logger{
		zlog: zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	return entry
}

func TestNew(t *testing.T) {
	if New("development") == nil {
		t.Fatal("Expected development logger to be created")
	}
	if New("production") == nil {
		t.Fatal("Expected production logger to be created")
	}
}

func TestInfo_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := testLogger(&buf)

	log.Info("Resolved tenancy", map[string]interface{}{
		"tenancy_id": 501,
	})

	entry := decodeLine(t, &buf)
	if entry["message"] != "Resolved tenancy" {
		t.Errorf("Unexpected message: %v", entry["message"])
	}
	if entry["tenancy_id"] != float64(501) {
		t.Errorf("Expected tenancy_id field, got %v", entry["tenancy_id"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected info level, got %v", entry["level"])
	}
}

func TestError_CarriesError(t *testing.T) {
	var buf bytes.Buffer
	log := testLogger(&buf)

	log.Error("Directory request failed", errors.New("connection refused"), nil)

	entry := decodeLine(t, &buf)
	if entry["error"] != "connection refused" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("Expected error level, got %v", entry["level"])
	}
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := testLogger(&buf).WithRequestID("req-123")

	log.Warn("Ticket has no tenancy reference", nil)

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("Expected request_id on child logger, got %v", entry["request_id"])
	}
}
