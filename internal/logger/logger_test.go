package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", "json", ""); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New("info", "xml", ""); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestNew_JSONFieldNames(t *testing.T) {
	l, err := New("debug", "json", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithComponent("api").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "hello" {
		t.Fatalf("expected message field, got %v", entry)
	}
	if entry["component"] != "api" {
		t.Fatalf("expected component field, got %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp field, got %v", entry)
	}
}
