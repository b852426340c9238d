package testutil

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"testing"
)

func TestLogger(t *testing.T) *log.Logger {
	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
	})
	return logger
}

// JSONBody marshals v into a buffer suitable for httptest request bodies.
func JSONBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	return bytes.NewBuffer(body)
}
