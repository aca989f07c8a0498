package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewPrefixesComponentName(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, "kenerctl")
	logger.Printf("reconcile complete")

	line := buf.String()
	if !strings.HasPrefix(line, "kenerctl ") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "reconcile complete") {
		t.Fatalf("expected message in output, got %q", line)
	}
}
