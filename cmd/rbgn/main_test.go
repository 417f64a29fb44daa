package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name      string
		tty       bool
		wantColor bool
	}{
		{"端末ではない", false, false},
		{"端末", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, errors.New("boom"), tt.tty)

			got := buf.String()
			if !strings.Contains(got, "Error: boom") || !strings.HasSuffix(got, "\n") {
				t.Errorf("unexpected message: %q", got)
			}
			if hasColor := strings.Contains(got, "\x1b[31m"); hasColor != tt.wantColor {
				t.Errorf("color = %v, want %v (%q)", hasColor, tt.wantColor, got)
			}
			if !tt.wantColor && got != "Error: boom\n" {
				t.Errorf("expected plain message, got %q", got)
			}
		})
	}
}
