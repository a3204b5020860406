package cli

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		logger := SetupLogger(tt.level)
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("SetupLogger(%q) should enable %v", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-4) {
			t.Errorf("SetupLogger(%q) should not enable %v", tt.level, tt.want-4)
		}
	}
	SetupLogger("info")
}
