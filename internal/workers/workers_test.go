package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	// Save and restore original environment
	originalEnv := os.Getenv("TRANSCODE_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("TRANSCODE_WORKERS", originalEnv)
		} else {
			os.Unsetenv("TRANSCODE_WORKERS")
		}
	}()

	// Clear any existing override
	os.Unsetenv("TRANSCODE_WORKERS")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier floors at 1",
			multiplier: 0.0001,
			limit:      0,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountEnvironmentOverride(t *testing.T) {
	originalEnv := os.Getenv("TRANSCODE_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("TRANSCODE_WORKERS", originalEnv)
		} else {
			os.Unsetenv("TRANSCODE_WORKERS")
		}
	}()

	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
	}{
		{
			name:     "Override respected",
			envValue: "7",
			limit:    0,
			expected: 7,
		},
		{
			name:     "Override capped by limit",
			envValue: "100",
			limit:    4,
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TRANSCODE_WORKERS", tt.envValue)
			got := Count(1.0, tt.limit)
			if got != tt.expected {
				t.Errorf("Count() with override %q = %d, expected %d", tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestCountInvalidOverrideIgnored(t *testing.T) {
	originalEnv := os.Getenv("TRANSCODE_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("TRANSCODE_WORKERS", originalEnv)
		} else {
			os.Unsetenv("TRANSCODE_WORKERS")
		}
	}()

	for _, bad := range []string{"abc", "-3", "0"} {
		os.Setenv("TRANSCODE_WORKERS", bad)
		got := Count(1.0, 0)
		if got < 1 {
			t.Errorf("Count() with override %q = %d, expected fallback >= 1", bad, got)
		}
	}
}

func TestForCPU(t *testing.T) {
	os.Unsetenv("TRANSCODE_WORKERS")

	if got := ForCPU(0); got < 1 {
		t.Errorf("ForCPU() = %d, expected >= 1", got)
	}
	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, expected limit to cap at 1", got)
	}
}
