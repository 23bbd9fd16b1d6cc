package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitializeSilentWithoutLevel(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger when no level is configured")
	}
}

func TestInitializeFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	defer SetLogger(nil)

	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !GetLogger().Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestInitializeWithFileWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greelink.log")
	if err := InitializeWithFile("info", FileConfig{Filename: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("InitializeWithFile() error = %v", err)
	}
	defer SetLogger(nil)

	Info("device bound", zap.String("device_id", "a1b2"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"device_id":"a1b2"`) {
		t.Errorf("log file missing entry, got %q", data)
	}
}

func TestInitializeFileOnly(t *testing.T) {
	defer SetLogger(nil)

	if err := InitializeFileOnly("debug", FileConfig{}); err != nil {
		t.Fatalf("InitializeFileOnly() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without file should be silent")
	}

	path := filepath.Join(t.TempDir(), "dashboard.log")
	if err := InitializeFileOnly("debug", FileConfig{Filename: path}); err != nil {
		t.Fatalf("InitializeFileOnly() error = %v", err)
	}
	Debug("redraw")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "redraw") {
		t.Errorf("log file missing entry, got %q", data)
	}
}

func TestLogPacket(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogPacket("sent", "10.0.0.5:7000", []byte("{\"t\":\"scan\"}\n"))

	entries := logs.FilterMessage("Packet sent").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["addr"] != "10.0.0.5:7000" {
		t.Errorf("addr = %v, want 10.0.0.5:7000", fields["addr"])
	}
	if fields["content"] != `{"t":"scan"}.` {
		t.Errorf("content = %v", fields["content"])
	}
}

func TestLogPacketSkippedAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogPacket("received", "10.0.0.5:7000", []byte("x"))
	if logs.Len() != 0 {
		t.Errorf("got %d entries, want 0", logs.Len())
	}
}

func TestDumps(t *testing.T) {
	if got := hexDump([]byte{0x01, 0xab}); got != "01ab" {
		t.Errorf("hexDump() = %q, want 01ab", got)
	}
	if got := asciiDump([]byte{'o', 'k', 0x00}); got != "ok." {
		t.Errorf("asciiDump() = %q, want ok.", got)
	}
	long := make([]byte, 300)
	if got := hexDump(long); !strings.HasSuffix(got, "...") || len(got) != 512+3 {
		t.Errorf("hexDump() did not truncate, len = %d", len(got))
	}
}

func TestPionFactory(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	l := PionFactory().NewLogger("vnet")
	l.Infof("router %s started", "10.0.0.0/24")
	l.Tracef("ignored detail %d", 1)

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("got %d entries, want 2", len(all))
	}
	if all[0].Message != "router 10.0.0.0/24 started" {
		t.Errorf("message = %q", all[0].Message)
	}
	if all[0].ContextMap()["scope"] != "vnet" {
		t.Errorf("scope = %v, want vnet", all[0].ContextMap()["scope"])
	}
	if all[1].Level != zapcore.DebugLevel {
		t.Errorf("trace level = %v, want debug", all[1].Level)
	}
}
