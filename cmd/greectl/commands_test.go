package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/muurk/greelink/internal/config"
	"github.com/muurk/greelink/internal/protocol"
	"github.com/muurk/greelink/internal/session"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCodes  []string
		wantValues []int
		wantErr    bool
	}{
		{
			name:       "single switch",
			args:       []string{"power", "on"},
			wantCodes:  []string{"Pow"},
			wantValues: []int{1},
		},
		{
			name:       "enum and number",
			args:       []string{"mode", "cool", "temperature", "24"},
			wantCodes:  []string{"Mod", "SetTem"},
			wantValues: []int{1, 24},
		},
		{
			name:       "unit moved before temperature",
			args:       []string{"temperature", "75", "temperatureUnit", "fahrenheit"},
			wantCodes:  []string{"TemUn", "SetTem"},
			wantValues: []int{1, 75},
		},
		{
			name:    "unknown setting",
			args:    []string{"colour", "blue"},
			wantErr: true,
		},
		{
			name:    "bad value",
			args:    []string{"temperature", "warm"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, values, err := parsePairs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePairs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if strings.Join(codes, ",") != strings.Join(tt.wantCodes, ",") {
				t.Errorf("parsePairs() codes = %v, want %v", codes, tt.wantCodes)
			}
			for i := range tt.wantValues {
				if values[i] != tt.wantValues[i] {
					t.Errorf("parsePairs() values = %v, want %v", values, tt.wantValues)
					break
				}
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	p := session.Properties{"SetTem": 24, "Pow": 1, "Zz": "x", "Aa": 2}
	want := "power=1 temperature=24 Aa=2 Zz=x"
	if got := formatCompact(p); got != want {
		t.Errorf("formatCompact() = %q, want %q", got, want)
	}
}

func TestDiffProperties(t *testing.T) {
	prev := session.Properties{"Pow": 1, "SetTem": 24}

	if got := diffProperties(prev, session.Properties{"Pow": 1, "SetTem": 24}); got != "" {
		t.Errorf("diffProperties() of equal maps = %q, want empty", got)
	}
	if got := diffProperties(prev, session.Properties{"Pow": 1, "SetTem": 26}); got != "temperature=26" {
		t.Errorf("diffProperties() = %q, want temperature=26", got)
	}
	if got := diffProperties(nil, session.Properties{"Pow": 0}); got != "power=0" {
		t.Errorf("diffProperties() from nil = %q, want power=0", got)
	}
}

func TestFormatStatus(t *testing.T) {
	info := session.DeviceInfo{ID: "A1B2", Name: "AC1", Host: "10.0.0.5", Port: 7000, Version: protocol.V2}
	p := session.Properties{"Pow": 1, "SetTem": 24}

	detailed, err := formatStatus(info, p, "detailed")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"AC1 (A1B2)", "Address:  10.0.0.5:7000", "Protocol: v2", "power", "temperature"} {
		if !strings.Contains(detailed, want) {
			t.Errorf("detailed output missing %q:\n%s", want, detailed)
		}
	}

	out, err := formatStatus(info, p, "json")
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		ID         string         `json:"id"`
		Address    string         `json:"address"`
		Version    int            `json:"version"`
		Properties map[string]int `json:"properties"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if decoded.ID != "A1B2" || decoded.Address != "10.0.0.5:7000" || decoded.Version != 2 || decoded.Properties["SetTem"] != 24 {
		t.Errorf("json output = %+v", decoded)
	}

	compact, _ := formatStatus(info, p, "compact")
	if compact != "power=1 temperature=24" {
		t.Errorf("compact output = %q", compact)
	}

	panel, _ := formatStatus(info, p, "panel")
	for _, want := range []string{"AC1", "A1B2", "10.0.0.5:7000", "power", "on"} {
		if !strings.Contains(panel, want) {
			t.Errorf("panel output missing %q:\n%s", want, panel)
		}
	}

	// go test does not run with a terminal on stdout
	auto, _ := formatStatus(info, p, "auto")
	if auto != detailed {
		t.Errorf("auto output = %q, want detailed", auto)
	}
}

func TestAdvertiseFeedRejectsBadAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.Listen = "8765"
	if _, err := advertiseFeed(cfg); err == nil {
		t.Error("advertiseFeed() with a listen address without port should fail")
	}
}
