package main

import "testing"

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}

	want := config{
		width: 800, height: 600,
		tileSize: 64, maxTiles: 256,
		async:    true,
		output:   "demo.png",
		maskPath: "demo-mask.png",
	}
	if cfg != want {
		t.Fatalf("parseConfig(nil) = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	args := []string{
		"-width", "320",
		"-height", "240",
		"-tile-size", "32",
		"-max-tiles", "-1",
		"-async=false",
		"-output", "out.png",
		"-mask", "out-mask.png",
	}

	cfg, err := parseConfig(args)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}

	want := config{
		width: 320, height: 240,
		tileSize: 32, maxTiles: -1,
		async:    false,
		output:   "out.png",
		maskPath: "out-mask.png",
	}
	if cfg != want {
		t.Fatalf("parseConfig(%v) = %+v, want %+v", args, cfg, want)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	if _, err := parseConfig([]string{"-not-a-flag", "1"}); err == nil {
		t.Fatal("parseConfig with an unknown flag returned nil error")
	}
}

func TestParseConfigRejectsMalformedValue(t *testing.T) {
	if _, err := parseConfig([]string{"-width", "not-a-number"}); err == nil {
		t.Fatal("parseConfig with a non-integer -width returned nil error")
	}
}
