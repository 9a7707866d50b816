package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	limits, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limits.MaxExpressionDepth != DefaultMaxExpressionDepth {
		t.Errorf("expected default depth, got %d", limits.MaxExpressionDepth)
	}
	if limits.EvaluationTimeout != 0 {
		t.Errorf("expected no timeout by default, got %v", limits.EvaluationTimeout)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	if err := os.WriteFile(path, []byte("max_expression_depth: 50\nevaluation_timeout: 2s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	limits, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limits.MaxExpressionDepth != 50 {
		t.Errorf("expected depth 50, got %d", limits.MaxExpressionDepth)
	}
	if limits.EvaluationTimeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", limits.EvaluationTimeout)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("max_expression_depth: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
