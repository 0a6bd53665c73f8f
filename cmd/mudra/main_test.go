package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDashboardURL(t *testing.T) {
	tests := []struct {
		addr, want string
	}{
		{":5001", "http://localhost:5001"},
		{"0.0.0.0:8080", "http://localhost:8080"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"[::]:7000", "http://localhost:7000"},
	}

	for _, tt := range tests {
		if got := dashboardURL(tt.addr); got != tt.want {
			t.Errorf("dashboardURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFindWebDir_DataDir(t *testing.T) {
	dataDir := t.TempDir()
	webDir := filepath.Join(dataDir, "web")
	if err := os.Mkdir(webDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Chdir(t.TempDir())
	if got := findWebDir(dataDir); got != webDir {
		t.Errorf("findWebDir() = %q, want %q", got, webDir)
	}
}
