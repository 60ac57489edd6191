package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("MDSLIDE_TEST_NAME", "deck")
	path := writeFile(t, "name: ${MDSLIDE_TEST_NAME}\nport: 9000\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "deck" || s.Port != 9000 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unclosed\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 8000}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if read {
		t.Error("read = true for a missing file")
	}
	if s.Name != "default" || s.Port != 8000 {
		t.Errorf("defaults changed: %+v", s)
	}
}

func TestLoadOptional_OverridesDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 8000}
	read, err := LoadOptional(writeFile(t, "port: 9001\n"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !read {
		t.Error("read = false for an existing file")
	}
	if s.Name != "default" || s.Port != 9001 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadOptional_ValidatesDefaults(t *testing.T) {
	s := sample{}
	if _, err := LoadOptional("", &s); err == nil {
		t.Fatal("expected validation error for invalid defaults")
	}
}
