package config

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("unable to load default configuration: %v", err)
	}
	if cfg.Version != currentVersion {
		t.Fatalf("unexpected version %d", cfg.Version)
	}
	if cfg.Conversion.OutputNameTemplate == "" {
		t.Fatal("default output name template must not be empty")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Fatalf("unexpected console level %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfigurationOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aacc.yaml")
	content := `version: 1
conversion:
  output_name_template: "{{.Name}}-{{.Format}}"
  overwrite: true
logging:
  console:
    level: debug
  file:
    level: none
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write config: %v", err)
	}
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("unable to load configuration: %v", err)
	}
	if !cfg.Conversion.Overwrite {
		t.Fatal("overwrite flag not picked up")
	}
	if cfg.Conversion.OutputNameTemplate != "{{.Name}}-{{.Format}}" {
		t.Fatalf("unexpected template %q", cfg.Conversion.OutputNameTemplate)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Fatalf("unexpected console level %q", cfg.Logging.ConsoleLogger.Level)
	}
	// values absent from the file keep their defaults
	if cfg.Reporting.Destination == "" {
		t.Fatal("reporting destination default lost")
	}
}

func TestLoadConfigurationRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aacc.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nno_such_key: true\n"), 0644); err != nil {
		t.Fatalf("unable to write config: %v", err)
	}
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for unknown configuration key")
	}
}

func TestLoadConfigurationRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aacc.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nlogging:\n  console:\n    level: loud\n"), 0644); err != nil {
		t.Fatalf("unable to write config: %v", err)
	}
	if _, err := LoadConfiguration(path); err == nil || !strings.Contains(err.Error(), "logging level") {
		t.Fatalf("expected logging level error, got %v", err)
	}
}

func TestDumpRoundTrips(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("unable to load default configuration: %v", err)
	}
	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("unable to dump configuration: %v", err)
	}
	got, err := unmarshalConfig(data, defaultConfig())
	if err != nil {
		t.Fatalf("dumped configuration does not parse: %v", err)
	}
	if got.Conversion.OutputNameTemplate != cfg.Conversion.OutputNameTemplate {
		t.Fatal("dump lost conversion settings")
	}
}

func TestReportPacksStoredEntries(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatalf("unable to write input: %v", err)
	}

	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("unable to prepare report: %v", err)
	}
	rpt.Store("input.txt", src)
	rpt.StoreData("config.yaml", []byte("version: 1"))
	rpt.Store("gone.log", filepath.Join(dir, "never-existed.log"))
	if err := rpt.Close(); err != nil {
		t.Fatalf("unable to finalize report: %v", err)
	}

	data, err := os.ReadFile(conf.Destination)
	if err != nil {
		t.Fatalf("unable to read report: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("report is not a valid archive: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["input.txt"] || !names["config.yaml"] {
		t.Fatalf("report is missing entries: %v", names)
	}
	if names["gone.log"] {
		t.Fatal("missing files must be skipped, not packed")
	}
}

func TestNilReportIgnoresCalls(t *testing.T) {
	var rpt *Report
	rpt.Store("a", "b")
	rpt.StoreData("c", []byte("d"))
	if rpt.Name() != "" {
		t.Fatal("nil report should have no name")
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("nil report close failed: %v", err)
	}
}
