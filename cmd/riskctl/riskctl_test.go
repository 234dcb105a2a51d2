package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

// execute runs riskctl against the built-in catalogue.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", "", "--catalog", "embedded:", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"all rows", []string{"stats"}, "Mostrando 7 de 7 riesgos"},
		{"financial", []string{"stats", "--filter", "financial"}, "Mostrando 3 de 7 riesgos"},
		{"unknown category", []string{"stats", "--filter", "operational"}, "Mostrando 0 de 7 riesgos"},
		{"no match", []string{"stats", "-q", "zzzz-nothing"}, "Mostrando 0 de 7 riesgos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, "search", "liquidez")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(out), "liquidez") {
		t.Errorf("output = %q, want matching rows", out)
	}
	if strings.Contains(out, "Mostrando 7 de 7") {
		t.Errorf("output = %q, want a narrowed result count", out)
	}
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	if _, err := execute(t, "search"); err == nil {
		t.Fatal("Execute() error = nil, want missing argument error")
	}
}

func TestSortCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr string
	}{
		{"not a number", "abc", "column must be a number"},
		{"out of range", "99", "ARG001"},
		{"negative", "-1", "ARG001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "sort", "--", tt.arg)
			if err == nil {
				t.Fatal("Execute() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	out, err := execute(t, "export", "-o", "-")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(records) != 8 {
		t.Errorf("got %d records, want header plus 7 rows", len(records))
	}
	if !strings.HasPrefix(strings.TrimPrefix(out, "\ufeff"), `"`) {
		t.Errorf("output = %q, want quoted fields", out[:min(len(out), 40)])
	}
}

func TestExportCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if _, err := execute(t, "export", "-o", path, "--sort", "0"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("export file is empty")
	}
}

func TestSeedCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "risks.db")
	out, err := execute(t, "seed", "--sqlite", db)
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}
	if !strings.Contains(out, "seeded 7 rows") {
		t.Errorf("output = %q", out)
	}

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", "", "--catalog", "sqlite:" + db, "stats"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("stats from sqlite error = %v", err)
	}
	if !strings.Contains(buf.String(), "Mostrando 7 de 7 riesgos") {
		t.Errorf("stats from sqlite = %q", buf.String())
	}
}

func TestUnsupportedCatalog(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", "", "--catalog", "ftp://nowhere", "stats"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() error = nil, want unsupported source error")
	}
}
