package jsonenv

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
)

func sampleProvenance() *Provenance {
	return &Provenance{Entries: []EntryProvenance{
		{Key: "CONFIG2_CONFIG_3", LocalKey: "config_3", Value: "c", File: "/cfg/config2.json"},
		{Key: "CONFIG1_CONFIG_1", LocalKey: "config_1", Value: "a", File: "/cfg/config1.json"},
		{Key: "CONFIG1_PASSWORD", LocalKey: "password", Value: "hunter2", File: "/cfg/config1.json"},
		{Key: "CONFIG1_ZIP", LocalKey: "zip", Value: "007", File: "/cfg/config1.json"},
	}}
}

func TestDump_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleProvenance()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	expected := `CONFIG1_CONFIG_1="a"
CONFIG1_PASSWORD="hunter2"
CONFIG1_ZIP="007"
CONFIG2_CONFIG_3="c"
`
	if buf.String() != expected {
		t.Errorf("unexpected output:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestDump_WithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleProvenance(), WithSources()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != `CONFIG1_CONFIG_1="a" # /cfg/config1.json` {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if lines[3] != `CONFIG2_CONFIG_3="c" # /cfg/config2.json` {
		t.Errorf("unexpected last line: %s", lines[3])
	}
}

func TestDump_QuotesSpecialCharacters(t *testing.T) {
	prov := &Provenance{Entries: []EntryProvenance{
		{Key: "MULTI", Value: "line one\nline \"two\""},
	}}

	var buf bytes.Buffer
	if err := Dump(&buf, prov); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	expected := `MULTI="line one\nline \"two\""` + "\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestDump_LastWriteWins(t *testing.T) {
	prov := &Provenance{Entries: []EntryProvenance{
		{Key: "SHARED", Value: "first", File: "/cfg/a.json"},
		{Key: "SHARED", Value: "second", File: "/cfg/b.json"},
	}}

	var buf bytes.Buffer
	if err := Dump(&buf, prov, WithSources()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	expected := `SHARED="second" # /cfg/b.json` + "\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestDump_Redact(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleProvenance(), WithRedact(regexp.MustCompile("PASSWORD"))); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "hunter2") {
		t.Error("redacted value should not appear in output")
	}
	if !strings.Contains(output, `CONFIG1_PASSWORD="***redacted***"`) {
		t.Errorf("expected redacted line, got:\n%s", output)
	}
	if !strings.Contains(output, `CONFIG1_CONFIG_1="a"`) {
		t.Error("other values should be left alone")
	}
}

func TestDump_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleProvenance(), AsJSON()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if result["CONFIG1_ZIP"] != "007" {
		t.Errorf("expected CONFIG1_ZIP=007, got %q", result["CONFIG1_ZIP"])
	}
	if len(result) != 4 {
		t.Errorf("expected 4 keys, got %d", len(result))
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("JSON output should end with a newline")
	}
}

func TestDump_JSONWithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleProvenance(), AsJSON(), WithSources()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var result map[string]jsonEntry
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	entry := result["CONFIG2_CONFIG_3"]
	if entry.Value != "c" || entry.File != "/cfg/config2.json" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestDump_WithIndent(t *testing.T) {
	prov := &Provenance{Entries: []EntryProvenance{{Key: "A", Value: "1"}}}

	tests := []struct {
		name     string
		indent   string
		expected string
	}{
		{name: "default", indent: "  ", expected: "{\n  \"A\": \"1\"\n}\n"},
		{name: "tabs", indent: "\t", expected: "{\n\t\"A\": \"1\"\n}\n"},
		{name: "compact", indent: "", expected: "{\"A\":\"1\"}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Dump(&buf, prov, AsJSON(), WithIndent(tt.indent)); err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestDump_NilProvenance(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, nil); err == nil {
		t.Error("expected an error for nil provenance")
	}
}

func TestDump_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, &Provenance{}); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
