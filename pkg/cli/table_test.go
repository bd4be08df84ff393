package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableOutput(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "ID", "ADDRESS", "MGMT")
	table.Row("0", "10.0.0.254 (10.0.0.0/24)", "yes")
	table.Row("1", "10.10.10.1 (10.10.10.0/24)", "-")
	table.Flush()

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, divider and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "--") {
		t.Fatalf("missing divider: %q", lines[1])
	}
}

func TestTableEmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "ID", "NAME")
	table.Flush()
	if buf.Len() != 0 {
		t.Fatalf("empty table should print nothing, got %q", buf.String())
	}
}

func TestFormatHelpers(t *testing.T) {
	if Dash("") != "-" || Dash("x") != "x" {
		t.Fatal("Dash")
	}
	if FormatBool(true) != "yes" || FormatBool(false) != "-" {
		t.Fatal("FormatBool")
	}
	got := FormatAddresses([][2]string{{"10.0.0.1", "10.0.0.0/24"}, {"dhcp", ""}})
	if got != "10.0.0.1 (10.0.0.0/24), dhcp" {
		t.Fatalf("FormatAddresses: %q", got)
	}
	if FormatAddresses(nil) != "-" {
		t.Fatal("FormatAddresses empty")
	}
}
