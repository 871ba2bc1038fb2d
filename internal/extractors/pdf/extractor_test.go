package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectTable(t *testing.T) {
	t.Run("aligned columns", func(t *testing.T) {
		text := "Quarterly results\n" +
			"Year  Revenue  Margin\n" +
			"2022  46.4     5.6%\n" +
			"2023  52.4     7.9%\n" +
			"Commentary follows here."

		table := detectTable(text)
		if table.Empty() {
			t.Fatal("expected a table")
		}
		if !table.Header {
			t.Error("expected first row to be the header")
		}
		if len(table.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(table.Rows))
		}
		if table.Rows[0][0] != "Year" || table.Rows[0][2] != "Margin" {
			t.Errorf("unexpected header row: %v", table.Rows[0])
		}
		if table.Rows[1][1] != "46.4" {
			t.Errorf("unexpected cell: %v", table.Rows[1])
		}
	})

	t.Run("prose only", func(t *testing.T) {
		text := "This page contains only running prose.\nNothing resembles a table here."
		if table := detectTable(text); !table.Empty() {
			t.Errorf("expected no table, got %d rows", len(table.Rows))
		}
	})

	t.Run("single aligned line is not a table", func(t *testing.T) {
		text := "Header line\nYear  Revenue\nplain prose again\nmore prose"
		if table := detectTable(text); !table.Empty() {
			t.Errorf("expected no table, got %d rows", len(table.Rows))
		}
	})

	t.Run("empty text", func(t *testing.T) {
		if table := detectTable(""); !table.Empty() {
			t.Error("expected no table for empty text")
		}
	})
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"/data/pdfs/Annual Report 2023.pdf": "annual_report_2023",
		"simple.pdf":                        "simple",
		"UPPER CASE.PDF":                    "upper_case",
	}
	for in, want := range cases {
		if got := stem(in); got != want {
			t.Errorf("stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtract_MissingFile(t *testing.T) {
	e := New(t.TempDir())
	text, tables, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if text != "" || len(tables) != 0 {
		t.Errorf("expected empty result, got %q and %d tables", text, len(tables))
	}
}

func TestExtract_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0600); err != nil {
		t.Fatal(err)
	}

	e := New(dir)
	text, tables, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("corrupt file should not error, got %v", err)
	}
	if text != "" || len(tables) != 0 {
		t.Errorf("expected empty result, got %q and %d tables", text, len(tables))
	}
}
