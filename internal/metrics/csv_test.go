package metrics

import (
	"strings"
	"testing"
)

func TestCsvWriterBasicRowsAndFooter(t *testing.T) {
	w := NewCsvWriter(3)
	w.SetRunUUID("run-123")
	w.SetHeader([]string{"col1", "col2"})

	if err := w.AddRow([]string{"a", "b"}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	if err := w.AddRow([]string{"1", "2"}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	w.FinishWithSummary("ok")

	csv := w.String()
	want := "schema_version,run_uuid,col1,col2\n" +
		"3,run-123,a,b\n" +
		"3,run-123,1,2\n" +
		"# summary,3,run-123,ok\n"
	if csv != want {
		t.Fatalf("csv = %q, want %q", csv, want)
	}
}

func TestCsvWriterEscaping(t *testing.T) {
	w := NewCsvWriter(1)
	w.SetRunUUID(`u"id`)
	w.SetHeader([]string{"name", "note"})

	if err := w.AddRow([]string{"Doe, John", "he said: \"hi\"\nnext"}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	w.FinishWithSummary("sum, mary")

	csv := w.String()
	if !containsAll(csv,
		"schema_version,run_uuid,name,note\n",
		`1,"u""id","Doe, John","he said: ""hi""`,
		`# summary,1,"u""id","sum, mary"`+"\n",
	) {
		t.Fatalf("csv missing expected escaped fragments: %q", csv)
	}
}

func TestCsvWriterRejectsRowBeforeHeader(t *testing.T) {
	w := NewCsvWriter(1)
	if err := w.AddRow([]string{"x"}); err == nil {
		t.Fatal("AddRow before SetHeader should fail")
	}
}

func TestCsvWriterRejectsMismatchedFieldCount(t *testing.T) {
	w := NewCsvWriter(1)
	w.SetHeader([]string{"a", "b"})
	if err := w.AddRow([]string{"only-one"}); err == nil {
		t.Fatal("AddRow with wrong field count should fail")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
