// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
// Package metrics writes run telemetry as CSV, the way std.SnmpLogger in
// the ambient stack rotates delimited log files: one writer per run,
// every row prefixed with a schema version and run id so historical
// files stay parseable after the column set changes.
package metrics

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SchemaVersion is bumped whenever StandardHeader's columns or semantics
// change.
const SchemaVersion = 1

// StandardHeader is the stable column order shared by the sender and
// receiver CSVs, not counting the implicit schema_version/run_uuid prefix.
func StandardHeader() []string {
	return []string{"ts_ms", "app", "event", "ip", "port", "bytes"}
}

// CsvWriter is an in-memory, RFC4180-ish CSV builder. Every data row is
// automatically prefixed with schema_version and run_uuid columns.
type CsvWriter struct {
	schemaVersion int
	runUUID       string
	header        []string
	buf           strings.Builder
}

// NewCsvWriter creates a writer stamped with a fresh run id.
func NewCsvWriter(schemaVersion int) *CsvWriter {
	return &CsvWriter{schemaVersion: schemaVersion, runUUID: uuid.New().String()}
}

// RunUUID reports the run id stamped on every row.
func (w *CsvWriter) RunUUID() string { return w.runUUID }

// SetRunUUID overrides the generated run id, chiefly for deterministic
// tests.
func (w *CsvWriter) SetRunUUID(id string) { w.runUUID = id }

// SetHeader records the data-row column names and writes the header row.
// It panics if called twice, matching the upstream "set once" contract.
func (w *CsvWriter) SetHeader(columns []string) {
	if w.header != nil {
		panic("metrics: SetHeader already called")
	}
	w.header = columns

	hdr := make([]string, 0, 2+len(columns))
	hdr = append(hdr, "schema_version", "run_uuid")
	hdr = append(hdr, columns...)
	appendRowCSV(&w.buf, hdr)
}

// AddRow appends one data row. fields must match the column count passed
// to SetHeader.
func (w *CsvWriter) AddRow(fields []string) error {
	if w.header == nil {
		return errors.New("metrics: SetHeader must be called before AddRow")
	}
	if len(fields) != len(w.header) {
		return errors.Errorf("metrics: got %d fields, header has %d", len(fields), len(w.header))
	}
	row := make([]string, 0, 2+len(fields))
	row = append(row, strconv.Itoa(w.schemaVersion), w.runUUID)
	row = append(row, fields...)
	appendRowCSV(&w.buf, row)
	return nil
}

// FinishWithSummary appends a footer row prefixed "# summary".
func (w *CsvWriter) FinishWithSummary(summary string) {
	row := []string{"# summary", strconv.Itoa(w.schemaVersion), w.runUUID, summary}
	appendRowCSV(&w.buf, row)
}

// String returns the accumulated CSV text.
func (w *CsvWriter) String() string { return w.buf.String() }

// SaveToFile truncates and writes the accumulated CSV text to filepath.
func (w *CsvWriter) SaveToFile(filepath string) error {
	if err := os.WriteFile(filepath, []byte(w.buf.String()), 0666); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func needsQuotes(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}

func appendFieldCSV(out *strings.Builder, field string) {
	if !needsQuotes(field) {
		out.WriteString(field)
		return
	}
	out.WriteByte('"')
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '"' {
			out.WriteByte('"')
		}
		out.WriteByte(c)
	}
	out.WriteByte('"')
}

func appendRowCSV(out *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			out.WriteByte(',')
		}
		appendFieldCSV(out, f)
	}
	out.WriteByte('\n')
}
