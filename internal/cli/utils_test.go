package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kensa/internal/models"
)

var testRecords = []models.GradeRecord{
	{Grade: "81.25", File: "backend.pdf", ID: "sha256:0123456789abcdef0123"},
	{Grade: "7.50", File: "design.docx", ID: "sha256:fedcba"},
}

func TestWriteGrades_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrades(&buf, testRecords, OutputJSON); err != nil {
		t.Fatalf("WriteGrades(json): %v", err)
	}
	var decoded []models.GradeRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[0] != testRecords[0] {
		t.Errorf("decoded %+v", decoded)
	}
	if !strings.Contains(buf.String(), `"grade": "81.25"`) {
		t.Errorf("grade should be a string field: %s", buf.String())
	}
}

func TestWriteGrades_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrades(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestWriteGrades_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrades(&buf, testRecords, OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "81.25\tbackend.pdf\n7.50\tdesign.docx\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteGrades_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrades(&buf, testRecords, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"GRADE", "81.25", "backend.pdf", "sha256:0123456789ab", "sha256:fedcba"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef0123") {
		t.Error("long IDs should be shortened")
	}

	buf.Reset()
	if err := WriteGrades(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No resumes graded") {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{" compact ", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
