package parser

import (
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"doc.txt", false},
		{"doc.md", false},
		{"doc.MARKDOWN", false},
		{"doc.csv", false},
		{"doc.html", false},
		{"doc.pdf", false},
		{"doc.docx", false},
		{"doc.exe", true},
		{"doc", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("notes.MD") {
		t.Error("uppercase extension should be supported")
	}
	if IsSupportedExtension("binary.bin") {
		t.Error("unknown extension should not be supported")
	}
}

func TestTitleFromFilename(t *testing.T) {
	if got := titleFromFilename("/tmp/uploads/getting-started.md"); got != "getting-started" {
		t.Errorf("titleFromFilename() = %q", got)
	}
}
