package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantError error
	}{
		{"chapter file", "gen.001.json", nil},
		{"book directory", "01_gen", nil},
		{"with spaces", "my exports", nil},
		{"empty", "", ErrInvalidFilename},
		{"dot", ".", ErrInvalidFilename},
		{"dotdot", "..", ErrInvalidFilename},
		{"slash", "NTV/01_gen", ErrInvalidFilename},
		{"backslash", "NTV\\01_gen", ErrInvalidFilename},
		{"null byte", "gen\x00.json", ErrInvalidFilename},
		{"control character", "gen\n.json", ErrInvalidFilename},
		{"leading hyphen", "-NTV", ErrInvalidFilename},
		{"too long", strings.Repeat("a", 256), ErrFilenameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("ValidateFilename() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidateFilename() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{"relative", "./data", nil},
		{"absolute", "/srv/parsedBible", nil},
		{"empty", "", ErrEmptyPath},
		{"null byte", "data\x00", ErrInvalidCharacter},
		{"control character", "data/\n", ErrInvalidCharacter},
		{"too long", strings.Repeat("a/", 2048) + "x", ErrPathTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("ValidatePath() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidatePath() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

func TestNormalizeVersionCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ntv", "NTV", false},
		{" rvr1960 ", "RVR1960", false},
		{"NBLA-2", "NBLA-2", false},
		{"", "", true},
		{"../etc", "", true},
		{"NT V", "", true},
		{"ÑTV", "", true},
		{"-NTV", "", true},
		{strings.Repeat("A", 33), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeVersionCode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersionCode) {
					t.Errorf("NormalizeVersionCode(%q) error = %v, want ErrInvalidVersionCode", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("NormalizeVersionCode(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestNormalizeVersionList(t *testing.T) {
	got, err := NormalizeVersionList([]string{"ntv,pdt", "NTV", " rvr60 ", ""})
	if err != nil {
		t.Fatalf("NormalizeVersionList() error = %v", err)
	}
	if diff := cmp.Diff([]string{"NTV", "PDT", "RVR60"}, got); diff != "" {
		t.Errorf("NormalizeVersionList() mismatch (-want +got):\n%s", diff)
	}

	if got, err := NormalizeVersionList(nil); err != nil || got != nil {
		t.Errorf("NormalizeVersionList(nil) = %v, %v", got, err)
	}

	if _, err := NormalizeVersionList([]string{"NTV", "a/b"}); !errors.Is(err, ErrInvalidVersionCode) {
		t.Errorf("NormalizeVersionList() error = %v, want ErrInvalidVersionCode", err)
	}
}

func TestValidateConcurrency(t *testing.T) {
	for _, n := range []int{1, 10, MaxConcurrency} {
		if err := ValidateConcurrency(n); err != nil {
			t.Errorf("ValidateConcurrency(%d) = %v", n, err)
		}
	}
	for _, n := range []int{0, -1, MaxConcurrency + 1} {
		if err := ValidateConcurrency(n); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("ValidateConcurrency(%d) = %v, want ErrInvalidConcurrency", n, err)
		}
	}
}
