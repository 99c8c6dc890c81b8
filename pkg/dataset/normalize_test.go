package dataset

import (
	"errors"
	"testing"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5k", 12500},
		{"12.5", 12.5},
		{"1k", 1000},
		{"603", 603},
		{" 1.2k ", 1200},
		{"0", 0},
		{"-3.5", -3.5},
		{"1e5", 100000},
		{"1e+5", 100000},
		{"2.5E-1", 0.25},
		{"1.5e+1k", 15000},
	}
	for _, tt := range tests {
		got, err := ParseCell(tt.in)
		if err != nil {
			t.Fatalf("ParseCell(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCell(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCell_Rejects(t *testing.T) {
	for _, in := range []string{"", "k", "12M", "1.5B", "abc", "NaN", "Inf", "1.2kk", "0x10", "1,000", "1+5", "1e5+", "+-1"} {
		_, err := ParseCell(in)
		if err == nil {
			t.Errorf("ParseCell(%q) expected error, got nil", in)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseCell(%q) error %T is not a *ParseError", in, err)
		}
	}
}

func TestParseYears(t *testing.T) {
	got, err := ParseYears([]string{"country", "1800", " 1801", "1802"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1800, 1801, 1802}
	if len(got) != len(want) {
		t.Fatalf("expected %d years, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("year %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParseYears_BadLabel(t *testing.T) {
	_, err := ParseYears([]string{"country", "1800", "18o1"})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Column != 2 || pe.Value != "18o1" {
		t.Fatalf("unexpected error position: %#v", pe)
	}
}

func TestParseYears_NoYears(t *testing.T) {
	if _, err := ParseYears([]string{"country"}); err == nil {
		t.Fatal("expected error for header without year columns")
	}
}
