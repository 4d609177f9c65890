package parser

import "testing"

func codeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

func TestExtractValidPostingCode_LongestMatchWins(t *testing.T) {
	whitelist := codeSet("9", "91")

	code, rest, ok := extractValidPostingCode("91CITY TAX", whitelist)
	if !ok {
		t.Fatal("expected a match")
	}
	if code != "91" {
		t.Errorf("code: got %q, want %q (longest match must win over %q)", code, "91", "9")
	}
	if rest != "CITY TAX" {
		t.Errorf("rest: got %q, want %q", rest, "CITY TAX")
	}
}

func TestExtractValidPostingCode_Whitelist(t *testing.T) {
	whitelist := codeSet("RC", "X3", "9")

	tests := []struct {
		input    string
		code     string
		rest     string
		ok       bool
	}{
		{"RC ROOM CHARGE", "RC", "ROOM CHARGE", true},
		{"rcROOM CHARGE", "RC", "ROOM CHARGE", true},
		{"X3PET CHARGE", "X3", "PET CHARGE", true},
		{"9CITY LODGING TAX", "9", "CITY LODGING TAX", true},
		{"ZZUNKNOWN CODE", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, rest, ok := extractValidPostingCode(tt.input, whitelist)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if code != tt.code || rest != tt.rest {
				t.Errorf("got (%q, %q), want (%q, %q)", code, rest, tt.code, tt.rest)
			}
		})
	}
}

func TestExtractValidPostingCode_NoWhitelistFallback(t *testing.T) {
	tests := []struct {
		input string
		code  string
		rest  string
		ok    bool
	}{
		{"RC ROOM CHARGE", "RC", "ROOM CHARGE", true},
		{"9 CITY TAX", "9", "CITY TAX", true},
		{"| nothing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, rest, ok := extractValidPostingCode(tt.input, nil)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if code != tt.code || rest != tt.rest {
				t.Errorf("got (%q, %q), want (%q, %q)", code, rest, tt.code, tt.rest)
			}
		})
	}
}

func TestExtractValidPostingCode_LengthBound(t *testing.T) {
	// Codes longer than 8 characters are never considered, even if listed.
	whitelist := codeSet("LONGCODE9")

	_, _, ok := extractValidPostingCode("LONGCODE9 DESC", whitelist)
	if ok {
		t.Error("expected no match for a 9-character code")
	}
}
