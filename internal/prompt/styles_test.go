package prompt

import "testing"

func TestParseStyle(t *testing.T) {
	cases := []struct {
		input   string
		want    Style
		wantErr bool
	}{
		{"professional", StyleProfessional, false},
		{"social", StyleSocial, false},
		{"Professional", StyleProfessional, false},
		{"  SOCIAL  ", StyleSocial, false},
		{"", "", true},
		{"poetic", "", true},
	}

	for _, tc := range cases {
		got, err := ParseStyle(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseStyle(%q) expected error, got %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStyle(%q) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStyleValid(t *testing.T) {
	if !StyleProfessional.Valid() {
		t.Error("StyleProfessional should be valid")
	}
	if !StyleSocial.Valid() {
		t.Error("StyleSocial should be valid")
	}
	if Style("poetic").Valid() {
		t.Error("unknown style should not be valid")
	}
	if Style("").Valid() {
		t.Error("empty style should not be valid")
	}
}
