package util

import "testing"

func TestNormalizeCitizenID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1234567890123", "1234567890123", true},
		{"1-2345-67890-12-3", "1234567890123", true},
		{" 1 2345 67890 12 3 ", "1234567890123", true},
		{"123", "123", false},
		{"12345678901234", "12345678901234", false},
		{"", "", false},
		{"abcdefghijklm", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeCitizenID(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizeCitizenID(%q) = (%q, %v), want (%q, %v)",
				c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDate valid: %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 3 || d.Day() != 10 {
		t.Errorf("ParseDate(\"2025-03-10\") = %v", d)
	}

	for _, in := range []string{"", "10/03/2025", "2025-13-01", "yesterday"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) expected error, got nil", in)
		}
	}
}
