// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"testing"
)

func TestTrimUtf8(t *testing.T) {
	cases := []struct {
		in   string
		low  int
		high int
		out  string
		ok   bool
	}{
		{"slipstream", 3, 16, "slipstream", true},
		{"  apex  ", 3, 16, "apex", true},
		{"ab", 3, 16, "", false},
		{"", 3, 16, "", false},
		{"abcdefghij", 3, 6, "abcdef", true},
		{"\xff\xfe", 1, 16, "", false},
		// Multibyte runes are never split.
		{"日本語テスト", 1, 7, "日本", true},
	}

	for _, c := range cases {
		out, ok := trimUtf8(c.in, c.low, c.high)
		if out != c.out || ok != c.ok {
			t.Errorf("trimUtf8(%q, %d, %d) = %q, %t, expected %q, %t", c.in, c.low, c.high, out, ok, c.out, c.ok)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"drift", "drift", true},
		{"  hairpin  ", "hairpin", true},
		{"[mod]racer", "modracer", true},
		{"st*r", "str", true},
		{"ab", "", false},
		{"", "", false},
		{"thisnameiswaytoolongtokeep", "thisnameiswaytoo", true},
	}

	for _, c := range cases {
		out, ok := sanitizeName(c.in)
		if out != c.out || ok != c.ok {
			t.Errorf("sanitizeName(%q) = %q, %t, expected %q, %t", c.in, out, ok, c.out, c.ok)
		}
	}
}

func TestSanitizeNameStripsControlRunes(t *testing.T) {
	out, ok := sanitizeName("ri\x00val\x07")
	if !ok || out != "rival" {
		t.Errorf("expected control runes removed, got %q, %t", out, ok)
	}
}
