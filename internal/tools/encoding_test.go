// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"bytes"
	"testing"
)

func TestLookupEncoding(t *testing.T) {
	cases := []struct {
		name      string
		supported bool
	}{
		{"", true},
		{"utf-8", true},
		{"UTF8", true},
		{"latin1", true},
		{"iso-8859-1", true},
		{"utf-16le", true},
		{"shift_jis", true},
		{"klingon", false},
	}
	for _, tc := range cases {
		if got := SupportedEncoding(tc.name); got != tc.supported {
			t.Fatalf("SupportedEncoding(%q) = %v, expected %v", tc.name, got, tc.supported)
		}
	}
}

func TestEncodeDecodeLatin1(t *testing.T) {
	encoded, err := encodeContent("café", "latin1")
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if !bytes.Equal(encoded, []byte{'c', 'a', 'f', 0xe9}) {
		t.Fatalf("unexpected latin1 bytes %v", encoded)
	}
	decoded, err := decodeContent(encoded, "latin1")
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded != "café" {
		t.Fatalf("expected round trip, got %q", decoded)
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	if _, err := decodeContent([]byte{0xff, 0xfe, 0x00}, "utf-8"); err == nil {
		t.Fatal("expected invalid utf-8 to fail")
	}
}

func TestEncodeRejectsUnrepresentableRunes(t *testing.T) {
	if _, err := encodeContent("日本", "latin1"); err == nil {
		t.Fatal("expected encode error for runes outside latin1")
	}
}
