package id

import "testing"

func TestNewID32_IsValid(t *testing.T) {
	got := NewID32()
	if !IsID32(got) {
		t.Fatalf("NewID32() = %q, want 32-char lowercase hex", got)
	}
}

func TestIsID32(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"0123456789abcdef0123456789abcdef", true},
		{"0123456789ABCDEF0123456789ABCDEF", false},
		{"0123456789abcdef0123456789abcde", false},
		{"0123456789abcdef0123456789abcdef0", false},
		{"", false},
		{"zz23456789abcdef0123456789abcdef", false},
	} {
		if got := IsID32(tc.in); got != tc.want {
			t.Fatalf("IsID32(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewID32_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v := NewID32()
		if seen[v] {
			t.Fatalf("duplicate id after %d draws: %s", i, v)
		}
		seen[v] = true
	}
}
