package conv

import "testing"

func TestItoa(t *testing.T) {
	var buf [20]byte
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{255, "255"},
		{-1, "-1"},
		{-120, "-120"},
		{1900, "1900"},
	}
	for _, c := range cases {
		if got := string(Itoa(buf[:], c.n)); got != c.want {
			t.Fatalf("Itoa(%d)=%q, want %q", c.n, got, c.want)
		}
	}
}

func TestAppendInt(t *testing.T) {
	out := AppendInt([]byte("hue="), 42)
	if string(out) != "hue=42" {
		t.Fatalf("AppendInt got %q", out)
	}
}
