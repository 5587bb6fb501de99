package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "nope")
	if got := Int("ENVUTIL_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("ENVUTIL_INT", " 42 ")
	if got := Int("ENVUTIL_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"1": true, "TRUE": true, "off": false, "no": false}
	for raw, want := range cases {
		t.Setenv("ENVUTIL_BOOL", raw)
		if got := Bool("ENVUTIL_BOOL", !want); got != want {
			t.Fatalf("Bool(%q): want=%v got=%v", raw, want, got)
		}
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if got := Bool("ENVUTIL_BOOL", true); !got {
		t.Fatalf("Bool(maybe): want default true")
	}
}

func TestSecondsAndList(t *testing.T) {
	t.Setenv("ENVUTIL_SECS", "0")
	if got := Seconds("ENVUTIL_SECS", 3*time.Second); got != 3*time.Second {
		t.Fatalf("Seconds: want=3s got=%s", got)
	}
	t.Setenv("ENVUTIL_SECS", "90")
	if got := Seconds("ENVUTIL_SECS", time.Second); got != 90*time.Second {
		t.Fatalf("Seconds: want=90s got=%s", got)
	}

	t.Setenv("ENVUTIL_LIST", " a, ,b ,")
	got := List("ENVUTIL_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: want=[a b] got=%v", got)
	}
}
