package fonts

import (
	"errors"
	"testing"
)

func TestDefaultFaceAdvance(t *testing.T) {
	f, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if f.Name() != DefaultFaceName || len(f.TTF()) == 0 {
		t.Fatalf("unexpected face identity %q", f.Name())
	}

	short, err := f.Advance("il")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	long, err := f.Advance("WWWW")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if short <= 0 || long <= short {
		t.Fatalf("advances not ordered: il=%v WWWW=%v", short, long)
	}

	w, err := f.TextWidth("WWWW", 10)
	if err != nil {
		t.Fatalf("TextWidth() error = %v", err)
	}
	if want := long * 10 / 1000; w != want {
		t.Fatalf("TextWidth = %v, want %v", w, want)
	}
	if empty, _ := f.Advance(""); empty != 0 {
		t.Fatalf("empty advance = %v", empty)
	}
}

func TestFaceClose(t *testing.T) {
	f, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := f.Advance("x"); !errors.Is(err, ErrFaceClosed) {
		t.Fatalf("Advance after Close error = %v", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load("bad", nil); err == nil {
		t.Fatalf("expected error for empty program")
	}
	if _, err := Load("bad", []byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
}
