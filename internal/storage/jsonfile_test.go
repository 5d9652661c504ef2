package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.json")

	var got map[string]int
	ok, err := ReadJSONFile(path, &got)
	if err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}

	if err := WriteJSONFile(path, map[string]int{"seq": 7}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	ok, err = ReadJSONFile(path, &got)
	if err != nil || !ok || got["seq"] != 7 {
		t.Fatalf("unexpected read %v ok=%v err=%v", got, ok, err)
	}
}

func TestReadJSONFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var v struct{}
	if _, err := ReadJSONFile(path, &v); err == nil {
		t.Fatalf("expected parse error")
	}
}
