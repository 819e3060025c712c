package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStorageObjectMatchesLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "germany.yaml")
	if err := os.WriteFile(path, []byte("crs: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	modified := time.Unix(1700000000, 0)
	if err := os.Chtimes(path, modified, modified); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		obj  StorageObject
		info os.FileInfo
		want bool
	}{
		{"same size and time", StorageObject{Size: 7, LastModified: modified.Unix()}, info, true},
		{"unknown size and time", StorageObject{}, info, true},
		{"size differs", StorageObject{Size: 8}, info, false},
		{"remote newer", StorageObject{Size: 7, LastModified: modified.Unix() + 60}, info, false},
		{"remote older", StorageObject{LastModified: modified.Unix() - 60}, info, true},
		{"missing local", StorageObject{}, nil, false},
		{"directory", StorageObject{}, dirInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.MatchesLocal(tt.info); got != tt.want {
				t.Errorf("MatchesLocal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStorageObjectModified(t *testing.T) {
	if !(StorageObject{}).Modified().IsZero() {
		t.Error("unknown modification time should be zero")
	}
	if got := (StorageObject{LastModified: 1700000000}).Modified(); got.Unix() != 1700000000 {
		t.Errorf("Modified() = %v", got)
	}
}
