package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, root, name string, content []byte) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		storeData   string
		noStore     bool
		wantRecords int
		wantCorrupt bool
	}{
		{
			name:    "missing store yields empty store",
			noStore: true,
		},
		{
			name:        "corrupt store yields empty store with error",
			storeData:   "{not json at all",
			wantCorrupt: true,
		},
		{
			name: "valid store",
			storeData: `{
  "data/big.bin": {
    "original_file": "data/big.bin",
    "original_size": 42,
    "split_prefix": "data_big_split_",
    "split_files": ["data_big_split_000"],
    "split_count": 1
  }
}`,
			wantRecords: 1,
		},
		{
			name: "unknown fields are ignored",
			storeData: `{
  "a.bin": {
    "original_file": "a.bin",
    "original_size": 7,
    "split_prefix": "a_split_",
    "split_files": [],
    "split_count": 0,
    "checksum": "deadbeef",
    "compression": "none"
  }
}`,
			wantRecords: 1,
		},
		{
			name:      "empty json object",
			storeData: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			storePath := filepath.Join(root, "split_files_info.json")
			if !tt.noStore {
				writeFile(t, root, "split_files_info.json", []byte(tt.storeData))
			}

			tr := New(storePath, zap.NewNop())
			store, err := tr.Load()

			if tt.wantCorrupt {
				if !errors.Is(err, ErrCorruptStore) {
					t.Errorf("Load() error = %v, want ErrCorruptStore", err)
				}
			} else if err != nil {
				t.Errorf("Load() error = %v, want nil", err)
			}

			if store == nil {
				t.Fatal("Load() returned nil store")
			}
			if len(store) != tt.wantRecords {
				t.Errorf("Load() returned %d records, want %d", len(store), tt.wantRecords)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	tr := New(filepath.Join(root, "store.json"), zap.NewNop())

	store := Store{
		"a.bin": {
			OriginalFile: "a.bin",
			OriginalSize: 10,
			SplitPrefix:  "a_split_",
			SplitFiles:   []string{"a_split_000", "a_split_001"},
			SplitCount:   2,
		},
	}
	if err := tr.Save(store); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := tr.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(store, loaded) {
		t.Errorf("round trip mismatch: saved %v, loaded %v", store, loaded)
	}

	// The atomic write must not leave temp files behind.
	leftovers, err := filepath.Glob(filepath.Join(root, "store.json.*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left after save: %v", leftovers)
	}
}

func TestMergePreservesUnrelatedEntries(t *testing.T) {
	tr := New("unused", zap.NewNop())

	existing := Store{
		"keep.bin":    {OriginalFile: "keep.bin", OriginalSize: 1},
		"replace.bin": {OriginalFile: "replace.bin", OriginalSize: 2},
	}
	incoming := map[string]Record{
		"replace.bin": {OriginalFile: "replace.bin", OriginalSize: 20},
		"new.bin":     {OriginalFile: "new.bin", OriginalSize: 3},
	}

	merged := tr.Merge(existing, incoming)

	if len(merged) != 3 {
		t.Fatalf("merged store has %d entries, want 3", len(merged))
	}
	if merged["keep.bin"].OriginalSize != 1 {
		t.Errorf("unrelated entry was modified")
	}
	if merged["replace.bin"].OriginalSize != 20 {
		t.Errorf("same-key entry not overwritten by new record")
	}
	if merged["new.bin"].OriginalSize != 3 {
		t.Errorf("new entry missing")
	}
	if existing["replace.bin"].OriginalSize != 2 {
		t.Errorf("Merge mutated its input store")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		setupFn func(t *testing.T, root string) Store
		path    string
		want    Status
	}{
		{
			name: "unknown path",
			setupFn: func(t *testing.T, root string) Store {
				return Store{}
			},
			path: "big.bin",
			want: NotSplit,
		},
		{
			name: "valid split",
			setupFn: func(t *testing.T, root string) Store {
				writeFile(t, root, "big.bin", []byte("0123456789"))
				writeFile(t, root, "big_split_000", []byte("01234"))
				writeFile(t, root, "big_split_001", []byte("56789"))
				return Store{"big.bin": {
					OriginalFile: "big.bin",
					OriginalSize: 10,
					SplitPrefix:  "big_split_",
					SplitFiles:   []string{"big_split_000", "big_split_001"},
					SplitCount:   2,
				}}
			},
			path: "big.bin",
			want: SplitValid,
		},
		{
			name: "size changed",
			setupFn: func(t *testing.T, root string) Store {
				writeFile(t, root, "big.bin", []byte("0123456789 grown"))
				writeFile(t, root, "big_split_000", []byte("01234"))
				return Store{"big.bin": {
					OriginalFile: "big.bin",
					OriginalSize: 10,
					SplitFiles:   []string{"big_split_000"},
					SplitCount:   1,
				}}
			},
			path: "big.bin",
			want: SplitStale,
		},
		{
			name: "chunk missing",
			setupFn: func(t *testing.T, root string) Store {
				writeFile(t, root, "big.bin", []byte("0123456789"))
				writeFile(t, root, "big_split_000", []byte("01234"))
				return Store{"big.bin": {
					OriginalFile: "big.bin",
					OriginalSize: 10,
					SplitFiles:   []string{"big_split_000", "big_split_001"},
					SplitCount:   2,
				}}
			},
			path: "big.bin",
			want: NotSplit,
		},
		{
			name: "original gone",
			setupFn: func(t *testing.T, root string) Store {
				writeFile(t, root, "big_split_000", []byte("01234"))
				return Store{"big.bin": {
					OriginalFile: "big.bin",
					OriginalSize: 5,
					SplitFiles:   []string{"big_split_000"},
					SplitCount:   1,
				}}
			},
			path: "big.bin",
			want: NotSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			store := tt.setupFn(t, root)

			tr := New(filepath.Join(root, "store.json"), zap.NewNop())
			got, _ := tr.Check(store, root, tt.path)

			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllChunkPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a_split_000", []byte("x"))
	writeFile(t, root, "b_split_000", []byte("y"))

	store := Store{
		"a.bin": {SplitFiles: []string{"a_split_000", "a_split_001"}},
		"b.bin": {SplitFiles: []string{"b_split_000"}},
	}

	tr := New(filepath.Join(root, "store.json"), zap.NewNop())
	got := tr.AllChunkPaths(store, root)

	want := []string{"a_split_000", "b_split_000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllChunkPaths() = %v, want %v (missing chunks filtered, sorted)", got, want)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	root := t.TempDir()
	storePath := filepath.Join(root, "store.json")
	writeFile(t, root, "store.json", []byte("{}"))

	tr := New(storePath, zap.NewNop())
	if err := tr.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(storePath); !os.IsNotExist(err) {
		t.Errorf("store file still present after Remove()")
	}
	if err := tr.Remove(); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}
}
