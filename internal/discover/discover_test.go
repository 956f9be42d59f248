package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mkTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFilesWalksAndSorts(t *testing.T) {
	root := mkTree(t,
		"b.py",
		"a.py",
		"pkg/mod.py",
		"pkg/data.csv",
		"README.md",
	)
	files, err := Files(root, []string{root}, nil)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	want := []string{"a.py", "b.py", "pkg/mod.py"}
	if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestFilesSkipsToolDirs(t *testing.T) {
	root := mkTree(t,
		"app.py",
		".venv/lib/site.py",
		"__pycache__/app.cpython-312.py",
		".git/hooks/sample.py",
	)
	files, err := Files(root, []string{root}, nil)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if got := rel(t, root, files); !reflect.DeepEqual(got, []string{"app.py"}) {
		t.Errorf("files = %v", got)
	}
}

func TestFilesExcludePatterns(t *testing.T) {
	root := mkTree(t,
		"app.py",
		"test_app.py",
		"generated/models.py",
		"generated/deep/more.py",
		"pkg/test_pkg.py",
	)
	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{
			name:    "directory subtree",
			exclude: []string{"generated/**"},
			want:    []string{"app.py", "pkg/test_pkg.py", "test_app.py"},
		},
		{
			name:    "basename glob matches anywhere",
			exclude: []string{"test_*.py"},
			want:    []string{"app.py", "generated/deep/more.py", "generated/models.py"},
		},
		{
			name:    "relative glob does not cross separators",
			exclude: []string{"generated/*.py"},
			want:    []string{"app.py", "generated/deep/more.py", "pkg/test_pkg.py", "test_app.py"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Files(root, []string{root}, tt.exclude)
			if err != nil {
				t.Fatalf("files: %v", err)
			}
			if got := rel(t, root, files); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilesExplicitFileAndDedup(t *testing.T) {
	root := mkTree(t, "a.py", "notes.txt")
	a := filepath.Join(root, "a.py")
	files, err := Files(root, []string{a, a, filepath.Join(root, "notes.txt"), root}, nil)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if got := rel(t, root, files); !reflect.DeepEqual(got, []string{"a.py"}) {
		t.Errorf("files = %v", got)
	}
}

func TestFilesMissingPath(t *testing.T) {
	root := t.TempDir()
	if _, err := Files(root, []string{filepath.Join(root, "nope")}, nil); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}
