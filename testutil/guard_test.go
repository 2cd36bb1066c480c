package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"orchard/internal/core", true},
		{"example.com/mod/internal/x", true},
		{"orchard/pkg/genome", false},
		{"internal", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestStorageImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"database/sql", true},
		{"database/sql/driver", true},
		{"modernc.org/sqlite", true},
		{"github.com/jackc/pgx/v5/stdlib", true},
		{"github.com/aws/aws-sdk-go-v2/service/s3", true},
		{"encoding/binary", false},
		{"orchard/pkg/satmath", false},
	}
	for _, c := range cases {
		if got := StorageImportForbidden(c.in); got != c.want {
			t.Fatalf("StorageImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestDirectImportViolationsSkipsTestsAndDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package tmp\nimport \"fmt\"\nfunc X() { fmt.Println(1) }\n")
	writeFile(t, dir, "main_test.go", "package tmp\nimport \"database/sql\"\nvar _ sql.DB\n")
	writeFile(t, dir, "notes.txt", "import \"database/sql\"")
	if err := os.Mkdir(filepath.Join(dir, "sub.go"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	viols, err := directImportViolations(dir, StorageImportForbidden)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 0 {
		t.Fatalf("expected no violations, got %v", viols)
	}
	AssertNoDirectImports(t, dir, StorageImportForbidden, "none")
}

func TestDirectImportViolationsReportsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "store.go", "package tmp\nimport (\n\t\"database/sql\"\n\t\"fmt\"\n)\nvar _ = fmt.Sprint\nvar _ sql.DB\n")
	viols, err := directImportViolations(dir, StorageImportForbidden)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "database/sql (in store.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}
}

func TestDirectImportViolationsErrors(t *testing.T) {
	if _, err := directImportViolations(filepath.Join(t.TempDir(), "missing"), StorageImportForbidden); err == nil {
		t.Fatalf("expected missing dir error")
	}
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "not go")
	if _, err := directImportViolations(dir, StorageImportForbidden); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTransitiveViolationsUsesGoList(t *testing.T) {
	prev := goListDeps
	t.Cleanup(func() { goListDeps = prev })
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\n\nmodernc.org/sqlite\norchard/pkg/genome\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", StorageImportForbidden)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "modernc.org/sqlite" {
		t.Fatalf("unexpected violations %v", viols)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations(".", StorageImportForbidden); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list failure, got %v %q", err, out)
	}
}

func TestFailIfViolations(t *testing.T) {
	rec := &recordingFatal{}
	failIfViolations(rec, "forbidden direct imports detected", "reason", nil)
	if rec.msg != "" {
		t.Fatalf("expected no failure, got %q", rec.msg)
	}
	failIfViolations(rec, "forbidden direct imports detected", "reason", []string{"a", "b"})
	if !strings.Contains(rec.msg, "(reason)") || !strings.HasSuffix(rec.msg, "a\nb") {
		t.Fatalf("unexpected message %q", rec.msg)
	}
}
