package cmd

import (
	"context"
	"image"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/andresmejia3/eigenfaces/internal/eigenface"
	"github.com/andresmejia3/eigenfaces/internal/pgm"
	"github.com/andresmejia3/eigenfaces/internal/store"
)

func TestValidateOptions(t *testing.T) {
	valid := Options{DBRoot: "faces", Subjects: 40, Images: 10, LogFormat: "console"}

	tests := []struct {
		name         string
		mutate       func(o *Options)
		needDatabase bool
		wantErr      string
	}{
		{"Valid", func(o *Options) {}, true, ""},
		{"Missing root", func(o *Options) { o.DBRoot = "" }, true, "--db-root"},
		{"Zero subjects", func(o *Options) { o.Subjects = 0 }, true, "--subjects"},
		{"Negative images", func(o *Options) { o.Images = -1 }, true, "--images"},
		{"Bad log level", func(o *Options) { o.LogLevel = "trace" }, false, "--log-level"},
		{"Bad log format", func(o *Options) { o.LogFormat = "xml" }, false, "--log-format"},
		{"Database fields skipped", func(o *Options) { o.DBRoot, o.Subjects, o.Images = "", 0, 0 }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := validateOptions(&o, tt.needDatabase)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validateOptions() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateOptions() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestResolveDSN(t *testing.T) {
	old := dbURL
	defer func() { dbURL = old }()

	dbURL = ""
	t.Setenv("POSTGRES_HOST", "")
	if got := resolveDSN(); got != "postgres://localhost:5432/eigenfaces" {
		t.Errorf("default DSN = %q", got)
	}

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_DB", "faces")
	t.Setenv("POSTGRES_PORT", "")
	if got, want := resolveDSN(), "postgres://u:p@db:5432/faces"; got != want {
		t.Errorf("env DSN = %q, want %q", got, want)
	}

	dbURL = "postgres://override/x"
	if got := resolveDSN(); got != dbURL {
		t.Errorf("flag DSN = %q, want %q", got, dbURL)
	}
}

func TestEnergyTable(t *testing.T) {
	sigma := []float64{4, 3}
	normalized := []float64{0.8, 0.6}
	energy := []float64{0.64, 0.36}

	rows := energyTable(sigma, normalized, energy, 0)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Component != 1 || rows[1].Component != 2 {
		t.Errorf("components are not 1-based: %+v", rows)
	}
	if math.Abs(rows[1].Cumulative-1) > 1e-12 {
		t.Errorf("cumulative energy = %v, want 1", rows[1].Cumulative)
	}

	if got := energyTable(sigma, normalized, energy, 1); len(got) != 1 {
		t.Errorf("top=1 returned %d rows", len(got))
	}
	if got := energyTable(sigma, normalized, energy, 99); len(got) != 2 {
		t.Errorf("top larger than rank returned %d rows", len(got))
	}
}

func TestFormatCoords(t *testing.T) {
	if got, want := formatCoords([]float64{1, -0.5, 300}), "1.0000 -0.5000 300.0000"; got != want {
		t.Errorf("formatCoords() = %q, want %q", got, want)
	}
	if got := formatCoords(nil); got != "" {
		t.Errorf("formatCoords(nil) = %q, want empty", got)
	}
}

func TestFindDatabase(t *testing.T) {
	dbs := []store.Database{{ID: "abc123"}, {ID: "abd456"}, {ID: "fff000"}}

	tests := []struct {
		prefix  string
		wantID  string
		wantErr bool
	}{
		{"abc", "abc123", false},
		{"fff000", "fff000", false},
		{"ab", "", true},
		{"zzz", "", true},
	}

	for _, tt := range tests {
		d, err := findDatabase(dbs, tt.prefix)
		if (err != nil) != tt.wantErr {
			t.Errorf("findDatabase(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			continue
		}
		if d.ID != tt.wantID {
			t.Errorf("findDatabase(%q) = %q, want %q", tt.prefix, d.ID, tt.wantID)
		}
	}

	if got := shortID("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q", got)
	}
}

func TestRunExport(t *testing.T) {
	root := t.TempDir()
	const subjects, images = 2, 2
	for s := 1; s <= subjects; s++ {
		for i := 1; i <= images; i++ {
			img := image.NewGray(image.Rect(0, 0, 3, 2))
			for p := range img.Pix {
				img.Pix[p] = uint8((s*37 + i*11 + p*p*5) % 256)
			}
			path := filepath.Join(root, "s"+strconv.Itoa(s), strconv.Itoa(i)+".pgm")
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := pgm.WriteFile(path, img); err != nil {
				t.Fatal(err)
			}
		}
	}

	ctx := context.Background()
	model, err := eigenface.New(ctx, eigenface.Config{Root: root, Subjects: subjects, Images: images})
	if err != nil {
		t.Fatalf("eigenface.New() error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "export")
	n, err := runExport(ctx, model, out, "pgm", true)
	if err != nil {
		t.Fatalf("runExport() error: %v", err)
	}

	// mean + centered faces + eigenfaces + I, A, U + S.txt
	want := 1 + subjects*images + model.Rank() + 3 + 1
	if n != want {
		t.Errorf("runExport() wrote %d files, want %d", n, want)
	}

	for _, name := range []string{"mean.pgm", "I.pgm", "A.pgm", "U.pgm", "centered/s2_2.pgm", "eigenfaces/s1_1.pgm"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	mean, err := pgm.ReadFile(filepath.Join(out, "mean.pgm"))
	if err != nil {
		t.Fatal(err)
	}
	if b := mean.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("mean face is %dx%d, want 3x2", b.Dx(), b.Dy())
	}

	s, err := os.ReadFile(filepath.Join(out, "S.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(s), "\n"); lines != model.Rank() {
		t.Errorf("S.txt has %d lines, want %d", lines, model.Rank())
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := runExport(cancelled, model, t.TempDir(), "png", false); err == nil {
		t.Error("runExport() with cancelled context should fail")
	}
}
