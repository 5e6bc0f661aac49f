package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

// fixedNow is the clock used by test environments.
var fixedNow = time.Date(2026, time.March, 7, 9, 30, 0, 0, time.UTC)

// testEnv returns an Environment with captured output and the given
// variables as the whole process environment.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, stdout, stderr
}

// writeFile writes data to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// pngImage encodes a small solid PNG.
func pngImage(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(12, 8, color.NRGBA{R: 20, G: 60, B: 200, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

// ownersCSV builds an owner file with the default 20-column layout. Each
// owner is name, street, city, state, postal; a nil entry adds a short row.
func ownersCSV(owners ...[]string) []byte {
	header := make([]string, 20)
	for i := range header {
		header[i] = "col" + string(rune('A'+i))
	}
	header[7] = "Owner Name"
	header[16], header[17], header[18], header[19] = "Mail Street", "Mail City", "Mail State", "Mail Zip"

	var sb strings.Builder
	sb.WriteString(strings.Join(header, ","))
	sb.WriteString("\n")
	for _, o := range owners {
		row := make([]string, 20)
		if o == nil {
			row = row[:5]
		} else {
			row[7] = o[0]
			row[16], row[17], row[18], row[19] = o[1], o[2], o[3], o[4]
		}
		sb.WriteString(strings.Join(row, ","))
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

// batchFiles writes an owner file and branding images to a temp dir and
// returns their paths.
type batchFiles struct {
	dir, owners, logo, signature string
}

func newBatchFiles(t *testing.T, owners []byte) batchFiles {
	t.Helper()
	dir := t.TempDir()
	return batchFiles{
		dir:       dir,
		owners:    writeFile(t, dir, "owners.csv", owners),
		logo:      writeFile(t, dir, "logo.png", pngImage(t)),
		signature: writeFile(t, dir, "signature.png", pngImage(t)),
	}
}

// args returns generate arguments for the files plus extra flags.
func (b batchFiles) args(extra ...string) []string {
	return append([]string{"generate", b.owners, "--logo", b.logo, "--signature", b.signature}, extra...)
}
