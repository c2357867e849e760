package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RectFit/internal/store"
)

func writeSquares(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.csv")
	data := "region,x,y\n" +
		"a,0,0\na,100,0\na,100,50\na,0,50\n" +
		"b,0,0\nb,20,0\nb,20,20\nb,0,20\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func runCapture(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	out, err := runCapture(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")

	_, err = runCapture(t, "bogus")
	assert.ErrorContains(t, err, "unknown command")
}

func TestRun_FitRequiresInput(t *testing.T) {
	_, err := runCapture(t, "fit")
	assert.ErrorContains(t, err, "--input")
}

func TestRun_FitWritesOutputs(t *testing.T) {
	in := writeSquares(t)
	dir := t.TempDir()
	svg := filepath.Join(dir, "fit.svg")
	nc := filepath.Join(dir, "fit.nc")

	out, err := runCapture(t, "fit", "-i", in, "-o", svg, "-o", nc, "--profile", "Grbl")
	require.NoError(t, err)
	assert.Contains(t, out, "closed_form_parallelogram")
	assert.Equal(t, 3, strings.Count(out, "\n"), "header plus one line per region")

	for _, name := range []string{"fit-1.svg", "fit-2.svg", "fit-1.nc", "fit-2.nc"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	code, err := os.ReadFile(filepath.Join(dir, "fit-1.nc"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "G21")
}

func TestRun_FitUnsupportedOutput(t *testing.T) {
	_, err := runCapture(t, "fit", "-i", writeSquares(t), "-o", filepath.Join(t.TempDir(), "fit.png"))
	assert.ErrorContains(t, err, "unsupported output type")
}

func TestRun_BatchStoresResults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.json")
	out, err := runCapture(t, "batch", "-i", writeSquares(t), "--store", dbPath, "-w", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "stored 2 of 2")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.Get("a")
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, rec.Area, 1e-6)
	rec, err = st.Get("b")
	require.NoError(t, err)
	assert.InDelta(t, 400.0, rec.Area, 1e-6)
}

func TestRun_Sweep(t *testing.T) {
	out, err := runCapture(t, "sweep", "-i", writeSquares(t))
	require.NoError(t, err)
	assert.Contains(t, out, "runs ")
	assert.Contains(t, out, "best ")
}

func TestNumberedPath(t *testing.T) {
	assert.Equal(t, "out.svg", numberedPath("out.svg", 0, 1))
	assert.Equal(t, "out-3.svg", numberedPath("out.svg", 2, 5))
}
