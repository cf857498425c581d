package fileproc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/vmsweep/internal/testutil"
	"github.com/panbanda/vmsweep/pkg/parser"
)

func javaFiles(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var files []string
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, string(rune('A'+i))+"ViewModel.java")
		testutil.WriteFile(t, name, "public class "+string(rune('A'+i))+"ViewModel {}\n")
		files = append(files, name)
	}
	return files
}

func TestMapFiles_KeepsInputOrder(t *testing.T) {
	files := javaFiles(t, 8)

	var ticks atomic.Int32
	results, errs, err := MapFiles(context.Background(), files, Options{Workers: 3, OnProgress: func() { ticks.Add(1) }},
		func(p *parser.Parser, path string) (string, error) {
			res, err := p.ParseFile(path)
			if err != nil {
				return "", err
			}
			defer res.Close()
			return filepath.Base(path), nil
		})
	require.NoError(t, err)
	assert.Nil(t, errs)
	require.Len(t, results, 8)
	assert.Equal(t, "AViewModel.java", results[0])
	assert.Equal(t, "HViewModel.java", results[7])
	assert.EqualValues(t, 8, ticks.Load())
}

func TestMapFiles_CollectsErrors(t *testing.T) {
	files := javaFiles(t, 4)
	var reported []string

	results, errs, err := MapFiles(context.Background(), files, Options{Workers: 1, OnError: func(path string, err error) {
		reported = append(reported, filepath.Base(path))
	}}, func(_ *parser.Parser, path string) (int, error) {
		if strings.HasPrefix(filepath.Base(path), "B") {
			return 0, errors.New("bad")
		}
		return 1, nil
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	require.NotNil(t, errs)
	assert.Equal(t, 1, errs.Len())
	assert.Equal(t, []string{"BViewModel.java"}, reported)
	assert.Contains(t, errs.Error(), "bad")
}

func TestMapFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _, err := MapFiles(ctx, javaFiles(t, 3), Options{}, func(*parser.Parser, string) (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestMapFiles_Empty(t *testing.T) {
	results, errs, err := MapFiles(context.Background(), nil, Options{}, func(*parser.Parser, string) (int, error) {
		return 1, nil
	})
	assert.NoError(t, err)
	assert.Nil(t, errs)
	assert.Nil(t, results)
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	assert.Equal(t, "no errors", errs.Error())
	errs.Add("a.java", errors.New("x"))
	assert.Equal(t, "a.java: x", errs.Error())
	errs.Add("b.java", errors.New("y"))
	assert.Contains(t, errs.Error(), "2 files failed")

	var nilErrs *ProcessingErrors
	assert.Zero(t, nilErrs.Len())
}
