package searcher_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/ddreduce/internal/dedupe"
	"github.com/dekarrin/ddreduce/internal/searcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver simulates a compiler that emits E0384 on "a = 2;" so long as
// both "let a" and "a = 2;" survive in the source, and is otherwise clean.
type fakeDriver struct {
	sourceRelPath string
}

func (d fakeDriver) Run(ctx context.Context, dir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, d.sourceRelPath))
	if err != nil {
		return nil, err
	}
	src := string(data)

	if strings.Contains(src, "let a") && strings.Contains(src, "a = 2") {
		return []byte("error[E0384]: cannot assign twice to immutable variable `a`\n --> " + d.sourceRelPath + ":1:1\n"), nil
	}
	return []byte("Compiling... done\n"), nil
}

func writeProject(t *testing.T, src string) (dir, relPath string) {
	t.Helper()
	dir = t.TempDir()
	relPath = "main.rs"
	require.NoError(t, os.WriteFile(filepath.Join(dir, relPath), []byte(src), 0644))
	return dir, relPath
}

func Test_Run_ReducesIrrelevantStatement(t *testing.T) {
	src := "fn f() {\n    let a = 1;\n    let b = [1, 2];\n    a = 2;\n}"
	dir, rel := writeProject(t, src)

	rpt, err := searcher.Run(context.Background(), searcher.Config{
		ProjectDir: dir,
		Driver:     fakeDriver{sourceRelPath: rel},
	})
	require.NoError(t, err)
	require.NotNil(t, rpt)

	final, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.NotContains(t, string(final), "let b")
	assert.Contains(t, string(final), "let a")
	assert.Contains(t, string(final), "a = 2")
	assert.Equal(t, "E0384", rpt.MasterError.ErrorCode)
	assert.True(t, rpt.Accepted >= 1)
	assert.Contains(t, rpt.RemovedKinds, "LocalStatement")
}

func Test_Run_NoErrorsIsNilReport(t *testing.T) {
	dir, rel := writeProject(t, "fn f() {}")

	rpt, err := searcher.Run(context.Background(), searcher.Config{
		ProjectDir: dir,
		Driver:     fakeDriverClean{},
	})
	require.NoError(t, err)
	assert.Nil(t, rpt)
	_ = rel
}

type fakeDriverClean struct{}

func (fakeDriverClean) Run(ctx context.Context, dir string) ([]byte, error) {
	return []byte("Compiling... done\n"), nil
}

func Test_Run_IdempotentOnAlreadyMinimizedFile(t *testing.T) {
	src := "fn f() {\n    let a = 1;\n    a = 2;\n}"
	dir, rel := writeProject(t, src)

	rpt, err := searcher.Run(context.Background(), searcher.Config{
		ProjectDir: dir,
		Driver:     fakeDriver{sourceRelPath: rel},
	})
	require.NoError(t, err)
	require.NotNil(t, rpt)
	assert.Equal(t, 0, rpt.Accepted, "already-minimal input should accept nothing further")

	final, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.Equal(t, src+"\n", string(final))
}

func Test_Run_UsesCandidateCache(t *testing.T) {
	src := "fn f() {\n    let a = 1;\n    let b = [1, 2];\n    a = 2;\n}"
	dir, rel := writeProject(t, src)

	cache := dedupe.New()
	rpt, err := searcher.Run(context.Background(), searcher.Config{
		ProjectDir: dir,
		Driver:     fakeDriver{sourceRelPath: rel},
		Cache:      cache,
	})
	require.NoError(t, err)
	require.NotNil(t, rpt)
	assert.True(t, cache.Len() > 0)
}

func Test_Run_ConfirmHookCanVetoAcceptance(t *testing.T) {
	src := "fn f() {\n    let a = 1;\n    let b = [1, 2];\n    a = 2;\n}"
	dir, rel := writeProject(t, src)

	rpt, err := searcher.Run(context.Background(), searcher.Config{
		ProjectDir: dir,
		Driver:     fakeDriver{sourceRelPath: rel},
		Confirm:    func(description string) bool { return false },
	})
	require.NoError(t, err)
	require.NotNil(t, rpt)
	assert.Equal(t, 0, rpt.Accepted, "declining every confirmation should accept nothing")

	final, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.Contains(t, string(final), "let b")
}
