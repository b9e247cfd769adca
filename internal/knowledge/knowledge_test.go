package knowledge

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/nlsql/internal/apperr"
)

func TestReadDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/kb/b.sql", []byte("CREATE TABLE b (id INT);"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/kb/a.sql", []byte("CREATE TABLE a (id INT);"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/kb/nested/c.md", []byte("grades run from A to F"), 0o644))

	text, err := ReadDir(fs, "/kb")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE a (id INT);\nCREATE TABLE b (id INT);\ngrades run from A to F\n", text)
}

func TestReadDirEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/kb", 0o755))

	text, err := ReadDir(fs, "/kb")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestReadDirSingleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/notes.txt", []byte("x"), 0o644))

	text, err := ReadDir(fs, "/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "x\n", text)
}

func TestReadDirMissing(t *testing.T) {
	_, err := ReadDir(afero.NewMemMapFs(), "/nope")
	require.Error(t, err)
	assert.Equal(t, apperr.IOError, apperr.KindOf(err))
}
