// Package knowledge loads seed knowledge text from a directory tree.
package knowledge

import (
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/debug"
)

// ReadDir walks root recursively in lexical order and concatenates the
// contents of every regular file, each followed by a newline.
func ReadDir(fs afero.Fs, root string) (string, error) {
	var b strings.Builder
	files := 0

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		b.Write(data)
		b.WriteByte('\n')
		files++
		return nil
	})
	if err != nil {
		return "", apperr.Wrap(apperr.IOError, err, "")
	}

	debug.Debug("knowledge loaded", "root", root, "files", files, "bytes", b.Len())
	return b.String(), nil
}
