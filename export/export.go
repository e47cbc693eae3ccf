// Package export delivers finished workbooks: into a directory, as an HTTP
// attachment, or nowhere.
package export

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ContentType is the media type of an XLSX workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrInvalidFileName = errors.New("invalid file name")

// Dir writes offered workbooks into the directory Path, replacing any file of
// the same name atomically.
type Dir struct {
	Path string
}

func (d Dir) Offer(blob []byte, fileName string) error {
	name, err := cleanFileName(fileName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return errors.Wrapf(err, "could not create export directory %s", d.Path)
	}

	tmpName := filepath.Join(d.Path, "."+name+"."+uuid.New().String()+".tmp")
	tmpF, err := os.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", tmpName)
	}

	defer func() {
		_ = tmpF.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmpF.Write(blob); err != nil {
		return errors.Wrapf(err, "could not write %s", tmpName)
	}

	if err := tmpF.Sync(); err != nil {
		return errors.Wrapf(err, "could not sync %s", tmpName)
	}

	if err := tmpF.Close(); err != nil {
		return errors.Wrapf(err, "could not close %s", tmpName)
	}

	target := filepath.Join(d.Path, name)
	if err := os.Rename(tmpName, target); err != nil {
		return errors.Wrapf(err, "could not move %s to %s", tmpName, target)
	}

	return nil
}

// Response sends offered workbooks as an attachment on W. It must be offered
// at most once per request.
type Response struct {
	W http.ResponseWriter
}

func (r Response) Offer(blob []byte, fileName string) error {
	name, err := cleanFileName(fileName)
	if err != nil {
		return err
	}

	h := r.W.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	h.Set("Content-Length", strconv.Itoa(len(blob)))
	h.Set("ETag", ETag(blob))
	h.Set("X-Content-Type-Options", "nosniff")
	r.W.WriteHeader(http.StatusOK)

	if _, err := r.W.Write(blob); err != nil {
		return errors.Wrapf(err, "could not send %s", name)
	}

	return nil
}

// Discard accepts every workbook and keeps none.
type Discard struct{}

func (Discard) Offer([]byte, string) error { return nil }

// ETag is a strong entity tag derived from the workbook bytes.
func ETag(blob []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(blob), 16) + `"`
}

func cleanFileName(fileName string) (string, error) {
	name := filepath.Base(filepath.Clean(fileName))
	if fileName == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", errors.Wrapf(ErrInvalidFileName, "%q", fileName)
	}

	return name, nil
}
