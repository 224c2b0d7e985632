package restapi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/google/uuid"
)

var (
	errNoFile      = errors.New("no file was sent")
	errNoFilename  = errors.New("file has no name")
	errInvalidForm = errors.New("invalid multipart form")
)

// multipartMemory is how much of a form ParseMultipartForm keeps in memory.
const multipartMemory = 1 << 20

// upload is a request file spooled to a private temp file.
type upload struct {
	id       string
	filename string
	size     int64
	file     *os.File
	form     *multipart.Form
}

// receiveUpload enforces the size limit, parses the multipart form and spools
// the first present file field into the upload directory. On error nothing is
// left on disk; on success the caller must call cleanup.
func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	up := &upload{id: uuid.New().String(), form: r.MultipartForm}

	src, header, err := formFile(r, fileFields...)
	if err != nil {
		up.removeForm()
		return nil, err
	}
	defer src.Close()

	if header.Filename == "" {
		up.removeForm()
		return nil, errNoFilename
	}
	up.filename = header.Filename

	// Atomic scope: the temp file is removed on every failure path below.
	tmp, err := os.CreateTemp(h.opts.UploadDir, "upload-*.tmp")
	if err != nil {
		up.removeForm()
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	up.file = tmp

	// Buffered writer for efficient disk I/O.
	bw := bufio.NewWriter(tmp)
	n, err := io.Copy(bw, src)
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		up.cleanup(h.logger)
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	up.size = n

	return up, nil
}

// cleanup closes and removes the spooled file and any multipart temp files.
func (u *upload) cleanup(logger *slog.Logger) {
	if u.file != nil {
		name := u.file.Name()
		_ = u.file.Close()
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("remove temp file", slog.String("path", name), slog.String("error", err.Error()))
		}
		u.file = nil
	}
	u.removeForm()
}

func (u *upload) removeForm() {
	if u.form != nil {
		_ = u.form.RemoveAll()
		u.form = nil
	}
}

func (h *Handler) writeUploadError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Warn("upload rejected", slog.String("error", err.Error()))

	switch {
	case errors.Is(err, errNoFile), errors.Is(err, errNoFilename):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errInvalidForm):
		writeError(w, http.StatusBadRequest, errInvalidForm.Error())
	default:
		writeError(w, statusFor(err), messageFor(err))
	}
}

// formFile returns the first file present under any of names.
func formFile(r *http.Request, names ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, name := range names {
		f, header, err := r.FormFile(name)
		if err == nil {
			return f, header, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("%w: %w", errInvalidForm, err)
		}
	}
	return nil, nil, errNoFile
}

// formValue returns the first non-empty value under any of names.
func formValue(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := r.FormValue(name); v != "" {
			return v
		}
	}
	return ""
}
