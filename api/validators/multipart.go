package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
)

const multipartMemory = 8 << 20

// Form wraps a parsed multipart or url-encoded request.
type Form struct {
	r *http.Request
}

// ParseForm parses the request body as multipart/form-data, falling back to
// url-encoded forms. maxBytes caps the body size when positive.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Form, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "upload exceeds size limit")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return &Form{r: r}, nil
}

// Value returns the first value for key, trimmed.
func (f *Form) Value(key string) string {
	return strings.TrimSpace(f.r.FormValue(key))
}

// RawValue returns the first value for key exactly as submitted.
func (f *Form) RawValue(key string) string {
	return f.r.FormValue(key)
}

// Values returns every value submitted as key or key[], in order.
func (f *Form) Values(key string) []string {
	var out []string
	if f.r.MultipartForm != nil {
		out = append(out, f.r.MultipartForm.Value[key]...)
		out = append(out, f.r.MultipartForm.Value[key+"[]"]...)
		if len(out) > 0 {
			return out
		}
	}
	out = append(out, f.r.PostForm[key]...)
	out = append(out, f.r.PostForm[key+"[]"]...)
	return out
}

// Files returns the uploaded files for field, if any.
func (f *Form) Files(field string) []*multipart.FileHeader {
	if f.r.MultipartForm == nil {
		return nil
	}
	return f.r.MultipartForm.File[field]
}

// File returns the first uploaded file for field or nil.
func (f *Form) File(field string) *multipart.FileHeader {
	files := f.Files(field)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// Close removes temporary files spilled to disk while parsing.
func (f *Form) Close() error {
	if f.r.MultipartForm == nil {
		return nil
	}
	return f.r.MultipartForm.RemoveAll()
}
