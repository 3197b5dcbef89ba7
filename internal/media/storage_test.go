package media

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000IHDR")

type upload struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

func fileHeaders(t *testing.T, uploads ...upload) map[string][]*multipart.FileHeader {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+u.field+`"; filename="`+u.filename+`"`)
		if u.contentType != "" {
			h.Set("Content-Type", u.contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(u.body); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	form, err := multipart.NewReader(buf, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File
}

func newTestStorage(t *testing.T, kind enums.MediaKind) *Storage {
	t.Helper()
	s, err := NewStorage(kind, filepath.Join(t.TempDir(), "uploads"), logger.Nop())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func TestSaveNamesFileAfterFieldAndTimestamp(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	files := fileHeaders(t, upload{field: "images", filename: "Rose.PNG", contentType: "image/png", body: pngHeader})

	name, err := s.Save(context.Background(), "images", files["images"][0])
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name != "images-1700000000123.png" {
		t.Fatalf("unexpected name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Fatalf("stored content differs")
	}
}

func TestSaveAvoidsSameMillisecondCollision(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	files := fileHeaders(t,
		upload{field: "images", filename: "a.png", contentType: "image/png", body: pngHeader},
		upload{field: "images", filename: "b.png", contentType: "image/png", body: pngHeader},
	)

	names, err := s.SaveAll(context.Background(), "images", files["images"])
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if len(names) != 2 || names[0] == names[1] {
		t.Fatalf("expected two distinct names, got %v", names)
	}
	if names[1] != "images-1700000000123-1.png" {
		t.Fatalf("unexpected suffixed name %q", names[1])
	}
}

func TestSaveSniffsContentWhenHeaderMissing(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindStore)
	files := fileHeaders(t, upload{field: "propic", filename: "avatar", contentType: "application/octet-stream", body: pngHeader})

	name, err := s.Save(context.Background(), "propic", files["propic"][0])
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("expected extension derived from content, got %q", name)
	}
}

func TestSaveRejectsNonImages(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	files := fileHeaders(t, upload{field: "images", filename: "notes.txt", contentType: "text/plain", body: []byte("hello")})

	_, err := s.Save(context.Background(), "images", files["images"][0])
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Fatalf("rejected upload must not be written")
	}
}

func TestSaveRejectsMarkupDeclaredAsImage(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	files := fileHeaders(t, upload{
		field:       "images",
		filename:    "x.html",
		contentType: "image/png",
		body:        []byte("<html><script>alert(1)</script></html>"),
	})

	_, err := s.Save(context.Background(), "images", files["images"][0])
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Fatalf("rejected upload must not be written")
	}
}

func TestSaveIgnoresClientFileExtension(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	files := fileHeaders(t, upload{field: "images", filename: "evil.html", contentType: "image/png", body: pngHeader})

	name, err := s.Save(context.Background(), "images", files["images"][0])
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(name) != ".png" {
		t.Fatalf("expected extension from sniffed type, got %q", name)
	}
}

func TestSaveRejectsDeclaredTypeMismatch(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindStore)
	files := fileHeaders(t, upload{field: "propic", filename: "a.jpg", contentType: "image/jpeg", body: pngHeader})

	if _, err := s.Save(context.Background(), "propic", files["propic"][0]); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveAllRollsBackOnFailure(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	files := fileHeaders(t,
		upload{field: "images", filename: "a.png", contentType: "image/png", body: pngHeader},
		upload{field: "images", filename: "b.txt", contentType: "text/plain", body: []byte("nope")},
	)

	if _, err := s.SaveAll(context.Background(), "images", files["images"]); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Fatalf("expected rollback to remove written files, found %d", len(entries))
	}
}

func TestRemoveIgnoresMissingAndRejectsTraversal(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindProduct)
	ctx := context.Background()

	if err := s.Remove(ctx, "missing.png", ""); err != nil {
		t.Fatalf("missing files should be ignored, got %v", err)
	}
	if err := s.Remove(ctx, "../stores.json"); err == nil {
		t.Fatal("expected traversal to be refused")
	}
}

func TestListSkipsHiddenFiles(t *testing.T) {
	s := newTestStorage(t, enums.MediaKindStore)
	_ = os.WriteFile(filepath.Join(s.Dir(), "propic-1.png"), pngHeader, 0o644)
	_ = os.WriteFile(filepath.Join(s.Dir(), ".keep"), nil, 0o644)
	_ = os.Mkdir(filepath.Join(s.Dir(), "nested"), 0o755)

	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].Name != "propic-1.png" {
		t.Fatalf("unexpected listing %+v", files)
	}
}

func TestStale(t *testing.T) {
	got := Stale([]string{"a.png", "b.png", "b.png", ""}, []string{"b.png", "c.png"})
	if len(got) != 1 || got[0] != "a.png" {
		t.Fatalf("unexpected stale set %v", got)
	}
}

func TestAllowedMimeDescription(t *testing.T) {
	if got := allowedMimeDescription(enums.MediaKindProduct); !strings.Contains(got, "PNG") {
		t.Fatalf("unexpected description %q", got)
	}
	if got := allowedMimeDescription(enums.MediaKind("other")); got != "the approved mime types" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
