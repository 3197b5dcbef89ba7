package media

import (
	"mime"
	"net/http"
	"strings"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
)

const octetStream = "application/octet-stream"

// imageExtensions maps accepted image types to the extension stored files get.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type uploadPolicy struct {
	extensions  map[string]string
	description string
}

var policiesByKind = map[enums.MediaKind]uploadPolicy{
	enums.MediaKindStore:   {extensions: imageExtensions, description: "PNG, JPEG, WebP or GIF images"},
	enums.MediaKindProduct: {extensions: imageExtensions, description: "PNG, JPEG, WebP or GIF images"},
}

func normalizeMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

// detectMimeType sniffs the first bytes of the file. A declared part header
// that names a concrete type must agree with the sniffed one.
func detectMimeType(declared string, head []byte) (string, bool) {
	sniffed := normalizeMediaType(http.DetectContentType(head))
	if mt := normalizeMediaType(declared); mt != "" && mt != octetStream && mt != sniffed {
		return sniffed, false
	}
	return sniffed, true
}

func mimeAllowed(kind enums.MediaKind, mimeType string) bool {
	_, ok := policiesByKind[kind].extensions[mimeType]
	return ok
}

func extensionForMime(kind enums.MediaKind, mimeType string) string {
	return policiesByKind[kind].extensions[mimeType]
}

func allowedMimeDescription(kind enums.MediaKind) string {
	if policy, ok := policiesByKind[kind]; ok && policy.description != "" {
		return policy.description
	}
	return "the approved mime types"
}
