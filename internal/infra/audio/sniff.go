package audio

import (
	"github.com/gabriel-vasile/mimetype"
)

// DetectMime sniffs the file content. The declared extension is ignored.
func DetectMime(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// Allowed reports whether mime, or one of its aliases, is in the allow list.
func Allowed(mime string, allow []string) bool {
	m := mimetype.Lookup(mime)
	for _, a := range allow {
		if a == mime || (m != nil && m.Is(a)) {
			return true
		}
	}
	return false
}
