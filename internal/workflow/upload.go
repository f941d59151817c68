package workflow

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// MaxUploadBytes caps a single uploaded resume file.
const MaxUploadBytes = 1 << 20

const (
	textPlain   = "text/plain"
	octetStream = "application/octet-stream"
)

const replacementChar = "\uFFFD"

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// LoadTextFile reads an uploaded resume. Only files declared as text/plain
// are accepted, and content that sniffs as a binary format is refused. Text
// in another encoding is decoded to UTF-8; undecodable bytes become U+FFFD.
func LoadTextFile(declaredContentType string, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(declaredContentType))
	if err != nil || !strings.EqualFold(mediaType, textPlain) {
		return "", &Warning{Message: msgUnsupportedFile, Err: fmt.Errorf("%w: declared %q", ErrUnsupportedFile, declaredContentType)}
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", &Warning{Message: msgFileTooLarge, Err: ErrFileTooLarge}
	}
	if len(data) == 0 {
		return "", nil
	}

	detected := mimetype.Detect(data)
	if !looksLikeText(detected, data) {
		return "", &Warning{Message: msgUnsupportedFile, Err: fmt.Errorf("%w: content sniffed as %s", ErrUnsupportedFile, detected.String())}
	}
	return decodeText(data, params["charset"], detected), nil
}

// looksLikeText accepts anything sniffed as text, plus unrecognized content
// without NUL bytes (legacy single-byte encodings often sniff as unknown).
func looksLikeText(detected *mimetype.MIME, data []byte) bool {
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		return true
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(textPlain) {
			return true
		}
	}
	return detected.Is(octetStream) && bytes.IndexByte(data, 0) < 0
}

func decodeText(data []byte, declaredCharset string, detected *mimetype.MIME) string {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return strings.ToValidUTF8(string(out), replacementChar)
		}
	case bytes.HasPrefix(data, bomUTF8):
		return strings.ToValidUTF8(string(data[len(bomUTF8):]), replacementChar)
	case utf8.Valid(data):
		return string(data)
	}

	enc := encodingFor(declaredCharset)
	if enc == nil {
		_, params, _ := mime.ParseMediaType(detected.String())
		enc = encodingFor(params["charset"])
	}
	if enc == nil {
		enc = charmap.Windows1252
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), replacementChar)
	}
	return strings.ToValidUTF8(string(out), replacementChar)
}

// encodingFor resolves a charset label, ignoring UTF-8 since content that
// reaches the lookup is already known not to be valid UTF-8.
func encodingFor(label string) encoding.Encoding {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	return enc
}
