package importer

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts raw file bytes to text. A byte-order mark wins, then a
// charset parameter on contentType, then UTF-8 when the bytes are valid
// UTF-8. Anything else is read as GB18030, the usual encoding for Chinese
// novel files.
func DecodeText(data []byte, contentType string) (string, error) {
	if enc := bomEncoding(data); enc != nil {
		return decodeWith(enc, data)
	}

	if enc := declaredEncoding(contentType); enc != nil {
		return decodeWith(enc, data)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	return decodeWith(simplifiedchinese.GB18030, data)
}

func bomEncoding(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}), bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		// BOMOverride picks the byte order from the mark itself.
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	return nil
}

func declaredEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return nil
	}
	enc, _ := charset.Lookup(label)
	return enc
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	decoder := unicode.BOMOverride(enc.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(out), nil
}
