package media

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const inlineScheme = "data:"

// IsInline reports whether ref holds an inline payload rather than a durable
// URL. Only the scheme prefix is inspected.
func IsInline(ref string) bool {
	return strings.HasPrefix(ref, inlineScheme)
}

// decodeDataURI splits a data: URI into its media type and decoded bytes.
// Only the base64 form is accepted; generated media is never inlined as
// percent-encoded text.
func decodeDataURI(uri string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, inlineScheme)
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI: no comma separator")
	}
	enc, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return "", nil, fmt.Errorf("unsupported data URI encoding (want base64)")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI payload: %w", err)
	}
	return enc, data, nil
}
