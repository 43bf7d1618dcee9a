package sexp

import "encoding/base64"

// unwrapTransport strips "{...}" framing and base64-decodes the interior
// when cfg.Transport is TransportBase64 and src looks framed. It returns
// src unchanged otherwise.
func unwrapTransport(cfg Config, src []byte) ([]byte, error) {
	if cfg.Transport != TransportBase64 || len(src) == 0 || src[0] != '{' {
		return src, nil
	}
	end := -1
	for i := len(src) - 1; i > 0; i-- {
		if src[i] == '}' {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, parseErr(KindBadTransport, 0, "missing closing '}' in transport framing")
	}
	inner := src[1:end]
	decoded, err := decodeBase64Lenient(inner)
	if err != nil {
		return nil, parseErr(KindBadTransport, 1, "invalid base64 in transport framing")
	}
	return decoded, nil
}

// WrapTransport applies "{<base64>}" outer framing to stream, as required
// whenever cfg.Transport is TransportBase64 (§4.5: "always emitted for
// writing when set").
func WrapTransport(cfg Config, stream []byte) []byte {
	if cfg.Transport != TransportBase64 {
		return stream
	}
	var enc *base64.Encoding
	if cfg.Base64Padding {
		enc = base64.StdEncoding
	} else {
		enc = base64.RawStdEncoding
	}
	out := make([]byte, 0, enc.EncodedLen(len(stream))+2)
	out = append(out, '{')
	b64 := make([]byte, enc.EncodedLen(len(stream)))
	enc.Encode(b64, stream)
	out = append(out, b64...)
	out = append(out, '}')
	return out
}
