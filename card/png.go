package card

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")

	// ErrNoCardData is returned for images which carry no embedded card.
	ErrNoCardData = errors.New("no character data in image")
)

// Text chunk keywords used by card editors, newer first.
var pngKeywords = []string{"ccv3", "chara"}

// FromPNG extracts card JSON embedded in PNG tEXt chunk as base64.
func FromPNG(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("not a PNG image")
	}

	found := make(map[string][]byte)
	for rest := data[len(pngSignature):]; len(rest) >= 12; {
		size := binary.BigEndian.Uint32(rest[:4])
		if uint64(size)+12 > uint64(len(rest)) {
			return nil, errors.New("truncated PNG chunk")
		}
		typ, body := string(rest[4:8]), rest[8:8+size]
		rest = rest[12+size:]

		if typ == "IEND" {
			break
		}
		if typ != "tEXt" {
			continue
		}
		keyword, text, ok := bytes.Cut(body, []byte{0})
		if !ok {
			continue
		}
		if _, seen := found[string(keyword)]; !seen {
			found[string(keyword)] = text
		}
	}

	for _, k := range pngKeywords {
		text, ok := found[k]
		if !ok {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(text)))
		if err != nil {
			return nil, fmt.Errorf("unable to decode %s chunk: %w", k, err)
		}
		return decoded, nil
	}
	return nil, ErrNoCardData
}
