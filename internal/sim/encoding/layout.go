// Package encoding packs a city's template layout into a short string for the
// index.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeLayout encodes templates, given in cell order, as base64 varint pairs
// (palette index, run length). Every template must appear in palette.
func EncodeLayout(palette, templates []string) (string, error) {
	index := make(map[string]uint64, len(palette))
	for i, name := range palette {
		index[name] = uint64(i)
	}

	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	for i := 0; i < len(templates); {
		id, ok := index[templates[i]]
		if !ok {
			return "", fmt.Errorf("layout: template %q not in palette", templates[i])
		}
		run := 1
		for j := i + 1; j < len(templates) && templates[j] == templates[i]; j++ {
			run++
		}
		n := binary.PutUvarint(tmp[:], id)
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func DecodeLayout(palette []string, b64 string) ([]string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []string
	for i := 0; i < len(raw); {
		id, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("layout: bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("layout: bad varint at %d", i)
		}
		i += n
		if id >= uint64(len(palette)) {
			return nil, fmt.Errorf("layout: palette index %d out of range", id)
		}
		if run == 0 || run > 1<<20 {
			return nil, fmt.Errorf("layout: bad run length %d", run)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, palette[id])
		}
	}
	return out, nil
}
