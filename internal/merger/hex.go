package merger

import (
	"bytes"
	"fmt"

	"github.com/marcinbor85/gohex"
)

// HexLineLength is the number of data bytes per Intel HEX record.
const HexLineLength = 16

// EncodeHex renders segments as Intel HEX at their flash offsets.
// Empty segments are skipped; gaps are left out of the file.
func EncodeHex(segments []Segment) ([]byte, error) {
	mem := gohex.NewMemory()
	for _, s := range segments {
		if len(s.Data) == 0 {
			continue
		}
		if err := mem.AddBinary(s.Offset, s.Data); err != nil {
			return nil, fmt.Errorf("failed to add %s to hex image: %w", s.Name, err)
		}
	}

	var buf bytes.Buffer
	mem.DumpIntelHex(&buf, HexLineLength)
	return buf.Bytes(), nil
}
