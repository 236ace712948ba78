package merger

import (
	"bytes"

	"github.com/pietwauters/fwmerge/internal/layout"
)

// Segment is an input image read from disk and its target region.
type Segment struct {
	layout.Region
	Data []byte
}

// Compose builds the flash image for segments. The image ends with the
// highest segment and every byte not covered by a segment is 0xFF.
// Segments are copied in order, so a later one wins on overlap.
// The image size must fit in an int; layout.Check guarantees that.
func Compose(segments []Segment) []byte {
	regions, sizes := split(segments)
	image := bytes.Repeat([]byte{layout.FillByte}, int(layout.ImageSize(regions, sizes)))

	for _, s := range segments {
		copy(image[s.Offset:], s.Data)
	}

	return image
}

func split(segments []Segment) ([]layout.Region, []int) {
	regions := make([]layout.Region, len(segments))
	sizes := make([]int, len(segments))
	for i, s := range segments {
		regions[i] = s.Region
		sizes[i] = len(s.Data)
	}
	return regions, sizes
}
