package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pietwauters/fwmerge/internal/layout"
	"github.com/pietwauters/fwmerge/internal/merger"
)

// textReporter prints merge events as human-readable progress.
type textReporter struct {
	out io.Writer
}

var _ merger.Reporter = (*textReporter)(nil)

// regionLabels maps region names to the header and "added" labels.
var regionLabels = map[string][2]string{
	"bootloader": {"Bootloader:     ", "Bootloader"},
	"partitions": {"Partition Table:", "Partition table"},
	"firmware":   {"Firmware:       ", "Firmware"},
}

func label(name string, i int) string {
	if l, ok := regionLabels[name]; ok {
		return l[i]
	}
	return name
}

func (r *textReporter) MergeStarted(regions []layout.Region) {
	fmt.Fprintln(r.out, "Merging firmware files...")
	for _, reg := range regions {
		fmt.Fprintf(r.out, "  %s %s @ 0x%05X\n", label(reg.Name, 0), reg.Path, reg.Offset)
	}
}

func (r *textReporter) SegmentAdded(seg merger.Segment) {
	fmt.Fprintf(r.out, "  ✓ %s added (%d bytes)\n", label(seg.Name, 1), len(seg.Data))
}

func (r *textReporter) ImageWritten(res *merger.Result) {
	fmt.Fprintf(r.out, "\n✓ Merged firmware created: %s\n", res.Output)
	fmt.Fprintf(r.out, "  Total size: %s bytes (%.2f MB)\n",
		groupThousands(res.Size), float64(res.Size)/1024/1024)
	if res.HexOutput != "" {
		fmt.Fprintf(r.out, "  Intel HEX:  %s\n", res.HexOutput)
	}
}

// groupThousands formats n with comma separators, e.g. 65,736.
func groupThousands(n int) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
