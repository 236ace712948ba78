package layout

import (
	"math"
	"path/filepath"
)

// Input and output file names
const (
	BootloaderFile = "bootloader.bin"
	PartitionsFile = "partitions.bin"
	FirmwareFile   = "firmware.bin"

	DefaultBuildDir = ".pio/build/nodemcu-32s"
	DefaultOutput   = "firmware_merged.bin"
)

// Flash parameters
const (
	FillByte        = 0xFF   // erased flash
	FlashSectorSize = 0x1000 // 4KB sectors
)

// Layout describes where each image lives in the flash address space.
type Layout struct {
	BootloaderOffset uint32
	PartitionsOffset uint32
	FirmwareOffset   uint32
	FlashSize        uint32 // 0 disables the ceiling check
}

// Default is the ESP32 layout with 16MB of flash.
var Default = Layout{
	BootloaderOffset: 0x1000,
	PartitionsOffset: 0x8000,
	FirmwareOffset:   0x10000,
	FlashSize:        0x1000000,
}

// Region is a named slot of the layout backed by a file.
type Region struct {
	Name   string
	Path   string
	Offset uint32
}

// Validate checks that the offsets are strictly increasing and below the
// flash size.
func (l Layout) Validate() error {
	if l.BootloaderOffset >= l.PartitionsOffset {
		return &InvalidLayoutError{Reason: "bootloader offset must be below partition table offset"}
	}
	if l.PartitionsOffset >= l.FirmwareOffset {
		return &InvalidLayoutError{Reason: "partition table offset must be below firmware offset"}
	}
	if l.FlashSize != 0 && l.FirmwareOffset >= l.FlashSize {
		return &InvalidLayoutError{Reason: "firmware offset must be below flash size"}
	}
	return nil
}

// Regions returns the bootloader, partition table and firmware regions
// with paths under dir, in flash order.
func (l Layout) Regions(dir string) []Region {
	return []Region{
		{Name: "bootloader", Path: filepath.Join(dir, BootloaderFile), Offset: l.BootloaderOffset},
		{Name: "partitions", Path: filepath.Join(dir, PartitionsFile), Offset: l.PartitionsOffset},
		{Name: "firmware", Path: filepath.Join(dir, FirmwareFile), Offset: l.FirmwareOffset},
	}
}

// Check verifies that segments of the given sizes, placed at the regions'
// offsets, do not run into the next region, past the flash size or past
// the largest image the platform can allocate.
// regions must be sorted by offset and sizes must match regions by index.
func (l Layout) Check(regions []Region, sizes []int) error {
	for i, r := range regions {
		end := uint64(r.Offset) + uint64(sizes[i])
		if end > math.MaxInt {
			return &OverflowError{
				Segment: r.Name,
				End:     end,
				Limit:   math.MaxInt,
				Next:    "end of address space",
			}
		}

		var limit uint64
		var next string
		switch {
		case i+1 < len(regions):
			limit = uint64(regions[i+1].Offset)
			next = regions[i+1].Name
		case l.FlashSize != 0:
			limit = uint64(l.FlashSize)
			next = "end of flash"
		default:
			continue
		}

		if end > limit {
			return &OverflowError{
				Segment: r.Name,
				End:     end,
				Limit:   limit,
				Next:    next,
			}
		}
	}
	return nil
}

// ImageSize returns the merged image length for segments of the given
// sizes: the end of the highest segment.
func ImageSize(regions []Region, sizes []int) uint64 {
	var size uint64
	for i, r := range regions {
		if end := uint64(r.Offset) + uint64(sizes[i]); end > size {
			size = end
		}
	}
	return size
}
