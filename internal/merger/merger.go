package merger

import (
	"os"

	"github.com/pietwauters/fwmerge/internal/layout"
)

// ProgressCallback is called to report bytes written to the output image.
type ProgressCallback func(current, total int)

// Reporter receives merge events as they happen. SegmentAdded and
// ImageWritten are only called once the output is on disk.
type Reporter interface {
	MergeStarted(regions []layout.Region)
	SegmentAdded(seg Segment)
	ImageWritten(res *Result)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) MergeStarted([]layout.Region) {}
func (NopReporter) SegmentAdded(Segment)         {}
func (NopReporter) ImageWritten(*Result)         {}

// Options configures a Merger. Zero values fall back to the layout defaults.
type Options struct {
	BuildDir  string
	Output    string
	HexOutput string // optional Intel HEX copy, empty to skip
	Layout    layout.Layout
	Reporter  Reporter
}

// Result describes a successful merge.
type Result struct {
	Output    string
	HexOutput string
	Size      int
	Segments  []Segment
}

// Merger combines the bootloader, partition table and firmware images
// into a single flash image.
type Merger struct {
	buildDir  string
	output    string
	hexOutput string
	layout    layout.Layout
	reporter  Reporter
	progress  ProgressCallback
}

// New creates a new Merger.
func New(opts Options) *Merger {
	m := &Merger{
		buildDir:  opts.BuildDir,
		output:    opts.Output,
		hexOutput: opts.HexOutput,
		layout:    opts.Layout,
		reporter:  opts.Reporter,
	}
	if m.buildDir == "" {
		m.buildDir = layout.DefaultBuildDir
	}
	if m.output == "" {
		m.output = layout.DefaultOutput
	}
	if m.layout == (layout.Layout{}) {
		m.layout = layout.Default
	}
	if m.reporter == nil {
		m.reporter = NopReporter{}
	}
	return m
}

// SetProgressCallback sets the progress callback function.
func (m *Merger) SetProgressCallback(cb ProgressCallback) {
	m.progress = cb
}

// reportProgress calls the progress callback if set.
func (m *Merger) reportProgress(current, total int) {
	if m.progress != nil {
		m.progress(current, total)
	}
}

// Layout returns the layout used by the merger.
func (m *Merger) Layout() layout.Layout {
	return m.layout
}

// BuildDir returns the directory the input images are read from.
func (m *Merger) BuildDir() string {
	return m.buildDir
}

// Check verifies that the build directory and every input file exist.
// It returns the regions to merge. Nothing is opened.
func (m *Merger) Check() ([]layout.Region, error) {
	info, err := os.Stat(m.buildDir)
	if err != nil || !info.IsDir() {
		return nil, &MissingBuildOutputError{Dir: m.buildDir}
	}

	regions := m.layout.Regions(m.buildDir)

	var missing []string
	for _, r := range regions {
		info, err := os.Stat(r.Path)
		if err != nil || info.IsDir() {
			missing = append(missing, r.Path)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingInputFileError{Paths: missing}
	}

	return regions, nil
}

// Merge reads the input images, composes the flash image and writes it
// to the output path. The output is replaced only if every step succeeds.
// If renaming the image fails after the HEX copy was committed, the HEX
// copy is already replaced.
func (m *Merger) Merge() (*Result, error) {
	regions, err := m.Check()
	if err != nil {
		return nil, err
	}

	if err := m.layout.Validate(); err != nil {
		return nil, err
	}

	if m.hexOutput != "" && samePath(m.hexOutput, m.output) {
		return nil, &OutputConflictError{Path: m.output}
	}

	m.reporter.MergeStarted(regions)

	segments := make([]Segment, 0, len(regions))
	for _, r := range regions {
		data, err := os.ReadFile(r.Path)
		if err != nil {
			return nil, &IOError{Op: "read", Path: r.Path, Err: err}
		}
		segments = append(segments, Segment{Region: r, Data: data})
	}

	if err := m.layout.Check(split(segments)); err != nil {
		return nil, err
	}

	image := Compose(segments)

	var hexData []byte
	if m.hexOutput != "" {
		if hexData, err = EncodeHex(segments); err != nil {
			return nil, err
		}
	}

	if err := m.write(image, hexData); err != nil {
		return nil, err
	}

	for _, s := range segments {
		m.reporter.SegmentAdded(s)
	}

	res := &Result{
		Output:    m.output,
		HexOutput: m.hexOutput,
		Size:      len(image),
		Segments:  segments,
	}

	m.reporter.ImageWritten(res)
	return res, nil
}

// write stages the image and the optional HEX copy, then renames them into
// place. The HEX copy is committed first so a failure leaves the image
// untouched.
func (m *Merger) write(image, hexData []byte) error {
	imageTmp, err := stage(m.output, image, m.reportProgress)
	if err != nil {
		return err
	}

	if m.hexOutput == "" {
		if err := commit(imageTmp, m.output); err != nil {
			discard(imageTmp)
			return err
		}
		return nil
	}

	hexTmp, err := stage(m.hexOutput, hexData, func(current, total int) {})
	if err != nil {
		discard(imageTmp)
		return err
	}

	if err := commit(hexTmp, m.hexOutput); err != nil {
		discard(imageTmp, hexTmp)
		return err
	}
	if err := commit(imageTmp, m.output); err != nil {
		discard(imageTmp)
		return err
	}
	return nil
}
