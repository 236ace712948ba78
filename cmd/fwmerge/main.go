package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pietwauters/fwmerge/internal/layout"
	"github.com/pietwauters/fwmerge/internal/merger"
	"github.com/pietwauters/fwmerge/internal/serial"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	buildDirFlag string
	outputFlag   string
	hexFlag      bool
	quietFlag    bool
)

// detectPort picks the serial port shown in the flash hint.
var detectPort = serial.SinglePort

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the CLI and returns the process exit code.
// All output, diagnostics included, goes to out.
func run(args []string, out io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	if err := rootCmd.Execute(); err != nil {
		printError(out, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fwmerge",
		Short: "Merge ESP32 firmware binaries into a single image",
		Long: `fwmerge combines the bootloader, partition table and firmware
produced by 'platformio run' into one binary that can be flashed at 0x0.

Layout:
  - Bootloader at 0x1000
  - Partition table at 0x8000
  - Firmware at 0x10000

Unused space is filled with 0xFF (erased flash).`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runMerge,
	}
	rootCmd.Flags().StringVarP(&buildDirFlag, "build-dir", "d", layout.DefaultBuildDir, "Directory with bootloader.bin, partitions.bin and firmware.bin")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", layout.DefaultOutput, "Merged image path")
	rootCmd.Flags().BoolVar(&hexFlag, "hex", false, "Also write an Intel HEX copy next to the merged image")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Hide the progress bar")

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fwmerge %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		RunE:  runList,
	}

	rootCmd.AddCommand(versionCmd, listCmd)
	return rootCmd
}

func runMerge(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	opts := merger.Options{
		BuildDir: buildDirFlag,
		Output:   outputFlag,
		Layout:   layout.Default,
		Reporter: &textReporter{out: out},
	}
	if hexFlag {
		opts.HexOutput = hexPath(outputFlag)
	}

	m := merger.New(opts)

	var bar *progressbar.ProgressBar
	if !quietFlag {
		m.SetProgressCallback(func(current, total int) {
			if bar == nil {
				bar = newWriteBar(out, total)
			}
			bar.Set(current)
		})
	}

	res, err := m.Merge()
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	printHint(out, res, detectPort())
	return nil
}

func newWriteBar(out io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("  Writing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100),
		progressbar.OptionClearOnFinish(),
	)
}

// hexPath derives the Intel HEX path from the binary output path.
// An output already named *.hex gets a second extension.
func hexPath(output string) string {
	ext := filepath.Ext(output)
	if strings.EqualFold(ext, ".hex") {
		return output + ".hex"
	}
	return strings.TrimSuffix(output, ext) + ".hex"
}

func printHint(out io.Writer, res *merger.Result, port string) {
	fmt.Fprintf(out, "\nTo flash manually:\n")
	if port != "" {
		fmt.Fprintf(out, "  esptool.py --port %s write_flash 0x0 %s\n", port, res.Output)
	} else {
		fmt.Fprintf(out, "  esptool.py write_flash 0x0 %s\n", res.Output)
	}
	fmt.Fprintf(out, "\nFor esp-launchpad distribution:\n")
	fmt.Fprintf(out, "  Upload %s along with manifest.json and flash.html\n", res.Output)
}

const buildHint = "Please run 'platformio run' first to build the firmware."

func printError(out io.Writer, err error) {
	var missingDir *merger.MissingBuildOutputError
	var missingFiles *merger.MissingInputFileError

	switch {
	case errors.As(err, &missingDir):
		fmt.Fprintf(out, "Error: Build directory '%s' not found.\n", missingDir.Dir)
		fmt.Fprintln(out, buildHint)
	case errors.As(err, &missingFiles):
		fmt.Fprintln(out, "Error: Missing build files:")
		for _, p := range missingFiles.Paths {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		fmt.Fprintf(out, "\n%s\n", buildHint)
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}

	fmt.Fprintln(out, "Available serial ports:")
	for _, p := range ports {
		fmt.Fprintf(out, "  %s\n", p)
	}

	return nil
}
