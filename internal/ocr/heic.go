package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// heicConverters maps a configured converter binary to the argv that turns
// one HEIC/HEIF photo into a PNG at the given output path.
var heicConverters = map[string]func(in, out string) []string{
	"heif-convert": func(in, out string) []string { return []string{in, out} },
	"magick":       func(in, out string) []string { return []string{in, out} },
	"sips":         func(in, out string) []string { return []string{"-s", "format", "png", in, "--out", out} },
}

// convertHEICtoPNG renders a phone-camera HEIC/HEIF sheet photo to a
// temporary PNG tesseract can read. Returns the PNG path, any converter
// warnings, and a cleanup func that removes the temp directory.
func convertHEICtoPNG(ctx context.Context, r Runner, converter, in string) (string, []string, func(), error) {
	argv, ok := heicConverters[converter]
	if !ok {
		return "", nil, func() {}, fmt.Errorf("no HEIC converter %q: set HEIC_CONVERTER to heif-convert, magick or sips", converter)
	}

	tmpDir, err := os.MkdirTemp("", "jobsheet-heic-*")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "sheet.png")

	if _, errb, runErr := r.Run(ctx, converter, argv(in, out)...); runErr != nil {
		var warnings []string
		if len(errb) > 0 {
			warnings = []string{string(errb)}
		}
		return "", warnings, cleanup, fmt.Errorf("%s: %w", converter, runErr)
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", nil, cleanup, fmt.Errorf("HEIC conversion produced no output: %v", statErr)
	}
	return out, nil, cleanup, nil
}
