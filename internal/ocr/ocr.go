package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/velobase/jobsheet-tracker/constants"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	HeicConverter string // "heif-convert" | "magick" | "sips"

	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for a uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// RecognitionResult is one OCR pass over a job-sheet photo. Text is handed to
// the extraction core as opaque input regardless of confidence.
type RecognitionResult struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Recognizer turns a single photographed job sheet into recognized text.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (RecognitionResult, error)
}

// TesseractRecognizer shells out to tesseract via a Runner, which tests stub.
type TesseractRecognizer struct {
	cfg    Config
	runner Runner
}

func NewTesseractRecognizer(cfg Config) *TesseractRecognizer {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &TesseractRecognizer{cfg: cfg, runner: newExecRunner(nil)}
}

// Recognize runs OCR over one image. HEIC input is converted to PNG first.
func (r *TesseractRecognizer) Recognize(ctx context.Context, path string) (RecognitionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		return RecognitionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	var warns []string
	if constants.IsHEICExt(ext) {
		out, w, cleanup, err := convertHEICtoPNG(ctx, r.runner, r.cfg.HeicConverter, path)
		warns = append(warns, w...)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			return RecognitionResult{Warnings: warns}, err
		}
		path = out
	}

	txt, w, err := r.tesseractOCR(ctx, path)
	warns = append(warns, w...)
	if err != nil {
		return RecognitionResult{Warnings: warns}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if r.cfg.EnableTSVConfidence {
		if c, w2, err2 := r.tesseractTSVConfidence(ctx, path); err2 == nil {
			ocrConf = c
			warns = append(warns, w2...)
		} else {
			warns = append(warns, err2.Error())
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight OCR higher if present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return RecognitionResult{
		Text:       txt,
		Language:   r.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: conf,
	}, nil
}

func (r *TesseractRecognizer) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (r *TesseractRecognizer) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := []string{path, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}
	lines := strings.Split(string(out), "\n")
	// conf is column 11 of 12; the header line is skipped
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	mean := sum / n // 0..100
	return float32(mean / 100.0), nil, nil
}
