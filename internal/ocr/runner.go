package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner executes an external recognition command. The indirection exists so
// tests can stub tesseract and the HEIC converters without spawning anything.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// stderr attached to failure logs is clipped to keep a crashing converter
// from flooding the log stream.
const maxLoggedStderr = 8 << 10

type execRunner struct {
	log *slog.Logger
}

func newExecRunner(log *slog.Logger) execRunner {
	if log == nil {
		log = slog.Default()
	}
	return execRunner{log: log}
}

func (e execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	log := e.log
	if log == nil {
		log = slog.Default()
	}

	var out, errb bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		log.Error("ocr.exec.failed",
			"cmd", name,
			"args", args,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
			"stderr", clipOutput(errb.String(), maxLoggedStderr),
		)
		return out.Bytes(), errb.Bytes(), err
	}

	log.Debug("ocr.exec.ok",
		"cmd", name,
		"args", args,
		"duration_ms", elapsed.Milliseconds(),
		"stdout_bytes", out.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func clipOutput(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(clipped)"
}
