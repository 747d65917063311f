package install

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/easy-install/ei/internal/log"
)

var alreadyProcessedMarkers = []string{
	"already packed",
	"already compressed",
	"notpackable",
	"no symbols",
	"already stripped",
}

// Optimise runs strip and/or upx over path when requested. Every failure
// is non-fatal: a missing tool or an "already processed" condition is
// logged and the install proceeds unstripped/uncompressed.
func Optimise(path string, strip, upx bool, logger log.Logger) {
	if logger == nil {
		logger = log.NewNoop()
	}

	if strip {
		runOptimiseStep(logger, "strip", path, func() error {
			_, err := exec.Command("strip", path).Output()
			return err
		})
	}

	if upx {
		if alreadyPacked(path) {
			logger.Info("upx: already packed, skipping", "path", path)
		} else {
			runOptimiseStep(logger, "upx", path, func() error {
				_, err := exec.Command("upx", "--best", "--lzma", path).Output()
				return err
			})
		}
	}
}

func alreadyPacked(path string) bool {
	out, err := exec.Command("upx", "-t", path).CombinedOutput()
	if err != nil {
		return false
	}
	_ = out
	return true
}

func runOptimiseStep(logger log.Logger, tool, path string, run func() error) {
	err := run()
	if err == nil {
		logger.Info(tool+": done", "path", path)
		return
	}

	var execErr *exec.ExitError
	if errors.As(err, &execErr) {
		stderr := strings.ToLower(string(execErr.Stderr))
		for _, marker := range alreadyProcessedMarkers {
			if strings.Contains(stderr, marker) {
				logger.Info(tool+": already processed, skipping", "path", path)
				return
			}
		}
	}

	if errors.Is(err, exec.ErrNotFound) {
		logger.Warn(tool+": not found on PATH, skipping", "path", path, "hint", "install "+tool+" to enable this optimisation")
		return
	}

	logger.Warn(tool+": failed, continuing unoptimised", "path", path, "error", err)
}
