package download

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/easy-install/ei/internal/httputil"
)

// Fetch downloads url's full body with bounded retries and exponential
// backoff, rendering a progress bar to stdout when output is an
// interactive terminal and quiet is false.
func Fetch(url string, retry uint64, timeout time.Duration, quiet bool) ([]byte, error) {
	resp, err := httputil.Get(url, retry, timeout)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	var dst io.Writer = &buf

	var bar *ProgressWriter
	if ShouldShowProgress(quiet) {
		bar = NewProgressWriter(&buf, resp.ContentLength, os.Stdout)
		dst = bar
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	if bar != nil {
		bar.Finish()
	}

	return buf.Bytes(), nil
}
