package download

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

const progressInterval = time.Second

// progressWriter counts bytes written to the temp file and logs the
// transfer state once per progressInterval, plus once on completion.
type progressWriter struct {
	w       io.Writer
	logger  *slog.Logger
	written int64
	total   int64
	start   time.Time
	last    time.Time
}

func newProgressWriter(w io.Writer, total int64, logger *slog.Logger) *progressWriter {
	now := time.Now()
	return &progressWriter{w: w, logger: logger, total: total, start: now, last: now}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)

	switch {
	case pw.total > 0 && pw.written == pw.total:
		pw.log("download complete")
	case time.Since(pw.last) >= progressInterval:
		pw.last = time.Now()
		pw.log("downloading")
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.start)

	attrs := []any{
		"written", pw.written,
		"elapsed", elapsed.Round(time.Millisecond),
	}

	if pw.total > 0 {
		attrs = append(attrs,
			"total", pw.total,
			"progress", fmt.Sprintf("%.1f%%", float64(pw.written)/float64(pw.total)*100),
		)
	}

	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, "mbps", fmt.Sprintf("%.2f", float64(pw.written)/secs/(1<<20)))
	}

	pw.logger.Info(msg, attrs...)
}
