package upload

import (
	"io"
	"time"
)

// progressReader reports upload progress as the transport drains the file.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	interval time.Duration
	lastEmit time.Time
	callback func(percent int)
}

func newProgressReader(r io.Reader, total int64, interval time.Duration, cb func(int)) *progressReader {
	return &progressReader{reader: r, total: total, interval: interval, callback: cb}
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	pr.read += int64(n)
	if pr.total <= 0 || pr.callback == nil {
		return
	}
	done := pr.read >= pr.total
	if done || time.Since(pr.lastEmit) >= pr.interval {
		pr.callback(int(float64(pr.read) / float64(pr.total) * 100))
		pr.lastEmit = time.Now()
	}
	return
}
