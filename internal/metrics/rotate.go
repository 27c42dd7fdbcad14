// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
package metrics

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// RotatingSink periodically snapshots a CsvWriter's accumulated rows to
// disk on a fixed interval, the way SnmpLogger timestamps kcptun's SNMP
// dumps into per-period files. Snapshots are written uncompressed; the
// sink does not compress earlier segments itself (ArchiveSegment does
// that for one file when called).
type RotatingSink struct {
	pathPattern string // passed through time.Format, e.g. "metrics-20060102-1504.csv"
	interval    time.Duration
	writer      *CsvWriter
	stop        chan struct{}
}

// NewRotatingSink builds a sink that snapshots writer's current contents
// to pathPattern (formatted with time.Now()) every interval.
func NewRotatingSink(pathPattern string, interval time.Duration, writer *CsvWriter) *RotatingSink {
	return &RotatingSink{pathPattern: pathPattern, interval: interval, writer: writer, stop: make(chan struct{})}
}

// Run blocks, writing a snapshot every interval until Stop is called.
// Intended to run in its own goroutine, mirroring SnmpLogger's loop.
func (s *RotatingSink) Run() {
	if s.pathPattern == "" || s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.snapshot(); err != nil {
				log.Println(err)
			}
		case <-s.stop:
			return
		}
	}
}

// Stop terminates a running Run loop.
func (s *RotatingSink) Stop() { close(s.stop) }

func (s *RotatingSink) snapshot() error {
	dir, name := filepath.Split(s.pathPattern)
	path := filepath.Join(dir, time.Now().Format(name))
	if err := s.writer.SaveToFile(path); err != nil {
		return errors.Wrapf(err, "metrics: snapshot to %s", path)
	}
	return nil
}

// ArchiveSegment snappy-compresses a closed CSV segment in place, leaving
// path+".snappy" alongside it and removing the uncompressed original.
func ArchiveSegment(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	compressed := snappy.Encode(nil, raw)
	if err := os.WriteFile(path+".snappy", compressed, 0666); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.Remove(path))
}
