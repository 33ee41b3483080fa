package cluster

import (
	"bufio"
	"fmt"
	"io"
)

// StreamEmitter writes clusters to the §6 cluster stream output format: one
// line per image, "<image_id>\t<cluster_id>\n", flushed per line. Lines
// belonging to the same cluster are contiguous because the driver emits
// one cluster at a time.
type StreamEmitter struct {
	w *bufio.Writer
}

// NewStreamEmitter wraps w for buffered, flush-per-line cluster streaming.
func NewStreamEmitter(w io.Writer) *StreamEmitter {
	return &StreamEmitter{w: bufio.NewWriter(w)}
}

// Emit writes every member of c, flushing after each line.
func (s *StreamEmitter) Emit(c Cluster) error {
	for _, e := range c.Entries {
		if _, err := fmt.Fprintf(s.w, "%d\t%d\n", e.ImageID, c.ClusterID); err != nil {
			return err
		}
		if err := s.w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
