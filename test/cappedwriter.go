package test

import "fmt"

// CappedWriter is an io.Writer that accepts writes only up to its capacity;
// anything written after the cap is reached is silently discarded.
type CappedWriter struct {
	buf   []byte
	limit int
}

// NewCappedWriter creates a CappedWriter with the given capacity.
func NewCappedWriter(limit int) (*CappedWriter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("test: capped writer limit must be greater than zero")
	}
	return &CappedWriter{limit: limit}, nil
}

// Write implements io.Writer.
func (c *CappedWriter) Write(p []byte) (int, error) {
	room := c.limit - len(c.buf)
	if room <= 0 {
		return len(p), nil
	}
	if room < len(p) {
		p = p[:room]
	}
	c.buf = append(c.buf, p...)
	return len(p), nil
}

// String returns the current contents of the writer.
func (c *CappedWriter) String() string {
	return string(c.buf)
}

// Reset empties the writer.
func (c *CappedWriter) Reset() {
	c.buf = c.buf[:0]
}
