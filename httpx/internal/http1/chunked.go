package http1

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// chunkedReader decodes a Transfer-Encoding: chunked body. Trailer fields
// are read and discarded.
type chunkedReader struct {
	br       *bufio.Reader
	remain   int64 // bytes left in the current chunk, -1 before the first
	finished bool
	maxLine  int
}

func newChunkedReader(br *bufio.Reader, maxLine int) *chunkedReader {
	return &chunkedReader{br: br, remain: -1, maxLine: maxLine}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.finished {
		return 0, io.EOF
	}
	if c.remain <= 0 {
		size, err := c.readChunkSize()
		if err != nil {
			return 0, err
		}
		if size == 0 {
			if err := c.skipTrailers(); err != nil {
				return 0, err
			}
			c.finished = true
			return 0, io.EOF
		}
		c.remain = size
	}
	if len(p) == 0 {
		return 0, nil
	}
	if int64(len(p)) > c.remain {
		p = p[:c.remain]
	}
	n, err := io.ReadFull(c.br, p)
	c.remain -= int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	if c.remain == 0 {
		if err := c.expectCRLF(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *chunkedReader) readChunkSize() (int64, error) {
	line, err := readLine(c.br, c.maxLine)
	if err != nil {
		return 0, err
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	n, err := strconv.ParseInt(line, 16, 64)
	if line == "" || err != nil || n < 0 {
		return 0, fmt.Errorf("%w: chunk size %q", ErrBadMessage, line)
	}
	return n, nil
}

func (c *chunkedReader) expectCRLF() error {
	var crlf [2]byte
	if _, err := io.ReadFull(c.br, crlf[:]); err != nil {
		return err
	}
	if crlf != [2]byte{'\r', '\n'} {
		return fmt.Errorf("%w: expected CRLF after chunk, got %q", ErrBadMessage, crlf[:])
	}
	return nil
}

func (c *chunkedReader) skipTrailers() error {
	for {
		line, err := readLine(c.br, c.maxLine)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

// WriteChunked writes one HTTP/1.1 chunk for chunked transfer encoding.
func WriteChunked(bw *bufio.Writer, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := fmt.Fprintf(bw, "%x\r\n", len(p)); err != nil {
		return 0, err
	}
	if _, err := bw.Write(p); err != nil {
		return 0, err
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return 0, err
	}
	return len(p), nil
}

// EndChunked writes the terminating zero-length chunk.
func EndChunked(bw *bufio.Writer) error {
	_, err := bw.WriteString("0\r\n\r\n")
	return err
}
