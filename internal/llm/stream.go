package llm

import (
	"io"
	"net/http"
)

// Stream is a backend response handed through to the client untouched.
type Stream struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// NewStream wraps a raw backend response.
func NewStream(resp *http.Response) *Stream {
	return &Stream{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}
}

// hopHeaders apply to a single connection and are not forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Relay copies the stream to w as it arrives, flushing after every chunk.
func (s *Stream) Relay(w http.ResponseWriter) error {
	header := w.Header()
	for k, vs := range s.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	for _, h := range hopHeaders {
		header.Del(h)
	}

	status := s.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if s.Body == nil {
		return nil
	}

	fw := &flushWriter{w: w, rc: http.NewResponseController(w)}
	// flushWriter has no ReadFrom, so io.Copy hands it one read at a time.
	_, err := io.Copy(fw, s.Body)
	return err
}

// Close releases the backend connection.
func (s *Stream) Close() error {
	if s.Body == nil {
		return nil
	}
	return s.Body.Close()
}

type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	// ErrNotSupported just means the writer is unbuffered.
	_ = f.rc.Flush()
	return n, nil
}
