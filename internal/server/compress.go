package server

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder is the part of gzip.Writer and zstd.Encoder the middleware uses.
type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(io.Writer)
}

type codec struct {
	name string
	pool sync.Pool
}

// codecs in server preference order. Rendered forms are small, so both run at
// their fastest setting.
var codecs = []*codec{
	{name: "zstd", pool: sync.Pool{New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil
		}
		return enc
	}}},
	{name: "gzip", pool: sync.Pool{New: func() any {
		enc, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return enc
	}}},
}

// negotiate picks the first codec the Accept-Encoding header allows. Tokens
// with q=0 are refused.
func negotiate(header string) *codec {
	accepted := map[string]bool{}
	for _, token := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(token), ";")
		q := strings.ReplaceAll(params, " ", "")
		accepted[strings.ToLower(strings.TrimSpace(name))] = q != "q=0" && q != "q=0.0"
	}
	for _, c := range codecs {
		if accepted[c.name] {
			return c
		}
	}
	return nil
}

type encodingWriter struct {
	http.ResponseWriter
	enc      encoder
	bodiless bool
}

func (ew *encodingWriter) WriteHeader(code int) {
	ew.Header().Del("Content-Length")
	if code < 200 || code == http.StatusNoContent || code == http.StatusNotModified {
		ew.bodiless = true
		ew.Header().Del("Content-Encoding")
	}
	ew.ResponseWriter.WriteHeader(code)
}

func (ew *encodingWriter) Write(b []byte) (int, error) {
	if ew.bodiless {
		return ew.ResponseWriter.Write(b)
	}
	h := ew.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return ew.enc.Write(b)
}

func (ew *encodingWriter) Flush() {
	if !ew.bodiless {
		_ = ew.enc.Flush()
	}
	if f, ok := ew.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression encodes response bodies with zstd or gzip. HEAD requests,
// responses that already carry an encoding, and bodiless statuses are left
// alone.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		c := negotiate(r.Header.Get("Accept-Encoding"))
		if c == nil || r.Method == http.MethodHead || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}
		enc, ok := c.pool.Get().(encoder)
		if !ok || enc == nil {
			next.ServeHTTP(w, r)
			return
		}
		enc.Reset(w)
		w.Header().Set("Content-Encoding", c.name)

		ew := &encodingWriter{ResponseWriter: w, enc: enc}
		defer func() {
			if ew.bodiless {
				enc.Reset(io.Discard)
			}
			_ = enc.Close()
			c.pool.Put(enc)
		}()
		next.ServeHTTP(ew, r)
	})
}
