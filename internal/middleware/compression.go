package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum response size to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Media types to compress
	ExcludedPaths    []string // Path prefixes served uncompressed
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"image/svg+xml",
			"application/javascript",
		},
	}
}

// CompressionMiddleware gzips responses for clients that accept it.
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	level := config.CompressionLevel
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	config.CompressionLevel = level

	return &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler returns the Gin middleware.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || !acceptsGzip(c.GetHeader("Accept-Encoding")) || cm.excluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		gzw := &gzipResponseWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = gzw
		defer func() {
			gzw.finish()
			c.Writer = gzw.ResponseWriter
		}()

		c.Next()
	}
}

func (cm *CompressionMiddleware) excluded(path string) bool {
	for _, prefix := range cm.config.ExcludedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// acceptsGzip reports whether the Accept-Encoding header admits gzip with a non-zero q.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		token, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		token = strings.TrimSpace(token)
		if token != "gzip" && token != "*" {
			continue
		}
		params = strings.ReplaceAll(params, " ", "")
		if q, ok := strings.CutPrefix(params, "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				continue
			}
		}
		return true
	}
	return false
}

func (cm *CompressionMiddleware) shouldCompress(h http.Header, status int) bool {
	if status < http.StatusOK || status == http.StatusNoContent || status == http.StatusNotModified {
		return false
	}
	if h.Get("Content-Encoding") != "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	for _, ct := range cm.config.ContentTypes {
		if mediaType == ct {
			return true
		}
	}
	return false
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// gzipResponseWriter buffers the first MinSize bytes to decide whether the
// body is worth compressing, then streams through a pooled gzip.Writer.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm *CompressionMiddleware

	buf      bytes.Buffer
	decided  bool
	gz       *gzip.Writer
	counter  *countingWriter
	original int64
}

func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	gzw.original += int64(len(data))

	if !gzw.decided {
		gzw.buf.Write(data)
		if gzw.buf.Len() < gzw.cm.config.MinSize {
			return len(data), nil
		}
		if err := gzw.decide(true); err != nil {
			return 0, err
		}
		return len(data), nil
	}

	if gzw.gz != nil {
		return gzw.gz.Write(data)
	}
	return gzw.ResponseWriter.Write(data)
}

func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// Written reports buffered output as written so error handlers do not write a second body.
func (gzw *gzipResponseWriter) Written() bool {
	return gzw.buf.Len() > 0 || gzw.decided || gzw.ResponseWriter.Written()
}

func (gzw *gzipResponseWriter) Flush() {
	if !gzw.decided {
		_ = gzw.decide(gzw.buf.Len() >= gzw.cm.config.MinSize)
	}
	if gzw.gz != nil {
		_ = gzw.gz.Flush()
	}
	gzw.ResponseWriter.Flush()
}

// decide commits the headers and drains the buffer.
func (gzw *gzipResponseWriter) decide(large bool) error {
	gzw.decided = true
	h := gzw.ResponseWriter.Header()

	if large && gzw.cm.shouldCompress(h, gzw.ResponseWriter.Status()) {
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")

		gzw.counter = &countingWriter{w: gzw.ResponseWriter}
		gzw.gz = gzw.cm.pool.Get().(*gzip.Writer)
		gzw.gz.Reset(gzw.counter)

		_, err := gzw.gz.Write(gzw.buf.Bytes())
		gzw.buf.Reset()
		return err
	}

	if gzw.buf.Len() == 0 {
		return nil
	}
	_, err := gzw.ResponseWriter.Write(gzw.buf.Bytes())
	gzw.buf.Reset()
	return err
}

func (gzw *gzipResponseWriter) finish() {
	if !gzw.decided {
		// small bodies go out as is
		_ = gzw.decide(false)
	}

	if gzw.gz == nil {
		gzw.cm.stats.RecordRequest(gzw.original, gzw.original, false)
		return
	}

	_ = gzw.gz.Close()
	gzw.gz.Reset(io.Discard)
	gzw.cm.pool.Put(gzw.gz)
	gzw.gz = nil
	gzw.cm.stats.RecordRequest(gzw.original, gzw.counter.n, true)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(0)
	if cs.TotalBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"compressed_bytes":    cs.CompressedBytes,
		"compression_ratio":   compressionRatio,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
