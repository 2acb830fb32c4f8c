package internal

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"wiki_server/pkg/logger"
)

// Word-boundary matchers for the encodings negotiated through
// the `Accept-Encoding` header.
var (
	deflateMatcher = regexp.MustCompile(`\bdeflate\b`)
	gzipMatcher    = regexp.MustCompile(`\bgzip\b`)
)

// sendResponse :
// Finalizes the bytes written to the socket for the current
// request. This method first checks whether the client already
// has the data cached: if browser-caching is enabled and the
// status is 200, a fingerprint of the response is computed and
// compared against the request's `If-None-Match` header, in
// which case only a 304 is transmitted. Otherwise, when gzip
// support is enabled and the body is bigger than 2k, the body
// is compressed with whichever of `deflate` and `gzip` the
// user agent permits (compressing less data is inefficient).
//
// The `w` represents the response writer of the request.
//
// The `r` defines the request being answered.
//
// The `statusCode` defines the status to send.
//
// The `headers` define the response headers. They may be
// augmented with `Etag`, `Cache-Control` and
// `Content-Encoding` headers.
//
// The `data` defines the body to send.
//
// The `encoding` names the encoding of the data, if any. It
// participates in the cache fingerprint.
func (s *Server) sendResponse(w http.ResponseWriter, r *http.Request, statusCode int, headers map[string]string, data []byte, encoding string) {
	if headers == nil {
		headers = map[string]string{}
	}

	if s.enableBrowserCache && statusCode == http.StatusOK {
		// Put everything into the hash that could change and
		// invalidate the data that the browser already stored:
		// the body, the headers and the encoding.
		hash := md5.New()
		hash.Write(data)
		rawHeaders, _ := json.Marshal(headers)
		hash.Write(rawHeaders)
		if len(encoding) > 0 {
			hash.Write([]byte(encoding))
		}
		contentDigest := hex.EncodeToString(hash.Sum(nil))

		// RFC 7232 section 2.3 mandates for the etag to be
		// enclosed in quotes.
		headers["Etag"] = "\"" + contentDigest + "\""
		headers["Cache-Control"] = "max-age=0, must-revalidate"

		// Check if any of the fingerprints contained within
		// the if-none-match header matches the current one.
		// If one matches, do not send the data but tell the
		// browser to use the cached version.
		// We do not implement "*" as it makes no sense here.
		ifNoneMatch := r.Header.Get("If-None-Match")
		if len(ifNoneMatch) > 0 {
			for _, etag := range strings.Split(ifNoneMatch, ",") {
				if strings.Trim(etag, " \"") == contentDigest {
					writeHeaders(w, headers)
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if s.enableGzip && len(data) > 2048 {
		acceptEncoding := r.Header.Get("Accept-Encoding")
		if deflateMatcher.MatchString(acceptEncoding) {
			if compressed, err := compressWith(data, "deflate"); err == nil {
				headers["Content-Encoding"] = "deflate"
				data = compressed
			} else {
				s.log.Trace(logger.Warning, module, fmt.Sprintf("Could not deflate response body (err: %v)", err))
			}
		} else if gzipMatcher.MatchString(acceptEncoding) {
			if compressed, err := compressWith(data, "gzip"); err == nil {
				headers["Content-Encoding"] = "gzip"
				data = compressed
			} else {
				s.log.Trace(logger.Warning, module, fmt.Sprintf("Could not gzip response body (err: %v)", err))
			}
		}
	}

	writeHeaders(w, headers)
	w.WriteHeader(statusCode)
	w.Write(data)
}

// compressWith :
// Compresses the input body with the input scheme. The whole
// body is compressed at once, synchronously relative to the
// completion of the response.
//
// The `data` defines the body to compress.
//
// The `scheme` names the compression scheme, `deflate` (zlib
// framing) or `gzip`.
//
// Returns the compressed body along with any error.
func compressWith(data []byte, scheme string) ([]byte, error) {
	var buf bytes.Buffer
	var writer interface {
		Write(p []byte) (int, error)
		Close() error
	}

	switch scheme {
	case "deflate":
		writer = zlib.NewWriter(&buf)
	case "gzip":
		writer = gzip.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("unknown compression scheme \"%s\"", scheme)
	}

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeHeaders :
// Copies the input header map onto the response writer.
//
// The `w` represents the response writer of the request.
//
// The `headers` define the headers to set.
func writeHeaders(w http.ResponseWriter, headers map[string]string) {
	for name, value := range headers {
		w.Header().Set(name, value)
	}
}
