package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockBucket is the in-memory object state behind NewMockForTests. Only the
// GetObject and PutObject calls used by Store are emulated.
type MockBucket struct {
	mu       sync.Mutex
	objects  map[string][]byte
	puts     int
	FailPuts bool
	FailGets bool
}

// Object returns a copy of the stored object body.
func (m *MockBucket) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return append([]byte(nil), b...), ok
}

// Puts returns the number of successful PutObject calls.
func (m *MockBucket) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// NewMockForTests returns a Store backed by an in-memory fake HTTP transport.
func NewMockForTests() (*Store, *MockBucket) {
	bucket := &MockBucket{objects: make(map[string][]byte)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
		config.WithRetryMaxAttempts(1),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: bucket}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return newStore(client, "mock-bucket", ""), bucket
}

const noSuchKeyBody = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

// RoundTrip implements http.RoundTripper for path-style requests
// (/<bucket>/<key>).
func (m *MockBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch req.Method {
	case http.MethodGet:
		if m.FailGets {
			return respond(http.StatusInternalServerError, nil, nil), nil
		}
		body, ok := m.objects[key]
		if !ok {
			return respond(http.StatusNotFound, []byte(noSuchKeyBody), http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return respond(http.StatusOK, body, http.Header{
			"Content-Length": {strconv.Itoa(len(body))},
			"Content-Type":   {"application/octet-stream"},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			"ETag":           {"\"etag\""},
		}), nil
	case http.MethodPut:
		if m.FailPuts {
			return respond(http.StatusInternalServerError, nil, nil), nil
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
			if body, err = decodeChunked(body); err != nil {
				return nil, err
			}
		}
		m.objects[key] = body
		m.puts++
		return respond(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	}
	return respond(http.StatusNotImplemented, nil, nil), nil
}

func respond(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}

// decodeChunked strips aws-chunked framing: <hex size>[;ext]\r\n<data>\r\n ...
// 0\r\n<trailers>. Chunk data is taken by length, so binary payloads containing
// CRLF survive.
func decodeChunked(b []byte) ([]byte, error) {
	var out []byte
	for {
		nl := bytes.Index(b, []byte("\r\n"))
		if nl < 0 {
			return nil, fmt.Errorf("aws-chunked: missing chunk header")
		}
		header := string(b[:nl])
		if semi := strings.IndexByte(header, ';'); semi >= 0 {
			header = header[:semi]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(header), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("aws-chunked: bad size %q", header)
		}
		b = b[nl+2:]
		if size == 0 {
			return out, nil
		}
		if int64(len(b)) < size {
			return nil, fmt.Errorf("aws-chunked: short chunk")
		}
		out = append(out, b[:size]...)
		b = bytes.TrimPrefix(b[size:], []byte("\r\n"))
	}
}
