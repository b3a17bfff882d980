package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem: %v", err)
	}
	s3Store, err := NewS3(context.Background(), S3Config{
		Bucket:     "badiri-test",
		Endpoint:   "https://mock.s3.local",
		AccessKey:  "AKIA",
		SecretKey:  "SECRET",
		PathStyle:  true,
		HTTPClient: &http.Client{Transport: newFakeS3()},
	})
	if err != nil {
		t.Fatalf("s3: %v", err)
	}
	return map[string]Store{"fs": fsStore, "memory": NewMemory(), "s3": s3Store}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, st := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			key := "attachments/1_report.pdf"
			info, err := st.Put(ctx, key, bytes.NewReader([]byte("hello")), PutOptions{ContentType: "application/pdf"})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != 5 || info.Key != key {
				t.Fatalf("unexpected info %+v", info)
			}
			if _, err := st.Put(ctx, key, strings.NewReader("again"), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("second put: want ErrExists, got %v", err)
			}

			got, rc, err := st.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			body, _ := io.ReadAll(rc)
			rc.Close()
			if string(body) != "hello" || got.ContentType != "application/pdf" {
				t.Fatalf("get returned %q %+v", body, got)
			}

			if _, err := st.Put(ctx, "attachments/2_notes.txt", strings.NewReader("n"), PutOptions{}); err != nil {
				t.Fatalf("put notes: %v", err)
			}
			if _, err := st.Put(ctx, "other/x", strings.NewReader("x"), PutOptions{}); err != nil {
				t.Fatalf("put other: %v", err)
			}
			list, err := st.List(ctx, "attachments/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Key != key || list[1].Key != "attachments/2_notes.txt" {
				t.Fatalf("unexpected list %+v", list)
			}

			ok, err := st.Delete(ctx, key)
			if err != nil || !ok {
				t.Fatalf("delete: %v %v", ok, err)
			}
			ok, err = st.Delete(ctx, key)
			if err != nil || ok {
				t.Fatalf("second delete: %v %v", ok, err)
			}
			if _, err := st.Head(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("head after delete: %v", err)
			}
			if _, _, err := st.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get after delete: %v", err)
			}
		})
	}
}

func TestRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	for name, st := range newStores(t) {
		for _, key := range []string{"", "../etc/passwd", "/abs", "attachments/../../x", `a\..\b`} {
			if _, err := st.Put(ctx, key, strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("%s: key %q: expected ErrInvalidKey, got %v", name, key, err)
			}
		}
	}
}

func TestDottedFilenames(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 1)
	for name, st := range newStores(t) {
		for _, file := range []string{"report..v2.pdf", "..hidden", "notes..."} {
			key := AttachmentKey(now, file)
			if _, err := st.Put(ctx, key, strings.NewReader("data"), PutOptions{}); err != nil {
				t.Fatalf("%s: put %q: %v", name, key, err)
			}
			info, body, err := st.Get(ctx, key)
			if err != nil {
				t.Fatalf("%s: get %q: %v", name, key, err)
			}
			body.Close()
			if info.Size != 4 {
				t.Fatalf("%s: size = %d", name, info.Size)
			}
			if got := DisplayName(key); got != file {
				t.Fatalf("%s: display name = %q, want %q", name, got, file)
			}
		}
	}
}

func TestPresign(t *testing.T) {
	ctx := context.Background()
	stores := newStores(t)
	if _, err := stores["fs"].PresignURL(ctx, "attachments/a", time.Minute); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("fs presign: %v", err)
	}
	u, err := stores["s3"].PresignURL(ctx, "attachments/a", time.Minute)
	if err != nil {
		t.Fatalf("s3 presign: %v", err)
	}
	if !strings.Contains(u, "attachments/a") || !strings.Contains(u, "X-Amz-Signature") {
		t.Fatalf("unexpected url %s", u)
	}
}

func TestAttachmentKey(t *testing.T) {
	now := time.Unix(0, 1700000000000000000)
	cases := map[string]string{
		"report.pdf":          "attachments/1700000000000000000_report.pdf",
		`C:\Users\me\a b.png`: "attachments/1700000000000000000_a_b.png",
		"x|y.txt":             "attachments/1700000000000000000_x_y.txt",
		"":                    "attachments/1700000000000000000_file",
	}
	for in, want := range cases {
		if got := AttachmentKey(now, in); got != want {
			t.Errorf("AttachmentKey(%q) = %q, want %q", in, got, want)
		}
	}
	if got := DisplayName("attachments/1700000000000000000_a_b.png"); got != "a_b.png" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	st, err := Open(context.Background(), Options{Driver: DriverMemory})
	if err != nil || st.Driver() != DriverMemory {
		t.Fatalf("memory open: %v", err)
	}
}

// fakeS3 answers the path-style requests the S3 store issues.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

type fakeObject struct {
	body        []byte
	contentType string
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: make(map[string]fakeObject)} }

func respond(code int, body []byte, h http.Header) *http.Response {
	if h == nil {
		h = http.Header{}
	}
	return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewReader(body)), Header: h}
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2025-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k].body))
		}
		b.WriteString("</ListBucketResult>")
		return respond(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}}), nil
	}
	obj, exists := f.objects[key]
	meta := http.Header{
		"Content-Length": {fmt.Sprint(len(obj.body))},
		"Content-Type":   {obj.contentType},
		"Etag":           {`"etag"`},
		"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
	}
	switch req.Method {
	case http.MethodHead:
		if !exists {
			return respond(http.StatusNotFound, nil, nil), nil
		}
		return respond(http.StatusOK, nil, meta), nil
	case http.MethodGet:
		if !exists {
			return respond(http.StatusNotFound, []byte(`<Error><Code>NoSuchKey</Code></Error>`), nil), nil
		}
		return respond(http.StatusOK, obj.body, meta), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		f.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
		return respond(http.StatusOK, nil, http.Header{"Etag": {`"etag"`}}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return respond(http.StatusNoContent, nil, nil), nil
	}
	return respond(http.StatusNotImplemented, nil, nil), nil
}

// decodeChunked unwraps a single-chunk aws-chunked payload.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	size := strings.SplitN(parts[0], ";", 2)[0]
	var n int
	if _, err := fmt.Sscanf(size, "%x", &n); err != nil || n != len(parts[1]) {
		return nil, false
	}
	return []byte(parts[1]), true
}
