package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bobiverse/docxfill"
	"github.com/bobiverse/docxfill/internal/config"
	"github.com/bobiverse/docxfill/internal/storage"
)

const testDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Proposal for {{clientName}}</w:t></w:r></w:p>` +
	`<w:tbl><w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Item</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Qty</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>{{!REPEATROW}}{{item}}</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>{{qty}}</w:t></w:r></w:p></w:tc></w:tr>` +
	`</w:tbl></w:body></w:document>`

func testDocx(t *testing.T, document string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zipw := zip.NewWriter(buf)
	fw, err := zipw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(document)); err != nil {
		t.Fatal(err)
	}
	if err := zipw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type testEnv struct {
	server *Server
	base   *storage.FSStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	base, err := storage.NewFSStore(cfg.Storage.Dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := base.Put(ctx, "templates/proposal.docx", testDocx(t, testDocument), ""); err != nil {
		t.Fatal(err)
	}
	if err := base.Put(ctx, "templates/broken.docx", []byte("not a docx"), ""); err != nil {
		t.Fatal(err)
	}

	s := New(stores, cfg)
	s.newID = func() string { return "0b0e5c1e-test" }
	return &testEnv{server: s, base: base}
}

func (env *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body %q: %v", rr.Body.String(), err)
	}
	if resp.Title != "Error" || resp.Message == "" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestGenerateAndDownload(t *testing.T) {
	env := newTestEnv(t)

	body := `{"templateId":"proposal","data":{"clientName":"Acme","deliverables":[{"item":"Report","qty":3},{"item":"Audit","qty":1}]}}`
	rr := env.do(t, http.MethodPost, "/api/generate", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := GenerateResponse{
		FileID:      "0b0e5c1e-test.docx",
		DownloadURL: "/api/download?file=0b0e5c1e-test.docx",
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Fatalf("response (-want +got):\n%s", diff)
	}

	for _, target := range []string{resp.DownloadURL, "/api/download/" + resp.FileID} {
		rr = env.do(t, http.MethodGet, target, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", target, rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != storage.ContentTypeDocx {
			t.Fatalf("Content-Type = %q", ct)
		}
		if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="0b0e5c1e-test.docx"` {
			t.Fatalf("Content-Disposition = %q", cd)
		}

		tdoc, err := docxfill.OpenTemplateWithBytes(rr.Body.Bytes())
		if err != nil {
			t.Fatalf("open generated: %v", err)
		}
		wantText := "Proposal for Acme\nItem\tQty\nReport\t3\nAudit\t1"
		if got := tdoc.Plaintext(); got != wantText {
			t.Fatalf("Plaintext:\n%s\nwant:\n%s", got, wantText)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "invalid json", body: `{`, status: http.StatusBadRequest},
		{name: "missing template", body: `{"data":{}}`, status: http.StatusBadRequest},
		{name: "missing data", body: `{"templateId":"proposal"}`, status: http.StatusBadRequest},
		{name: "null data", body: `{"templateId":"proposal","data":null}`, status: http.StatusBadRequest},
		{name: "data not object", body: `{"templateId":"proposal","data":[1]}`, status: http.StatusBadRequest},
		{name: "template path", body: `{"templateId":"../secret","data":{}}`, status: http.StatusBadRequest},
		{name: "unknown template", body: `{"templateId":"missing","data":{}}`, status: http.StatusNotFound},
		{name: "broken template", body: `{"templateId":"broken.docx","data":{}}`, status: http.StatusUnprocessableEntity},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/generate", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tt.status, rr.Body.String())
			}
			decodeError(t, rr)
		})
	}
}

func TestGenerateBodyLimit(t *testing.T) {
	env := newTestEnv(t)
	env.server.maxBodyBytes = 16

	rr := env.do(t, http.MethodPost, "/api/generate", `{"templateId":"proposal","data":{"a":"b"}}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	decodeError(t, rr)
}

func TestGenerateTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.server.renderTimeout = time.Nanosecond

	rr := env.do(t, http.MethodPost, "/api/generate", `{"templateId":"proposal","data":{}}`)
	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestDownloadErrors(t *testing.T) {
	tests := []struct {
		target string
		status int
	}{
		{target: "/api/download", status: http.StatusBadRequest},
		{target: "/api/download?file=", status: http.StatusBadRequest},
		{target: "/api/download?file=..%2Ftemplates%2Fproposal.docx", status: http.StatusBadRequest},
		{target: "/api/download?file=a%5Cb.docx", status: http.StatusBadRequest},
		{target: "/api/download?file=..secret", status: http.StatusBadRequest},
		{target: "/api/download?file=missing.docx", status: http.StatusNotFound},
		{target: "/api/download/missing.docx", status: http.StatusNotFound},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		rr := env.do(t, http.MethodGet, tt.target, "")
		if rr.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.target, rr.Code, tt.status)
		}
		decodeError(t, rr)
	}
}

func TestDownloadContentType(t *testing.T) {
	env := newTestEnv(t)
	if err := env.base.Put(context.Background(), "generated/report.pdf", []byte("%PDF"), ""); err != nil {
		t.Fatal(err)
	}

	rr := env.do(t, http.MethodGet, "/api/download?file=report.pdf", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != storage.ContentTypePDF {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cl := rr.Header().Get("Content-Length"); cl != "4" {
		t.Fatalf("Content-Length = %q", cl)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	if rr := env.do(t, http.MethodGet, "/api/generate", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- env.server.ListenAndServe(ctx, "127.0.0.1:0", time.Second)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
}
