//go:build e2e

// Package e2e_test drives a running server over HTTP. Point E2E_BASE_URL at
// it; E2E_API_USERNAME and E2E_API_PASSWORD are sent when set.
package e2e_test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// getenv returns the value of the environment variable k or def if empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func baseURL() string { return getenv("E2E_BASE_URL", "http://localhost:8080") }

func newRequest(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *http.Request {
	t.Helper()
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequest(method, baseURL()+path, nil)
	} else {
		req, err = http.NewRequest(method, baseURL()+path, body)
	}
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if u := os.Getenv("E2E_API_USERNAME"); u != "" {
		req.SetBasicAuth(u, os.Getenv("E2E_API_PASSWORD"))
	}
	return req
}

// waitForAppReady polls /healthz until the server answers or timeout passes.
func waitForAppReady(t *testing.T, client *http.Client, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL() + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Skipf("server at %s not ready after %s", baseURL(), timeout)
}

// buildDocx writes a minimal .docx with one paragraph per line.
func buildDocx(t *testing.T, lines ...string) []byte {
	t.Helper()
	var body string
	for _, l := range lines {
		body += `<w:p><w:r><w:t>` + l + `</w:t></w:r></w:p>`
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func fileBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
