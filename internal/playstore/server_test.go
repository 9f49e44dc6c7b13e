// SPDX-License-Identifier: MPL-2.0

package playstore

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testAccessToken = "test-access-token"

// fakeAPI serves the token endpoint and the edit-scoped publishing routes.
// Handlers for individual routes can be overridden per test.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
	routes   map[string]http.HandlerFunc
	token    http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}}
	f.token = func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"access_token": testAccessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

// handle registers h for requests whose method matches and whose path ends with suffix.
func (f *fakeAPI) handle(method, suffix string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+suffix] = h
}

func (f *fakeAPI) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/token" {
		f.token(w, r)
		return
	}

	if got := r.Header.Get("Authorization"); got != "Bearer "+testAccessToken {
		http.Error(w, `{"error":{"code":401,"message":"missing token"}}`, http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	var handler http.HandlerFunc
	for key, h := range f.routes {
		method, suffix, _ := strings.Cut(key, " ")
		if r.Method == method && strings.HasSuffix(r.URL.Path, suffix) {
			handler = h
			break
		}
	}
	f.mu.Unlock()

	if handler == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"no route"}}`))
		return
	}
	handler(w, r)
}

// credentials returns a service-account key whose token_uri points at the fake server.
func (f *fakeAPI) credentials() []byte {
	f.t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		f.t.Fatalf("generating key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		f.t.Fatalf("marshaling key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "playpub-test",
		"private_key_id": "key-1",
		"private_key":    string(pemKey),
		"client_email":   "publisher@playpub-test.iam.gserviceaccount.com",
		"client_id":      "1234567890",
		"token_uri":      f.srv.URL + "/token",
	})
	if err != nil {
		f.t.Fatalf("marshaling credentials: %v", err)
	}
	return data
}

func (f *fakeAPI) options() []Option {
	return []Option{
		WithEndpoint(f.srv.URL),
		WithHTTPClient(f.srv.Client()),
		WithUserAgent("playpub-test"),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func writeAPIError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}
