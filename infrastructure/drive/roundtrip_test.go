package drive

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"drive-upload-relay/domain/distribution"
)

// fakeGoogle serves the token endpoint and the Drive files endpoint
type fakeGoogle struct {
	mu        sync.Mutex
	tokenHits int
	uploads   []string
	authz     []string
	failToken bool
}

func (f *fakeGoogle) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenHits++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if f.failToken {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid JWT Signature."}`)
			return
		}
		io.WriteString(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.uploads = append(f.uploads, string(body))
		f.authz = append(f.authz, r.Header.Get("Authorization"))
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "drive-file-1", "name": "a.txt", "size": "10"})
	})
	return mux
}

func writeServiceAccountKey(t *testing.T, tokenURL string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	b, err := json.Marshal(Credentials{
		Type:        "service_account",
		ClientEmail: "uploader@test-project.iam.gserviceaccount.com",
		PrivateKey:  string(pemKey),
		TokenURI:    tokenURL,
	})
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "apikeys.json")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}
	return path
}

func TestClient_AuthorizeAndUpload(t *testing.T) {
	fake := &fakeGoogle{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := NewClient(writeServiceAccountKey(t, srv.URL+"/token"), WithEndpoint(srv.URL+"/"))
	if err := client.CredentialsError(); err != nil {
		t.Fatalf("unexpected credentials error: %v", err)
	}

	store, err := client.Authorize(context.Background())
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if fake.tokenHits != 1 {
		t.Errorf("expected one token exchange, got %d", fake.tokenHits)
	}

	obj, err := store.CreateObject(context.Background(), strings.NewReader("0123456789"), distribution.ObjectSpec{
		Name:        "a.txt",
		ParentID:    "1PmgmVBCrN_g-Pw3Ydj-Ia3D3acllv3wV",
		ContentType: distribution.DefaultContentType,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if obj.ID != "drive-file-1" {
		t.Errorf("expected ID drive-file-1, got %q", obj.ID)
	}

	if len(fake.uploads) != 1 {
		t.Fatalf("expected 1 upload request, got %d", len(fake.uploads))
	}
	if fake.authz[0] != "Bearer test-token" {
		t.Errorf("expected bearer token, got %q", fake.authz[0])
	}
	body := fake.uploads[0]
	for _, want := range []string{"0123456789", "1PmgmVBCrN_g-Pw3Ydj-Ia3D3acllv3wV", "application/octet-stream", `"name":"a.txt"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected upload body to contain %q", want)
		}
	}
}

func TestClient_AuthorizeRejected(t *testing.T) {
	fake := &fakeGoogle{failToken: true}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := NewClient(writeServiceAccountKey(t, srv.URL+"/token"), WithEndpoint(srv.URL+"/"))

	_, err := client.Authorize(context.Background())
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if !strings.Contains(err.Error(), "unable to authorize service account") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(fake.uploads) != 0 {
		t.Errorf("expected no uploads, got %d", len(fake.uploads))
	}
}
