package upgrade

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/zap/zaptest"
)

type releaseServer struct {
	tag      string
	binary   []byte
	checksum string
}

func (rs *releaseServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	name := binaryNameForPlatform(runtime.GOOS, runtime.GOARCH)
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/repos/Guliveer/vitalis/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(githubRelease{
			TagName: rs.tag,
			Assets: []githubAsset{
				{Name: name, BrowserDownloadURL: srv.URL + "/download/bin"},
				{Name: checksumFile, BrowserDownloadURL: srv.URL + "/download/checksums"},
			},
		})
	})
	mux.HandleFunc("/download/bin", func(w http.ResponseWriter, r *http.Request) {
		w.Write(rs.binary)
	})
	mux.HandleFunc("/download/checksums", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s  %s\n", rs.checksum, name)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func newTestStager(t *testing.T, srvURL, version string) (*Stager, string) {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "vitalis")
	if err := os.WriteFile(exe, []byte("current"), 0755); err != nil {
		t.Fatal(err)
	}
	s := NewStager(version, exe, StagerConfig{Enabled: true, RepoOwner: "Guliveer", RepoName: "vitalis"}, zaptest.NewLogger(t))
	s.apiBase = srvURL
	s.client.RetryMax = 0
	return s, exe
}

func TestCheckAndStage(t *testing.T) {
	bin := []byte("new release")
	srv := (&releaseServer{tag: "v43", binary: bin, checksum: sum(bin)}).start(t)
	s, exe := newTestStager(t, srv.URL, "v42")

	if !s.checkAndStage(context.Background()) {
		t.Fatal("expected a staged update")
	}
	data, err := os.ReadFile(StagedPath(exe))
	if err != nil {
		t.Fatalf("reading staged binary: %v", err)
	}
	if string(data) != "new release" {
		t.Errorf("staged = %q", data)
	}
	if cur, _ := os.ReadFile(exe); string(cur) != "current" {
		t.Errorf("running executable must not change, got %q", cur)
	}
}

func TestCheckAndStage_ChecksumMismatch(t *testing.T) {
	srv := (&releaseServer{tag: "v43", binary: []byte("tampered"), checksum: sum([]byte("original"))}).start(t)
	s, exe := newTestStager(t, srv.URL, "v42")

	if s.checkAndStage(context.Background()) {
		t.Fatal("mismatched checksum must not stage")
	}
	if _, err := os.Stat(StagedPath(exe)); !os.IsNotExist(err) {
		t.Errorf("no staged binary expected, stat err = %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(exe))
	if len(entries) != 1 {
		t.Errorf("temporary download left behind: %d entries", len(entries))
	}
}

func TestCheckAndStage_UpToDate(t *testing.T) {
	bin := []byte("same")
	srv := (&releaseServer{tag: "v42", binary: bin, checksum: sum(bin)}).start(t)
	s, exe := newTestStager(t, srv.URL, "v42")

	if s.checkAndStage(context.Background()) {
		t.Fatal("same version must not stage")
	}
	if _, err := os.Stat(StagedPath(exe)); !os.IsNotExist(err) {
		t.Errorf("no staged binary expected, stat err = %v", err)
	}
}

func TestStart_DisabledAndDev(t *testing.T) {
	s := NewStager("v1", "/x", StagerConfig{Enabled: false}, zaptest.NewLogger(t))
	s.Start(context.Background())
	s.Stop()

	s = NewStager("dev", "/x", StagerConfig{Enabled: true}, zaptest.NewLogger(t))
	s.Start(context.Background())
	s.Stop()
}
