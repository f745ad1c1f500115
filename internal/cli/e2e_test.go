package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidesmith/internal/testutil/apitest"
	"slidesmith/pkg/admission"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func createdID(t *testing.T, stdout string) string {
	t.Helper()
	lines := strings.Split(stdout, "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "Created ") {
		t.Fatalf("expected created line, got %q", stdout)
	}
	return strings.TrimPrefix(lines[0], "Created ")
}

func TestCreateGetDeleteRoundTrip(t *testing.T) {
	server := apitest.StartServer(t, apitest.ServerConfig{})
	defer server.Close()

	code, out, errOut := runCLI(t, "create", "--server", server.BaseURL, "--topic", "Go Concurrency", "--slides", "3")
	if code != ExitOK {
		t.Fatalf("create failed (%d): %s", code, errOut)
	}
	id := createdID(t, out)

	code, out, errOut = runCLI(t, "get", "--server", server.BaseURL, id)
	if code != ExitOK {
		t.Fatalf("get failed (%d): %s", code, errOut)
	}
	if !strings.Contains(out, "Go Concurrency") {
		t.Fatalf("expected topic in get output, got %q", out)
	}

	code, out, _ = runCLI(t, "list", "--server", server.BaseURL)
	if code != ExitOK || !strings.Contains(out, id) {
		t.Fatalf("expected list to include %s, got (%d) %q", id, code, out)
	}

	code, out, _ = runCLI(t, "search", "--server", server.BaseURL, "concurrency")
	if code != ExitOK || !strings.Contains(out, id) {
		t.Fatalf("expected search hit for %s, got (%d) %q", id, code, out)
	}

	code, _, errOut = runCLI(t, "delete", "--server", server.BaseURL, id)
	if code != ExitOK {
		t.Fatalf("delete failed (%d): %s", code, errOut)
	}

	code, _, errOut = runCLI(t, "get", "--server", server.BaseURL, id)
	if code != ExitError || !strings.Contains(errOut, "not_found") {
		t.Fatalf("expected not found after delete, got (%d) %q", code, errOut)
	}
}

func TestConfigureAndDownload(t *testing.T) {
	server := apitest.StartServer(t, apitest.ServerConfig{})
	defer server.Close()

	code, out, errOut := runCLI(t, "create", "--server", server.BaseURL, "--topic", "Quarterly Review")
	if code != ExitOK {
		t.Fatalf("create failed (%d): %s", code, errOut)
	}
	id := createdID(t, out)

	code, out, errOut = runCLI(t, "configure", "--server", server.BaseURL, "--theme", "classic", "--ratio", "4:3", id)
	if code != ExitOK {
		t.Fatalf("configure failed (%d): %s", code, errOut)
	}
	if !strings.Contains(out, "theme=classic") {
		t.Fatalf("expected configured theme in output, got %q", out)
	}

	path := filepath.Join(t.TempDir(), "deck.pptx")
	code, out, errOut = runCLI(t, "download", "--server", server.BaseURL, "--out", path, id)
	if code != ExitOK {
		t.Fatalf("download failed (%d): %s", code, errOut)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if len(data) == 0 || data[0] != 'P' || data[1] != 'K' {
		t.Fatalf("expected a zip archive, got %d bytes", len(data))
	}
}

func TestThemesAndStatus(t *testing.T) {
	server := apitest.StartServer(t, apitest.ServerConfig{})
	defer server.Close()

	code, out, errOut := runCLI(t, "themes", "--server", server.BaseURL)
	if code != ExitOK {
		t.Fatalf("themes failed (%d): %s", code, errOut)
	}
	for _, want := range []string{"modern", "classic", "minimal", "corporate", "16:9"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in themes output, got %q", want, out)
		}
	}

	code, out, errOut = runCLI(t, "status", "--server", server.BaseURL)
	if code != ExitOK {
		t.Fatalf("status failed (%d): %s", code, errOut)
	}
	if !strings.Contains(out, "Rate limits:") || !strings.Contains(out, "Global pool:") {
		t.Fatalf("expected snapshot text, got %q", out)
	}
}

func TestCreateReportsRateLimit(t *testing.T) {
	server := apitest.StartServer(t, apitest.ServerConfig{
		Controller: admission.NewController(admission.Config{PerMinute: 1}),
	})
	defer server.Close()

	code, _, errOut := runCLI(t, "create", "--server", server.BaseURL, "--api-key", "cli-test-key", "--topic", "first")
	if code != ExitOK {
		t.Fatalf("first create failed (%d): %s", code, errOut)
	}
	code, _, errOut = runCLI(t, "create", "--server", server.BaseURL, "--api-key", "cli-test-key", "--topic", "second")
	if code != ExitError || !strings.Contains(errOut, "Rate limited") {
		t.Fatalf("expected rate limited failure, got (%d) %q", code, errOut)
	}
}
