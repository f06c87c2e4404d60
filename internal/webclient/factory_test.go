package webclient_test

import (
	"context"
	"strings"
	"testing"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/testutil"
	"github.com/raysh454/judolhunter/internal/webclient"
)

func TestNewWebClient_DefaultBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Failed to create default client: %v", err)
	}
	if client == nil {
		t.Fatal("client is nil")
	}
	defer client.Close()

	if _, ok := client.(*webclient.NetHTTPClient); !ok {
		t.Errorf("expected *NetHTTPClient, got %T", client)
	}
}

func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()
	_, err := webclient.NewWebClient(webclient.Config{Client: "headless"}, &testutil.DummyLogger{})
	if err == nil {
		t.Fatal("expected error for unregistered backend")
	}
	if !strings.Contains(err.Error(), "nethttp") {
		t.Errorf("expected error to list available backends, got %v", err)
	}
}

type stubClient struct{}

func (stubClient) Do(context.Context, *webclient.Request) (*webclient.Response, error) {
	return &webclient.Response{StatusCode: 204}, nil
}
func (stubClient) Close() error { return nil }

func TestRegisterBackend_CustomBackend(t *testing.T) {
	t.Parallel()
	webclient.RegisterBackend("Stub-Test", func(webclient.Config, logging.Logger) (webclient.WebClient, error) {
		return stubClient{}, nil
	})

	client, err := webclient.NewWebClient(webclient.Config{Client: "stub-test"}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	resp, err := client.Do(context.Background(), &webclient.Request{URL: "http://x"})
	if err != nil || resp.StatusCode != 204 {
		t.Fatalf("expected stub response, got %+v, %v", resp, err)
	}

	found := false
	for _, b := range webclient.ListBackends() {
		if b == "stub-test" {
			found = true
		}
	}
	if !found {
		t.Error("expected stub-test in ListBackends")
	}
}

func TestPageRequest(t *testing.T) {
	req := webclient.PageRequest("https://desa.id/", "Googlebot/2.1", "id-ID")
	if req.Method != "GET" || req.URL != "https://desa.id/" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if got := req.Headers.Get("User-Agent"); got != "Googlebot/2.1" {
		t.Errorf("User-Agent = %q", got)
	}
	if got := req.Headers.Get("Accept-Language"); got != "id-ID" {
		t.Errorf("Accept-Language = %q", got)
	}
	if webclient.PageRequest("https://desa.id/", "x", "").Headers.Get("Accept-Language") != "" {
		t.Error("empty language sent")
	}
}
