package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Get(server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, resp.IsJSON())
	assert.Equal(t, `{"status": "ok"}`, resp.BodyString())
}

func TestClient_QueryParamsReachServer(t *testing.T) {
	var gotText string
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		gotText = r.URL.Query().Get("text")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient()
	req := NewRequest("GET", server.URL)
	req.SetQueryParam("text", "oohrah")

	_, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "oohrah", gotText)
}

func TestClient_PathParamsReachServer(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient()
	req := NewRequest("GET", server.URL+"/api/f1/{season}/circuits.json")
	req.SetPathParam("season", "2017")

	_, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "/api/f1/2017/circuits.json", gotPath)
}

func TestClient_NotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		stdhttp.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Get(server.URL+"/missing", nil)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.True(t, resp.IsClientError())
}

func TestClient_ConnectionRefusedIsTransportError(t *testing.T) {
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient()
	resp, err := client.Get(url, nil)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsTransportError(err))
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient()
	req := NewRequest("GET", server.URL)
	req.SetTimeout(20 * time.Millisecond)

	_, err := client.Do(req)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestClient_DefaultHeaders(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		gotHeader = r.Header.Get("X-Check")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeader("X-Check", "yes"))
	_, err := client.Get(server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "yes", gotHeader)
}

func TestClient_RedirectsNotFollowedWhenDisabled(t *testing.T) {
	server := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.URL.Path == "/start" {
			stdhttp.Redirect(w, r, "/end", stdhttp.StatusFound)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(false))
	resp, err := client.Get(server.URL+"/start", nil)

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("http://example.com/path"))
	assert.NoError(t, ValidateURL("https://example.com"))
	assert.Error(t, ValidateURL("ftp://example.com"))
	assert.Error(t, ValidateURL("http://"))
}

func TestResponse_HeaderCaseInsensitive(t *testing.T) {
	resp := &Response{
		Headers: map[string]string{"Content-Length": "4551"},
	}

	assert.Equal(t, "4551", resp.Header("content-length"))
	assert.Equal(t, "4551", resp.Header("Content-Length"))
	assert.Equal(t, "4551", resp.Header("CONTENT-LENGTH"))
	assert.True(t, resp.HasHeader("content-length"))
	assert.False(t, resp.HasHeader("x-missing"))
}
