package bambu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyTransportRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 浏览器指纹头必须在线
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.Equal(t, "https://bambulab.com", r.Header.Get("Origin"))

		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "abc", r.URL.Query().Get("deviceId"))
			w.Write([]byte(`{"ok": true}`))
		case http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "x@y.z", body["account"])
			w.Write([]byte(`{"ok": true}`))
		}
	}))
	defer srv.Close()

	tr := NewTransport()

	got, err := tr.Get(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer t"}, map[string]string{"deviceId": "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(got))

	got, err = tr.Post(context.Background(), srv.URL, nil, map[string]string{"account": "x@y.z"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(got))
}

func TestRestyTransportNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	tr := NewTransport()
	_, err := tr.Get(context.Background(), srv.URL, nil, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusForbidden, transportErr.Status)
	assert.Equal(t, "blocked", transportErr.Body)
}

func TestRestyTransportNetworkError(t *testing.T) {
	tr := NewTransport()
	// 指向一个没人监听的端口
	_, err := tr.Get(context.Background(), "http://127.0.0.1:1/nothing", nil, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, transportErr.Status)
	assert.Error(t, transportErr.Err)
}
