package devserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/acklang/ack/internal/cache"
	"github.com/acklang/ack/internal/compiler"
	"github.com/acklang/ack/internal/testutil"
	"github.com/acklang/ack/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterComponent = `<script>
let count = 0;
</script>
<button @click="count++">{count}</button>
`

const cyclicComponent = `<script>
let a = b;
let b = a;
</script>
<p>{a}</p>
`

func newTestServer(t *testing.T, withCache bool) (*Server, string) {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "Counter.ack"), []byte(counterComponent), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "widgets"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "widgets", "Loop.ack"), []byte(cyclicComponent), 0600))

	logger := testutil.NewTestLogger(t)
	cfg := Config{
		Compiler: compiler.New(compiler.Config{Logger: logger}),
		SrcDir:   src,
		Options:  core.Options{Format: core.FormatESM},
		Logger:   logger,
	}
	if withCache {
		store := cache.NewStore(logger)
		require.NoError(t, store.Open(":memory:"))
		t.Cleanup(func() { _ = store.Close() })
		cfg.Cache = store
	}
	return New(cfg), src
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestServer_Component(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		s, _ := newTestServer(t, withCache)
		h := s.Handler()

		for range 2 {
			res, body := get(t, h, "/components/Counter.ack")
			require.Equal(t, http.StatusOK, res.StatusCode, body)
			assert.Equal(t, "text/javascript; charset=utf-8", res.Header.Get("Content-Type"))
			assert.Contains(t, body, "export default function Counter(")
			assert.Equal(t, "0", res.Header.Get("X-Ack-Warnings"))
		}
	}
}

func TestServer_ComponentErrors(t *testing.T) {
	s, _ := newTestServer(t, false)
	h := s.Handler()

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/components/widgets/Loop.ack", http.StatusUnprocessableEntity, "Circular dependency detected"},
		{"/components/Missing.ack", http.StatusNotFound, ""},
		{"/components/../secret.ack", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, body := get(t, h, tt.path)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Contains(t, body, tt.body)
		})
	}
}

func TestServer_IndexAndList(t *testing.T) {
	s, _ := newTestServer(t, false)
	h := s.Handler()

	res, body := get(t, h, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `<a href="/preview/Counter.ack">Counter</a>`)
	assert.Contains(t, body, `<a href="/preview/widgets/Loop.ack">Loop</a>`)
	assert.Contains(t, body, "EventSource('/__reload')")

	res, body = get(t, h, "/api/components")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var infos []componentInfo
	require.NoError(t, json.Unmarshal([]byte(body), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "Counter.ack", infos[0].Path)
	assert.Empty(t, infos[0].Errors)
	assert.Equal(t, "widgets/Loop.ack", infos[1].Path)
	require.Len(t, infos[1].Errors, 1)
	assert.True(t, compiler.IsCircular(infos[1].Errors[0]))
}

func TestServer_Preview(t *testing.T) {
	s, _ := newTestServer(t, false)
	h := s.Handler()

	res, body := get(t, h, "/preview/Counter.ack?state=%7B%22count%22%3A5%7D")
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `<script type="importmap">{"imports":{"@ack/runtime":"`+DefaultRuntimeURL+`"}}</script>`)
	assert.Contains(t, body, `<script data-ack-state type="application/json">{"count":5}</script>`)
	assert.Contains(t, body, `import Component from "/components/Counter.ack";`)
	assert.Contains(t, body, `Component({ initial }).mount("#app");`)

	res, _ = get(t, h, "/preview/Counter?state=%7Bbad")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = get(t, h, "/preview/Nope.ack")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_OnChangeBroadcastsAndDropsCache(t *testing.T) {
	s, src := newTestServer(t, true)
	ctx := context.Background()

	_, err := s.compile(ctx, "Counter.ack")
	require.NoError(t, err)
	stats, err := s.cfg.Cache.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Entries)

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	s.onChange([]string{filepath.Join(src, "Counter.ack"), filepath.Join(src, "widgets", "Loop.ack")})

	select {
	case event := <-ch:
		assert.Equal(t, "Counter.ack,widgets/Loop.ack", event)
	case <-time.After(time.Second):
		t.Fatal("no reload event")
	}

	stats, err = s.cfg.Cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestServer_ReloadStream(t *testing.T) {
	s, _ := newTestServer(t, false)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/__reload", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	buf := make([]byte, 256)
	n, err := res.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: connected")

	require.Eventually(t, func() bool { return s.hub.count() == 1 }, time.Second, 10*time.Millisecond)
	s.hub.broadcast("Counter.ack")

	var got strings.Builder
	for !strings.Contains(got.String(), "event: reload") {
		n, err := res.Body.Read(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
	assert.Contains(t, got.String(), "data: Counter.ack")
}

func TestReloadHub(t *testing.T) {
	h := newReloadHub()
	a := h.subscribe()
	b := h.subscribe()
	assert.Equal(t, 2, h.count())

	h.broadcast("one")
	h.broadcast("two")
	assert.Equal(t, "one", <-a, "full buffers skip later events")
	assert.Equal(t, "one", <-b)

	h.unsubscribe(a)
	h.unsubscribe(b)
	assert.Equal(t, 0, h.count())
}

func TestResolve(t *testing.T) {
	s := New(Config{SrcDir: "/srv/src"})
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Counter", want: filepath.Join("/srv/src", "Counter.ack")},
		{in: "/widgets/Card.ack", want: filepath.Join("/srv/src", "widgets", "Card.ack")},
		{in: "../etc/passwd", wantErr: true},
		{in: "a/../../x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := s.resolve(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
