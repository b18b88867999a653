package fetcher_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/fetcher"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/testutil"
	"github.com/trustlens/trustlens/internal/webclient"
)

const samplePage = `<!doctype html>
<html>
<head>
  <title>Shop</title>
  <style>body { color: red }</style>
  <script>var secret = "do not index";</script>
</head>
<body>
  <h1>Welcome   to
     the shop</h1>
  <p>Great <b>deals</b> today.</p>
  <noscript>Enable JavaScript</noscript>
  <img src="/img/a.png">
  <img src="img/b.png">
  <img src="//cdn.example.net/c.png">
  <img data-src="/lazy/d.png">
  <img src="/img/a.png">
  <img src="data:image/png;base64,AAAA">
  <img src="javascript:alert(1)">
  <img>
  <script>document.write("hidden")</script>
</body>
</html>`

func newFetcher(t *testing.T, wc webclient.WebClient, cfg fetcher.Config) *fetcher.Fetcher {
	t.Helper()
	f, err := fetcher.New(cfg, wc, &testutil.DummyLogger{})
	require.NoError(t, err)
	return f
}

func TestFetch_ExtractsTextAndImages(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, samplePage)
	}))
	defer ts.Close()

	wc, err := webclient.NewNetHTTPClient(webclient.DefaultConfig(), logging.NopLogger{}, ts.Client())
	require.NoError(t, err)
	f := newFetcher(t, wc, fetcher.DefaultConfig())

	page := f.Fetch(context.Background(), ts.URL+"/shop/index.html")

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "Welcome to the shop Great deals today.", page.Text)
	assert.NotContains(t, page.Text, "secret")
	assert.NotContains(t, page.Text, "hidden")
	assert.NotContains(t, page.Text, "JavaScript")
	assert.Equal(t, []string{
		ts.URL + "/img/a.png",
		ts.URL + "/shop/img/b.png",
		"http://cdn.example.net/c.png",
		ts.URL + "/lazy/d.png",
	}, page.ImageURLs)
}

func TestFetch_FailuresYieldEmptyContent(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		FailURLs: map[string]bool{"https://down.example": true},
		Pages: map[string]testutil.DummyPage{
			"https://missing.example": {Status: http.StatusNotFound, Body: "<p>not here</p>"},
		},
	}
	log := &testutil.DummyLogger{}
	f, err := fetcher.New(fetcher.DefaultConfig(), wc, log)
	require.NoError(t, err)

	for _, u := range []string{"https://down.example", "https://missing.example"} {
		page := f.Fetch(context.Background(), u)
		assert.Empty(t, page.Text, u)
		assert.NotNil(t, page.ImageURLs, u)
		assert.Empty(t, page.ImageURLs, u)
	}
	assert.Equal(t, 2, log.WarnCount())
}

func TestFetch_TruncatesText(t *testing.T) {
	t.Parallel()
	body := "<html><body><p>" + strings.Repeat("ü", 120) + "</p></body></html>"
	wc := &testutil.DummyWebClient{Pages: map[string]testutil.DummyPage{"https://long.example": {Body: body}}}
	f := newFetcher(t, wc, fetcher.Config{MaxTextLength: 100})

	page := f.Fetch(context.Background(), "https://long.example")
	assert.Equal(t, 100, len([]rune(page.Text)))
}

func TestExtract_BaseHrefAndImageCap(t *testing.T) {
	t.Parallel()
	f := newFetcher(t, &testutil.DummyWebClient{}, fetcher.Config{MaxImages: 2})

	page, err := f.Extract("https://example.com/a/b", []byte(`<html><head><base href="https://static.example.com/assets/"></head>
		<body><img src="1.png"><img src="2.png"><img src="3.png"></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://static.example.com/assets/1.png",
		"https://static.example.com/assets/2.png",
	}, page.ImageURLs)
	assert.Empty(t, page.Text)
}

func TestExtract_PlainTextBody(t *testing.T) {
	t.Parallel()
	f := newFetcher(t, &testutil.DummyWebClient{}, fetcher.DefaultConfig())
	page, err := f.Extract("https://example.com", []byte("just\n\n some   text"))
	require.NoError(t, err)
	assert.Equal(t, "just some text", page.Text)
	assert.Empty(t, page.ImageURLs)
}

func TestNew_RequiresWebClient(t *testing.T) {
	t.Parallel()
	_, err := fetcher.New(fetcher.DefaultConfig(), nil, nil)
	assert.Error(t, err)
}
