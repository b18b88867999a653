package oracle_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/testutil"
)

func TestRandomIdentityOracle_SeededIsRepeatable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := oracle.RandomIdentityConfig{Seed: 42, MaxMatches: 10, ImageBaseURL: "https://img.test/"}

	a := oracle.NewRandomIdentityOracle(cfg)
	b := oracle.NewRandomIdentityOracle(cfg)

	ref, err := a.ResolveProfileImage(ctx, "alice smith")
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/alice%20smith.jpg", ref)

	for i := 0; i < 20; i++ {
		na, err := a.CountSimilarImages(ctx, ref)
		require.NoError(t, err)
		nb, err := b.CountSimilarImages(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, na, nb)
		assert.GreaterOrEqual(t, na, 0)
		assert.LessOrEqual(t, na, 10)
	}
}

func TestRandomIdentityOracle_EmptyHandle(t *testing.T) {
	t.Parallel()
	o := oracle.NewRandomIdentityOracle(oracle.RandomIdentityConfig{Seed: 1})
	_, err := o.ResolveProfileImage(context.Background(), " ")
	assert.ErrorIs(t, err, oracle.ErrNotFound)
}

func TestStaticIdentityOracle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	images := map[string]string{"alice": "https://img/alice.jpg"}
	o := oracle.NewStaticIdentityOracle(oracle.StaticIdentityConfig{
		Images:  images,
		Matches: map[string]int{"https://img/alice.jpg": 4},
	})
	images["alice"] = "mutated"

	ref, err := o.ResolveProfileImage(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://img/alice.jpg", ref)

	n, err := o.CountSimilarImages(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = o.ResolveProfileImage(ctx, "bob")
	assert.ErrorIs(t, err, oracle.ErrNotFound)

	n, err = o.CountSimilarImages(ctx, "https://img/unknown.jpg")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWebIdentityOracle_ResolvesOpenGraphImage(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/u/alice/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><head>
			<meta name="twitter:image" content="/tw.jpg">
			<meta property="og:image" content="/avatars/alice.jpg#x">
		</head><body></body></html>`)
	})
	mux.HandleFunc("/u/bob/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><head><title>bob</title></head></html>`)
	})
	mux.HandleFunc("/u/carol/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/u/dave/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	o, err := oracle.NewWebIdentityOracle(oracle.WebIdentityConfig{ProfileURL: ts.URL + "/u/{handle}/"}, newNetClient(t, ts), nil)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := o.ResolveProfileImage(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/avatars/alice.jpg", ref)

	_, err = o.ResolveProfileImage(ctx, "bob")
	assert.ErrorIs(t, err, oracle.ErrNotFound)

	_, err = o.ResolveProfileImage(ctx, "carol")
	assert.ErrorIs(t, err, oracle.ErrNotFound)

	_, err = o.ResolveProfileImage(ctx, "dave")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}

func TestWebIdentityOracle_CountSimilarImages(t *testing.T) {
	t.Parallel()
	var gotImage string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotImage = r.URL.Query().Get("image")
		switch gotImage {
		case "bad":
			_, _ = io.WriteString(w, `{"matches": -3}`)
		case "missing":
			_, _ = io.WriteString(w, `{}`)
		default:
			_, _ = io.WriteString(w, `{"matches": 6}`)
		}
	}))
	defer ts.Close()

	o, err := oracle.NewWebIdentityOracle(oracle.WebIdentityConfig{
		ProfileURL:     "https://example.com/{handle}",
		SearchEndpoint: ts.URL + "/search?key=k",
	}, newNetClient(t, ts), nil)
	require.NoError(t, err)
	ctx := context.Background()

	n, err := o.CountSimilarImages(ctx, "https://img.test/a.jpg?s=1")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "https://img.test/a.jpg?s=1", gotImage)

	_, err = o.CountSimilarImages(ctx, "bad")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
	_, err = o.CountSimilarImages(ctx, "missing")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}

func TestWebIdentityOracle_NoSearchEndpoint(t *testing.T) {
	t.Parallel()
	o, err := oracle.NewWebIdentityOracle(oracle.WebIdentityConfig{ProfileURL: "https://example.com/{handle}"}, &testutil.DummyWebClient{}, nil)
	require.NoError(t, err)

	_, err = o.CountSimilarImages(context.Background(), "x")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}

func TestWebIdentityOracle_FetchError(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{FailURLs: map[string]bool{"https://example.com/eve": true}}
	o, err := oracle.NewWebIdentityOracle(oracle.WebIdentityConfig{ProfileURL: "https://example.com/{handle}"}, wc, nil)
	require.NoError(t, err)

	_, err = o.ResolveProfileImage(context.Background(), "eve")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
	assert.False(t, errors.Is(err, oracle.ErrNotFound))
}

func TestNewWebIdentityOracle_Validation(t *testing.T) {
	t.Parallel()
	_, err := oracle.NewWebIdentityOracle(oracle.WebIdentityConfig{ProfileURL: "https://example.com/"}, &testutil.DummyWebClient{}, nil)
	assert.Error(t, err)
	_, err = oracle.NewWebIdentityOracle(oracle.WebIdentityConfig{ProfileURL: "https://example.com/{handle}"}, nil, nil)
	assert.Error(t, err)
}
