package history_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/history"
)

// base time truncated to microseconds so every backend round-trips it.
var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleReport(url string, score float64, at time.Time) *history.Report {
	res := assessor.Fuse(score, score, score)
	res.Evidence = []assessor.EvidenceItem{{RuleID: "image:page-image-count", Signal: assessor.SignalImage, Value: "2", Contribution: 60}}
	return &history.Report{
		URL:          url,
		CanonicalURL: url,
		Result:       res,
		TextSample:   "sample text for " + url,
		ImageCount:   2,
		CreatedAt:    at,
	}
}

// runStoreContract exercises behaviour every Store backend must share.
func runStoreContract(t *testing.T, open func(t *testing.T) history.Store) {
	ctx := context.Background()

	t.Run("save assigns id and time", func(t *testing.T) {
		s := open(t)
		r := &history.Report{URL: "https://example.com", Result: assessor.Fuse(90, 50, 60)}
		require.NoError(t, s.Save(ctx, r))

		_, err := uuid.Parse(r.ID)
		assert.NoError(t, err)
		assert.False(t, r.CreatedAt.IsZero())
		assert.Equal(t, "https://example.com", r.CanonicalURL)

		got, err := s.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.Result, got.Result)
	})

	t.Run("get round-trips every field", func(t *testing.T) {
		s := open(t)
		r := sampleReport("https://a.example", 72.5, t0)
		r.Result.TextVerdict = "scam"
		r.Result.Degraded = []assessor.Signal{assessor.SignalText}
		require.NoError(t, s.Save(ctx, r))

		got, err := s.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, r.URL, got.URL)
		assert.Equal(t, r.CanonicalURL, got.CanonicalURL)
		assert.Equal(t, r.Result, got.Result)
		assert.Equal(t, r.TextSample, got.TextSample)
		assert.Equal(t, r.ImageCount, got.ImageCount)
		assert.True(t, r.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", r.CreatedAt, got.CreatedAt)
	})

	t.Run("get unknown id", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, history.ErrNotFound)
		_, err = s.Get(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run("save nil", func(t *testing.T) {
		s := open(t)
		assert.ErrorIs(t, s.Save(ctx, nil), history.ErrNilReport)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		s := open(t)
		r := sampleReport("https://a.example", 50, t0)
		require.NoError(t, s.Save(ctx, r))
		dup := sampleReport("https://b.example", 50, t0)
		dup.ID = r.ID
		assert.Error(t, s.Save(ctx, dup))
	})

	t.Run("list newest first with limit", func(t *testing.T) {
		s := open(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Save(ctx, sampleReport(fmt.Sprintf("https://%d.example", i), 50, t0.Add(time.Duration(i)*time.Minute))))
		}

		all, err := s.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 5)
		assert.Equal(t, "https://4.example", all[0].URL)
		assert.Equal(t, "https://0.example", all[4].URL)

		two, err := s.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, two, 2)
		assert.Equal(t, "https://3.example", two[1].URL)
	})

	t.Run("list empty", func(t *testing.T) {
		s := open(t)
		all, err := s.List(ctx, 10)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("previous is strictly before and same url", func(t *testing.T) {
		s := open(t)
		u := "https://shop.example/"
		first := sampleReport(u, 40, t0)
		second := sampleReport(u, 60, t0.Add(time.Hour))
		other := sampleReport("https://other.example/", 80, t0.Add(30*time.Minute))
		for _, r := range []*history.Report{first, second, other} {
			require.NoError(t, s.Save(ctx, r))
		}

		prev, err := s.Previous(ctx, u, second.CreatedAt)
		require.NoError(t, err)
		assert.Equal(t, first.ID, prev.ID)

		prev, err = s.Previous(ctx, u, t0.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, second.ID, prev.ID)

		_, err = s.Previous(ctx, u, first.CreatedAt)
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		s := open(t)
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Save(ctx, sampleReport(fmt.Sprintf("https://c%d.example", i), 50, t0.Add(time.Duration(i)*time.Second)))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		all, err := s.List(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, all, 20)
	})
}
