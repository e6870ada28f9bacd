package yahoo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketClose/internal/domain/models"
)

const searchBody = `{"quotes":[
 {"symbol":"SPY","shortname":"SPDR S&P 500","quoteType":"ETF"},
 {"symbol":"^GSPC","shortname":"S&P 500","quoteType":"INDEX"},
 {"symbol":"ES=F","shortname":"E-Mini S&P","quoteType":"FUTURE"}
]}`

// 2022-05-11 and 2022-05-12 13:30 UTC, New York offset -4h.
const chartBody = `{"chart":{"result":[{
 "meta":{"symbol":"^GSPC","gmtoffset":-14400},
 "timestamp":[1652275800,1652362200,1652448600],
 "indicators":{"quote":[{"close":[3935.18,3930.08,null]}]}
}],"error":null}}`

func newTestServer(t *testing.T, searchHits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(searchHits, 1)
		assert.Equal(t, "S&P 500", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, searchBody)
	})
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/^GSPC", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1652227200", r.URL.Query().Get("period1"))
		assert.Equal(t, "1652400000", r.URL.Query().Get("period2"))
		_, _ = io.WriteString(w, chartBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_PrefersClassFit(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := New(srv.URL+"/search", srv.URL+"/chart", time.Second)

	got, err := c.Search(context.Background(), "S&P 500", models.Indices)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "^GSPC", got[0].Key)
	assert.Equal(t, "S&P 500", got[0].Name)
	assert.Equal(t, "SPY", got[1].Key)
}

func TestHistory_LocalDatesAndNullCloses(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := New(srv.URL+"/search", srv.URL+"/chart", time.Second)

	from := time.Date(2022, 5, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 5, 12, 0, 0, 0, 0, time.UTC)
	bars, err := c.History(context.Background(), models.Match{Key: "^GSPC"}, from, to)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, from, bars[0].Date)
	assert.Equal(t, to, bars[1].Date)
	assert.Equal(t, "3930.08", bars[1].Close.String())
}

func TestHistory_ChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, time.Second)
	_, err := c.History(context.Background(), models.Match{Key: "NOPE"}, time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestGetJSON_RetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"quotes":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, time.Second, WithAttempts(3))
	got, err := c.Search(context.Background(), "x", models.Bonds)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, time.Second, WithAttempts(3))
	_, err := c.Search(context.Background(), "x", models.Bonds)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
