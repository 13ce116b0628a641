package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/etnz/findash"
	"github.com/etnz/findash/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink remembers the datasets it saved.
type recordingSink struct {
	mu    sync.Mutex
	saved []*findash.Dataset
}

func (s *recordingSink) Save(ctx context.Context, ds *findash.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, ds)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

var testGenerator = findash.Generator{Days: 60, End: date.New(2025, time.July, 1), Seed: 1}

// newTestServer returns a server over a store holding a generated dataset.
func newTestServer(t *testing.T, loaded bool) (*Server, *findash.Store, *recordingSink) {
	t.Helper()
	store := findash.NewStore(findash.DefaultOptions(), nil)
	t.Cleanup(store.Close)
	if loaded {
		ds, err := testGenerator.Generate()
		require.NoError(t, err)
		store.Set(ds)
	}
	sink := &recordingSink{}
	srv := New(store, Options{Generator: testGenerator, Sinks: []findash.Sink{sink}, KeepAlive: time.Hour}, nil)
	return srv, store, sink
}

func do(t *testing.T, h http.Handler, method, target string, body []byte, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, false)
	rec := do(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestNoDataset(t *testing.T) {
	srv, _, _ := newTestServer(t, false)
	for _, target := range []string{"/", "/api/dashboard", "/api/kpis", "/api/charts/monthly-profit.svg", "/api/dataset.csv"} {
		rec := do(t, srv, "GET", target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestDashboardETag(t *testing.T) {
	srv, store, _ := newTestServer(t, true)

	rec := do(t, srv, "GET", "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	etag := rec.Header().Get("ETag")
	assert.Equal(t, store.Revision().ETag(), etag)

	var got struct {
		Title   string `json:"title"`
		Records int    `json:"records"`
		From    string `json:"from"`
		Charts  []struct {
			ID string `json:"id"`
		} `json:"charts"`
		Table struct {
			Rows [][]string `json:"rows"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Financial CEO Dashboard", got.Title)
	assert.Equal(t, 60, got.Records)
	assert.Equal(t, "2025-05-02", got.From)
	assert.Len(t, got.Charts, 4)
	assert.Len(t, got.Table.Rows, 12)

	rec = do(t, srv, "GET", "/api/dashboard", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	// a new revision invalidates the tag
	ds, _ := store.Dataset()
	store.Set(ds)
	rec = do(t, srv, "GET", "/api/dashboard", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKPIs(t *testing.T) {
	srv, store, _ := newTestServer(t, true)
	rec := do(t, srv, "GET", "/api/kpis", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]struct {
		Display string `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	ds, _ := store.Dataset()
	want := findash.ComputeKPIs(ds)
	assert.Equal(t, want.TotalRevenue.String(), got["totalRevenue"].Display)
	assert.Equal(t, want.TotalProfit.String(), got["totalProfit"].Display)
	assert.Equal(t, want.Expenses.String(), got["expenses"].Display)
	assert.Equal(t, want.CashFlow.String(), got["cashFlow"].Display)
}

func TestCharts(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	for _, id := range []string{findash.ChartRollingRevenue, findash.ChartRollingProfit, findash.ChartMonthlyProfit, findash.ChartExpenseDistribution} {
		rec := do(t, srv, "GET", "/api/charts/"+id+".svg?theme=light", nil)
		require.Equal(t, http.StatusOK, rec.Code, id)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")

		rec = do(t, srv, "GET", "/api/charts/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code, id)
		assert.Contains(t, rec.Body.String(), `"id":"`+id+`"`)
	}

	assert.Equal(t, http.StatusNotFound, do(t, srv, "GET", "/api/charts/nope.svg", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "GET", "/api/charts/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/charts/monthly-profit.svg?theme=neon", nil).Code)
}

func TestPages(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	rec := do(t, srv, "GET", "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Financial CEO Dashboard</title>")
	assert.Contains(t, rec.Body.String(), `<body class="dark">`)

	rec = do(t, srv, "GET", "/api/table", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, strings.Count(rec.Body.String(), "<tr><td>"))

	rec = do(t, srv, "GET", "/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Financial CEO Dashboard</h1>")
}

func TestDatasetDownload(t *testing.T) {
	srv, store, _ := newTestServer(t, true)

	rec := do(t, srv, "GET", "/api/dataset.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := findash.DecodeCSV(rec.Body, "download", "USD")
	require.NoError(t, err)
	want, _ := store.Dataset()
	assert.Equal(t, want.Len(), got.Len())
	assert.True(t, findash.ComputeKPIs(want).TotalRevenue.Equal(findash.ComputeKPIs(got).TotalRevenue))

	rec = do(t, srv, "GET", "/api/dataset.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestRegenerate(t *testing.T) {
	srv, store, sink := newTestServer(t, true)
	before := store.Revision()

	rec := do(t, srv, "POST", "/api/dataset/regenerate?seed=7&days=40", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rev struct {
		N uint64 `json:"n"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rev))
	assert.Equal(t, before.N+1, rev.N)

	ds, _ := store.Dataset()
	assert.Equal(t, 40, ds.Len())
	assert.Equal(t, 1, sink.count())

	for _, target := range []string{
		"/api/dataset/regenerate?days=0",
		"/api/dataset/regenerate?days=x",
		"/api/dataset/regenerate?seed=-1",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", target, nil).Code, target)
	}
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, "GET", "/api/dataset/regenerate", nil).Code)
}

func TestOptions(t *testing.T) {
	srv, store, sink := newTestServer(t, true)
	before := store.Revision()
	ds, _ := store.Dataset()

	rec := do(t, srv, "POST", "/api/options?window=7&theme=light", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, before.N+1, store.Revision().N)

	opts := store.Options()
	assert.Equal(t, 7, opts.RollingWindow)
	assert.Equal(t, findash.Light, opts.Theme)
	assert.Equal(t, findash.DefaultOptions().TableRows, opts.TableRows, "rows is unchanged")
	after, _ := store.Dataset()
	assert.Same(t, ds, after, "the dataset is unchanged")
	assert.Equal(t, 0, sink.count())

	d, _, err := store.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, "Rolling 7 Day Revenue", d.Charts[0].Title)

	current := store.Revision()
	for _, target := range []string{
		"/api/options?window=0",
		"/api/options?rows=x",
		"/api/options?theme=neon",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", target, nil).Code, target)
	}
	assert.Equal(t, current, store.Revision(), "rejected options keep the revision")
}

func TestUpload(t *testing.T) {
	srv, store, sink := newTestServer(t, true)
	before := store.Revision()

	rec := do(t, srv, "PUT", "/api/dataset.csv", []byte("Date,Revenue\n2025-01-01,12\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, before, store.Revision(), "a rejected upload keeps the dataset")

	csv := "Date,Revenue,Profit,Cash Inflow,Cash Outflow,Rent Expense\n" +
		"2025-01-01,100,10,150,140,5\n" +
		"2025-01-02,200,20,250,230,6\n"
	rec = do(t, srv, "PUT", "/api/dataset.csv", []byte(csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ds, _ := store.Dataset()
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"Rent"}, ds.Categories())
	assert.Equal(t, 1, sink.count())
}

func TestCORS(t *testing.T) {
	srv, _, _ := newTestServer(t, true)
	rec := do(t, srv, "GET", "/api/kpis", nil, "Origin", "http://example.com")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEvents(t *testing.T) {
	srv, store, _ := newTestServer(t, true)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	next := func() (event, data string) {
		t.Helper()
		for {
			line, err := events.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimSuffix(line, "\n")
			switch {
			case line == "" && event != "":
				return event, data
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	event, data := next()
	assert.Equal(t, "revision", event)
	assert.Contains(t, data, `"n":1`)

	ds, _ := store.Dataset()
	store.Set(ds)
	event, data = next()
	assert.Equal(t, "revision", event)
	assert.Contains(t, data, `"n":2`)
}

func TestServe(t *testing.T) {
	srv, _, _ := newTestServer(t, true)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
