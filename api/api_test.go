// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/engine"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newServer(t *testing.T, opts Options) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	eng, err := engine.New(db, engine.Options{})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	mux.Handle("/", New(eng, opts))
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int, http.Header) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode, res.Header
}

func TestRouter(t *testing.T) {
	var level slog.LevelVar
	ts := newServer(t, Options{AllowedOrigins: "*", LogLevel: &level})

	body, code, header := httpGet(t, ts.URL+"/pool")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"initialized":false`)
	assert.Equal(t, doc.Version(), header.Get(versionHeader))

	body, code, _ = httpGet(t, ts.URL+"/doc/stakepool.yaml")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "openapi:")

	_, code, _ = httpGet(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, code, "redirected to the doc")

	_, code, _ = httpGet(t, ts.URL+"/admin/loglevel")
	assert.Equal(t, http.StatusOK, code)

	_, code, _ = httpGet(t, ts.URL+"/unknown")
	assert.Equal(t, http.StatusNotFound, code)

	res, err := http.Post(ts.URL+"/pool/stake", "application/json", strings.NewReader(`{"staker":"`+common.NameToAddress("a").String()+`","amount":"1"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "pool is not initialized")
}

func TestAdminNotMounted(t *testing.T) {
	ts := newServer(t, Options{})
	_, code, _ := httpGet(t, ts.URL+"/admin/loglevel")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCORS(t *testing.T) {
	ts := newServer(t, Options{AllowedOrigins: "http://allowed.example"})

	for origin, allowed := range map[string]bool{
		"http://allowed.example": true,
		"http://other.example":   false,
	} {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/pool/total-staked", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		if allowed {
			assert.Equal(t, origin, res.Header.Get("Access-Control-Allow-Origin"))
		} else {
			assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
		}
	}
}

func TestMetricsMiddleware(t *testing.T) {
	ts := newServer(t, Options{EnableMetrics: true})

	httpGet(t, ts.URL+"/pool")
	httpGet(t, ts.URL+"/pool")
	httpGet(t, ts.URL+"/pool/stakers/0x00")
	httpGet(t, ts.URL+"/not-a-route")

	body, code, _ := httpGet(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	family, ok := families["stakepool_api_request_count"]
	require.True(t, ok)
	counts := make(map[string]float64)
	for _, m := range family.GetMetric() {
		labels := make(map[string]string)
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		assert.Equal(t, http.MethodGet, labels["method"])
		counts[labels["name"]+" "+labels["code"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(2), counts["pool_get_summary 200"])
	assert.Equal(t, float64(1), counts["pool_get_staker 400"])
	assert.Len(t, counts, 2, "unmatched routes are not recorded")

	_, ok = families["stakepool_api_duration_ms"]
	assert.True(t, ok)
}
