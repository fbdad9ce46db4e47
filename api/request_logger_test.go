// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakepool/log"
)

func TestRequestLoggerMiddleware(t *testing.T) {
	fast := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}
	slow := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		fast(w, r)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{"enabled", fast, true, 0, true},
		{"disabled", fast, false, 0, false},
		{"disabled fast under threshold", fast, false, time.Second, false},
		{"disabled slow over threshold", slow, false, 5 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewLogger(log.JSONHandler(&buf))
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.threshold)(tt.handler)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pool/stake", strings.NewReader(`{"amount":"1"}`)))

			assert.Equal(t, `{"amount":"1"}`, rr.Body.String(), "body is passed on")
			if tt.shouldLog {
				assert.Contains(t, buf.String(), `"URI":"/pool/stake"`)
				assert.Contains(t, buf.String(), `"Method":"POST"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
