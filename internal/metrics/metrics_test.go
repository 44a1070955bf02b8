package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	r.TransitionStarted("screen", "from_right", true)
	r.TransitionStarted("screen", "from_right", true)
	r.TransitionCompleted("screen", 350*time.Millisecond, true)
	r.TransitionCompleted("screen", 10*time.Millisecond, false)
	r.Rejected("push")
	r.SetDepth(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("screen", "from_right", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.interrupted.WithLabelValues("screen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("push")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.depth))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.TransitionStarted("bar", "from_top", false)
		r.TransitionCompleted("bar", time.Millisecond, true)
		r.Rejected("pop")
		r.SetDepth(1)
	})
	assert.Nil(t, r.Registry())
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Rejected("set_stack")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `navstack_rejected_total{op="set_stack"} 1`))
}

func TestRecorder_Serve(t *testing.T) {
	r := NewRecorder()
	r.Rejected("pop")

	srv, err := r.Serve("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `navstack_rejected_total{op="pop"} 1`)
}

func TestRecorder_ServeAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv, err := NewRecorder().Serve(ln.Addr().String(), nil)
	assert.Nil(t, srv)
	assert.ErrorContains(t, err, "failed to listen")
}
