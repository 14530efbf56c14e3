package rdserver_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/ddreduce/internal/oracle"
	"github.com/dekarrin/ddreduce/internal/rdserver"
	"github.com/dekarrin/ddreduce/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Healthz(t *testing.T) {
	s := rdserver.New(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_Report_NotYetAvailable(t *testing.T) {
	s := rdserver.New(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Report_AfterSet(t *testing.T) {
	s := rdserver.New(nil, nil)
	rpt := report.New("/proj", "src/main.rs", oracle.BuildError{HasCode: true, ErrorCode: "E0384"}, time.Now())
	rpt.Finished = time.Now()
	s.SetLastReport(rpt)

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "E0384")
}

func Test_Trigger_DisabledWithoutSecret(t *testing.T) {
	s := rdserver.New(nil, func() error { return nil })
	req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
	req.Header.Set("X-Trigger-Secret", "x")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_Trigger_WrongSecretRejected(t *testing.T) {
	hash, err := rdserver.HashSecret("correct-secret")
	require.NoError(t, err)

	called := false
	s := rdserver.New(hash, func() error { called = true; return nil })

	req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
	req.Header.Set("X-Trigger-Secret", "wrong")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func Test_Trigger_CorrectSecretRuns(t *testing.T) {
	hash, err := rdserver.HashSecret("correct-secret")
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	s := rdserver.New(hash, func() error { ran <- struct{}{}; return nil })

	req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
	req.Header.Set("X-Trigger-Secret", "correct-secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("trigger function was not invoked")
	}
}

func Test_Trigger_OverlappingRequestRejected(t *testing.T) {
	hash, err := rdserver.HashSecret("correct-secret")
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	s := rdserver.New(hash, func() error {
		started <- struct{}{}
		<-release
		return nil
	})

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
		req.Header.Set("X-Trigger-Secret", "correct-secret")
		return req
	}

	rec1 := httptest.NewRecorder()
	s.ServeHTTP(rec1, newReq())
	require.Equal(t, http.StatusAccepted, rec1.Code)

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("trigger function was not invoked")
	}

	rec2 := httptest.NewRecorder()
	s.ServeHTTP(rec2, newReq())
	assert.Equal(t, http.StatusConflict, rec2.Code)

	close(release)
}
