package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relabs-tech/ism330_computer/internal/imu"
)

func get(t *testing.T, mux *http.ServeMux, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestLatestEndpoints(t *testing.T) {
	l := newLatest()
	mux := http.NewServeMux()
	l.routes(mux)

	if rec := get(t, mux, "/api/imu"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before data: status %d", rec.Code)
	}

	if err := l.storeSample([]byte(`{"source":"left","temp_c":31.5}`)); err != nil {
		t.Fatal(err)
	}
	if err := l.storeBatch([]byte(`{"source":"right","unread":7}`)); err != nil {
		t.Fatal(err)
	}
	if err := l.storeSample([]byte(`{`)); err == nil {
		t.Error("bad payload accepted")
	}

	rec := get(t, mux, "/api/imu")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("status %d, content type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var s imu.Sample
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil || s.TempC != 31.5 {
		t.Errorf("sample = %+v, %v", s, err)
	}

	rec = get(t, mux, "/api/fifo?imu=right")
	var b imu.FifoBatch
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil || b.Unread != 7 {
		t.Errorf("batch = %+v, %v", b, err)
	}
	if rec := get(t, mux, "/api/fifo?imu=left"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("left FIFO without data: status %d", rec.Code)
	}
	if rec := get(t, mux, "/api/imu?imu=both"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad side: status %d", rec.Code)
	}
}
