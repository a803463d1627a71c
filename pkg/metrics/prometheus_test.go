package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewHandler_ServesCounters(t *testing.T) {
	collector := NewCollector()
	handler := NewHandler(collector)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	collector.ResyncLoss()
	collector.AacSegmentEmitted()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{"dabcore_resync_loss_total", "dabcore_aac_segments_emitted_total"} {
		if !strings.Contains(bodyStr, want) {
			t.Errorf("expected metrics output to contain %q, got:\n%s", want, bodyStr)
		}
	}
}
