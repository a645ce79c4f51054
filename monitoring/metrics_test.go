package monitoring

import (
	"sync"
	"testing"
	"time"
)

func TestRecordRequest(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordRequest("GET /", 200, 10*time.Millisecond)
	mc.RecordRequest("GET /", 200, 30*time.Millisecond)
	mc.RecordRequest("GET /hello/{name}", 500, 5*time.Millisecond)

	snap := mc.Snapshot()
	if snap.TotalRequests != 3 {
		t.Fatalf("expected 3 requests, got %d", snap.TotalRequests)
	}
	if len(snap.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(snap.Routes))
	}

	root := snap.Routes[0]
	if root.Route != "GET /" {
		t.Fatalf("expected routes sorted, got %s first", root.Route)
	}
	if root.AvgLatencyMs != 20 {
		t.Errorf("expected avg latency 20ms, got %v", root.AvgLatencyMs)
	}
	if root.MaxLatencyMs != 30 {
		t.Errorf("expected max latency 30ms, got %v", root.MaxLatencyMs)
	}
	if root.StatusCounts[200] != 2 {
		t.Errorf("expected two 200s, got %d", root.StatusCounts[200])
	}
	if snap.Routes[1].Errors != 1 {
		t.Errorf("expected one error, got %d", snap.Routes[1].Errors)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	mc := NewMetricsCollector()
	mc.RecordRequest("GET /", 200, time.Millisecond)

	snap := mc.Snapshot()
	snap.Routes[0].StatusCounts[200] = 99

	if got := mc.Snapshot().Routes[0].StatusCounts[200]; got != 1 {
		t.Fatalf("snapshot mutation leaked into collector: %d", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	mc := NewMetricsCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mc.RecordRequest("GET /", 200, time.Millisecond)
			_ = mc.Snapshot()
		}()
	}
	wg.Wait()

	if got := mc.Snapshot().TotalRequests; got != 50 {
		t.Fatalf("expected 50 requests, got %d", got)
	}

	mc.Reset()
	if got := mc.Snapshot().TotalRequests; got != 0 {
		t.Fatalf("expected reset collector, got %d", got)
	}
}
