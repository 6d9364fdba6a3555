package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBatchStart(ctx, []string{"file_1.html"}, 1)
	p.OnWorkerStart(ctx, 0, 1)
	p.OnFileStart(ctx, 0, "file_1.html")
	p.OnFileComplete(ctx, 0, "file_1.html", 12, false, time.Second, nil)
	p.OnFileAbandoned(ctx, 0, "file_2.html", errors.New("no browser"))
	p.OnWorkerExit(ctx, 0, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "deck")
	c.OnCacheMiss(ctx, "deck")
	c.OnCacheSet(ctx, "deck", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/convert")
	h.OnResponse(ctx, "POST", "/v1/convert", 200, time.Second)
	h.OnError(ctx, "POST", "/v1/convert", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &countingPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{name: "cache"}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{name: "http"}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &countingPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestConcurrentDispatch(t *testing.T) {
	Reset()
	defer Reset()

	hooks := &countingPipelineHooks{}
	SetPipelineHooks(hooks)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				Pipeline().OnFileStart(context.Background(), w, "f")
			}
		}()
	}
	wg.Wait()

	if got := hooks.started(); got != 80 {
		t.Errorf("started = %d, want 80", got)
	}
}

type countingPipelineHooks struct {
	NoopPipelineHooks
	mu    sync.Mutex
	files int
}

func (h *countingPipelineHooks) OnFileStart(context.Context, int, string) {
	h.mu.Lock()
	h.files++
	h.mu.Unlock()
}

func (h *countingPipelineHooks) started() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.files
}

type testCacheHooks struct {
	NoopCacheHooks
	name string
}

type testHTTPHooks struct {
	NoopHTTPHooks
	name string
}
