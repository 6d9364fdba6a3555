package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should never hit")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "deck:a"); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	want := []byte("PK\x03\x04 deck bytes")
	if err := c.Set(ctx, "deck:a", want, time.Hour); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(ctx, "deck:a")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if string(got) != string(want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	if err := c.Delete(ctx, "deck:a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "deck:a"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "deck:a"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry was served")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Errorf("expired entry not removed: %v", err)
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "file_1.html")
	css := filepath.Join(dir, "style.css")
	write := func(path, s string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write(doc, "<div class=slide></div>")
	write(css, ".slide{color:red}")

	h1, err := HashFiles(doc, []string{css})
	if err != nil {
		t.Fatal(err)
	}
	write(css, ".slide{color:blue}")
	h2, err := HashFiles(doc, []string{css})
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("asset change did not change the hash")
	}

	h3, err := HashFiles(doc, []string{filepath.Join(dir, "missing.css")})
	if err != nil {
		t.Fatalf("missing asset should not fail: %v", err)
	}
	if h3 == h2 {
		t.Error("different asset lists hashed equal")
	}

	if _, err := HashFiles(filepath.Join(dir, "nope.html"), nil); err == nil {
		t.Error("missing document should fail")
	}

	moved := t.TempDir()
	write(filepath.Join(moved, "file_1.html"), "<div class=slide></div>")
	write(filepath.Join(moved, "style.css"), ".slide{color:blue}")
	h4, err := HashFiles(filepath.Join(moved, "file_1.html"), []string{filepath.Join(moved, "style.css")})
	if err != nil {
		t.Fatal(err)
	}
	if h4 != h2 {
		t.Error("moving the deck directory changed the hash")
	}

	write(filepath.Join(moved, "file_2.html"), "<div class=slide></div>")
	h5, err := HashFiles(filepath.Join(moved, "file_2.html"), []string{filepath.Join(moved, "style.css")})
	if err != nil {
		t.Fatal(err)
	}
	if h5 == h4 {
		t.Error("document name should be part of the hash")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	d1 := k.DeckKey("abc", DeckKeyOpts{Fingerprint: "f1", Version: "v1"})
	d2 := k.DeckKey("abc", DeckKeyOpts{Fingerprint: "f2", Version: "v1"})
	d3 := k.DeckKey("abc", DeckKeyOpts{Fingerprint: "f1", Version: "v2"})
	if d1 == d2 || d1 == d3 {
		t.Error("options and version must be part of the deck key")
	}
	if !strings.HasPrefix(d1, "deck:") {
		t.Errorf("DeckKey = %s, want deck: prefix", d1)
	}
	if d1 != k.DeckKey("abc", DeckKeyOpts{Fingerprint: "f1", Version: "v1"}) {
		t.Error("DeckKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "serve:")
	plain := NewDefaultKeyer()
	opts := DeckKeyOpts{Fingerprint: "f", Version: "v"}

	if got, want := scoped.DeckKey("h", opts), "serve:"+plain.DeckKey("h", opts); got != want {
		t.Errorf("DeckKey = %s, want %s", got, want)
	}
}

func TestRedisCacheURL(t *testing.T) {
	if _, err := NewRedisCache("not a url", "html2deck:"); err == nil {
		t.Error("expected an error for a malformed url")
	}

	c, err := NewRedisCache("redis://127.0.0.1:1/0", "html2deck:")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	if _, hit, err := c.Get(ctx, "deck:x"); err == nil || hit {
		t.Errorf("Get against a closed port = hit %v, err %v; want an error", hit, err)
	}
}
