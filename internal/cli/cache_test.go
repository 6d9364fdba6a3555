package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/html2deck/pkg/cache"
	"github.com/matzehuels/html2deck/pkg/config"
)

func TestCacheDir(t *testing.T) {
	dir, err := cacheDir(config.Config{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	want, err := cache.DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	cfg := config.Config{Convert: config.Convert{CacheDir: "/tmp/decks-cache"}}
	dir, err := cacheDir(cfg)
	if err != nil || dir != "/tmp/decks-cache" {
		t.Errorf("cacheDir() = %q, %v", dir, err)
	}
}

func TestNewCache(t *testing.T) {
	off := false
	tests := []struct {
		name     string
		cfg      config.Config
		noCache  bool
		wantFile bool
		wantType string
	}{
		{"default", config.Config{Convert: config.Convert{CacheDir: t.TempDir()}}, false, true, "*cache.FileCache"},
		{"flag disables", config.Config{Convert: config.Convert{CacheDir: t.TempDir()}}, true, false, "*cache.NullCache"},
		{"config disables", config.Config{Convert: config.Convert{CacheDir: t.TempDir(), Cache: &off}}, false, false, "*cache.NullCache"},
		{"redis", config.Config{Convert: config.Convert{CacheURL: "redis://127.0.0.1:6379/0"}}, false, false, "*cache.RedisCache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(tt.cfg, tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()
			_, isFile := c.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Errorf("file cache = %v, want %v", isFile, tt.wantFile)
			}
			if got := fmt.Sprintf("%T", c); got != tt.wantType {
				t.Errorf("cache type = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "html2deck.toml")
	cacheRoot := filepath.Join(dir, "cache")
	if err := os.WriteFile(cfgPath, []byte("[convert]\ncache_dir = \""+filepath.ToSlash(cacheRoot)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := cache.NewFileCache(cacheRoot)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(t.Context(), "deck:abc", []byte("pptx"), cache.TTLDeck); err != nil {
		t.Fatal(err)
	}

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(t.Context(), "deck:abc"); hit {
		t.Error("entry survived cache clear")
	}
}
