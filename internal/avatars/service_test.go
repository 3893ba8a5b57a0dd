package avatars

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/logger"
)

func writeSourceImage(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newTestService(t *testing.T, cache ByteCache) (Service, string) {
	t.Helper()
	root := t.TempDir()
	media := config.MediaConfig{
		Root:             root,
		PlaceholderImage: "static/photos/fish_jellyfish.png",
		IconQuality:      90,
		IconCacheTTL:     time.Minute,
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(media, cache, logg), root
}

func decodeIcon(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err, "derived icon must be a JPEG")
	return img
}

func TestIconDimensions(t *testing.T) {
	svc, root := newTestService(t, nil)
	ctx := context.Background()

	cases := map[string][2]int{
		"wide.png":   {1024, 300},
		"tall.png":   {300, 1024},
		"tiny.png":   {10, 10},
		"square.png": {256, 256},
	}
	for name, dims := range cases {
		writeSourceImage(t, filepath.Join(root, name), dims[0], dims[1])
		data, err := svc.Icon(ctx, name)
		require.NoError(t, err, name)
		img := decodeIcon(t, data)
		assert.Equal(t, 256, img.Bounds().Dx(), name)
		assert.Equal(t, 256, img.Bounds().Dy(), name)
	}
}

func TestIconIsDeterministic(t *testing.T) {
	svc, root := newTestService(t, nil)
	ctx := context.Background()
	writeSourceImage(t, filepath.Join(root, "jelly.png"), 640, 480)

	first, err := svc.Icon(ctx, "jelly.png")
	require.NoError(t, err)
	second, err := svc.Icon(ctx, "jelly.png")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The second call must have hit the on-disk memo.
	entries, err := os.ReadDir(filepath.Join(root, "cache", "icons"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIconUsesPlaceholderWhenUnset(t *testing.T) {
	svc, root := newTestService(t, nil)
	writeSourceImage(t, filepath.Join(root, "static", "photos", "fish_jellyfish.png"), 400, 400)

	data, err := svc.Icon(context.Background(), "")
	require.NoError(t, err)
	img := decodeIcon(t, data)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestIconMissingSource(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Icon(context.Background(), "nope.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestIconCorruptSourceFailsClosed(t *testing.T) {
	svc, root := newTestService(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("not an image"), 0o644))

	_, err := svc.Icon(context.Background(), "broken.png")
	require.Error(t, err)
}

type stubCache struct {
	data map[string][]byte
	gets int
	sets int
}

func newStubCache() *stubCache {
	return &stubCache{data: map[string][]byte{}}
}

func (c *stubCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	c.gets++
	if value, ok := c.data[key]; ok {
		return value, nil
	}
	return nil, redis.Nil
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	c.data[key] = value.([]byte)
	return nil
}

func (c *stubCache) IconKey(sourceHash string) string {
	return "mono:icon:" + sourceHash
}

func TestIconCachesDerivedBytes(t *testing.T) {
	cache := newStubCache()
	svc, root := newTestService(t, cache)
	ctx := context.Background()
	writeSourceImage(t, filepath.Join(root, "jelly.png"), 640, 480)

	first, err := svc.Icon(ctx, "jelly.png")
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)
	require.Len(t, cache.data, 1)

	second, err := svc.Icon(ctx, "jelly.png")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "cache hit must not re-store")
	assert.Equal(t, 2, cache.gets)
}
