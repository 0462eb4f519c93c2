package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPNG renders a w x h two-tone PNG.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{R: 200, G: 40, B: 40, A: 255}
			if x > w/2 {
				c = color.RGBA{R: 20, G: 60, B: 220, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseDataURI(t *testing.T) {
	raw := testPNG(t, 4, 4)
	b64 := base64.StdEncoding.EncodeToString(raw)

	t.Run("data uri", func(t *testing.T) {
		mime, data, err := ParseDataURI("data:image/jpeg;base64," + b64)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", mime)
		assert.Equal(t, raw, data)
	})

	t.Run("bare base64 is sniffed", func(t *testing.T) {
		mime, data, err := ParseDataURI(b64)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mime)
		assert.Equal(t, raw, data)
	})

	t.Run("unpadded base64", func(t *testing.T) {
		_, data, err := ParseDataURI(base64.RawStdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("rejects", func(t *testing.T) {
		for _, in := range []string{"", "   ", "data:image/png,plain", "data:image/png;base64", "%%%"} {
			_, _, err := ParseDataURI(in)
			assert.ErrorIs(t, err, ErrNotImage, in)
		}
	})
}

func TestNormalizeDataURI(t *testing.T) {
	raw := testPNG(t, 2, 2)
	b64 := base64.StdEncoding.EncodeToString(raw)

	got, err := NormalizeDataURI(b64)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+b64, got)

	uri := "data:image/jpeg;base64," + b64
	got, err = NormalizeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, uri, got)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".png", ExtensionFor("image/png"))
	assert.Equal(t, ".webp", ExtensionFor("image/webp"))
	assert.Equal(t, ".jpg", ExtensionFor("image/jpeg"))
	assert.Equal(t, ".jpg", ExtensionFor(""))
}

func TestThumbnailDataURI(t *testing.T) {
	uri := EncodeDataURI("image/png", testPNG(t, 300, 120))

	thumbURI, err := ThumbnailDataURI(uri, ThumbnailSize)
	require.NoError(t, err)

	mime, data, err := ParseDataURI(thumbURI)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, img.Bounds().Dx())
	assert.Equal(t, ThumbnailSize, img.Bounds().Dy())
}

func TestThumbnailDataURI_NotAnImage(t *testing.T) {
	_, err := ThumbnailDataURI(EncodeDataURI("image/png", []byte("hello")), ThumbnailSize)
	assert.Error(t, err)
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := BlurHashFromDataURI(EncodeDataURI("image/png", testPNG(t, 200, 100)))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	img, err := Decode(testPNG(t, 200, 100))
	require.NoError(t, err)
	small := resizeForBlurHash(img)
	assert.Equal(t, blurHashSize, small.Bounds().Dx())
	assert.Equal(t, blurHashSize/2, small.Bounds().Dy())
}

func TestStorage(t *testing.T) {
	s, err := NewStorage(t.TempDir(), "exports")
	require.NoError(t, err)

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, s.Save("sunset.png", []byte("pixels")))
	assert.True(t, s.Exists("sunset.png"))

	data, err := s.Get("sunset.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)

	hash, err := s.Hash("sunset.png")
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	require.NoError(t, s.Delete("sunset.png"))
	require.NoError(t, s.Delete("sunset.png"))
	assert.False(t, s.Exists("sunset.png"))
}

func TestStorage_RejectsBadInput(t *testing.T) {
	_, err := NewStorage("", "exports")
	assert.Error(t, err)
	_, err = NewStorage(t.TempDir(), "")
	assert.Error(t, err)

	s, err := NewStorage(t.TempDir(), "exports")
	require.NoError(t, err)

	assert.Error(t, s.Save("", []byte("x")))
	assert.Error(t, s.Save("a.png", nil))
	assert.Error(t, s.Save("../escape.png", []byte("x")))
	assert.Error(t, s.Save(filepath.Join("nested", "a.png"), []byte("x")))
	assert.False(t, s.Exists(".."))

	_, err = s.Get("missing.png")
	assert.Error(t, err)
}
