package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ThumbnailSize matches the list-view thumbnails of the mobile client.
const ThumbnailSize = 50

// Decode decodes PNG, JPEG, GIF or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Thumbnail scales img to a size x size PNG. The aspect ratio is not kept.
func Thumbnail(img image.Image, size int) ([]byte, error) {
	if size <= 0 {
		size = ThumbnailSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailDataURI builds a PNG thumbnail data URI from an image data URI.
func ThumbnailDataURI(imageURI string, size int) (string, error) {
	_, data, err := ParseDataURI(imageURI)
	if err != nil {
		return "", err
	}
	img, err := Decode(data)
	if err != nil {
		return "", err
	}
	thumb, err := Thumbnail(img, size)
	if err != nil {
		return "", err
	}
	return EncodeDataURI("image/png", thumb), nil
}
