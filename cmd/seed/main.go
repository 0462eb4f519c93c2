// Package main seeds a data directory with the default categories and a set
// of sample entries, for trying the API without a remote.
//
// Usage:
//
//	DATA_PATH=~/NoteBook go run ./cmd/seed
//	DATA_PATH=/tmp/nb go run ./cmd/seed --count 50
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/media/images"
	"github.com/macontouch/notebook/internal/service"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/validation"
)

var (
	count    = flag.Int("count", 20, "Number of sample entries to add")
	imgSize  = flag.Int("image-size", 256, "Edge length of generated images in pixels")
	dataPath = flag.String("data-path", "", "Data directory (default: $DATA_PATH or ~/NoteBook)")
)

var adjectives = []string{"Golden", "Silent", "Crimson", "Misty", "Bright", "Quiet", "Wild", "Lazy"}

var nouns = []string{"Sunset", "River", "Harbor", "Forest", "Meadow", "Lantern", "Monsoon", "Bazaar"}

func main() {
	flag.Parse()

	dir := *dataPath
	if dir == "" {
		dir = os.Getenv("DATA_PATH")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dir = filepath.Join(home, "NoteBook")
	}

	fmt.Printf("Seeding data directory: %s\n", dir)

	files, err := store.NewFileBackend(dir)
	if err != nil {
		log.Fatalf("Failed to open data directory: %v", err)
	}
	st := store.New(files, nil, slog.New(slog.DiscardHandler))
	defer st.Close()

	ctx := context.Background()
	logger := slog.Default()
	v := validation.New()

	categories := service.NewCategoryService(st, v, nil, nil, logger)
	seeded, err := categories.SeedDefaults(ctx)
	if err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}
	if seeded {
		fmt.Println("Installed default categories")
	}

	cats, err := categories.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	if len(cats) == 0 {
		log.Fatal("No categories available")
	}

	catalog := service.NewCatalogService(st, v, nil, nil, nil, language.English, logger)

	added, skipped := 0, 0
	for n := range *count {
		name := fmt.Sprintf("%s %s %d", adjectives[rand.IntN(len(adjectives))], nouns[rand.IntN(len(nouns))], n+1)
		uri, err := gradientDataURI(*imgSize)
		if err != nil {
			log.Fatalf("Failed to generate image: %v", err)
		}

		_, err = catalog.Add(ctx, service.AddEntryRequest{
			Name:        name,
			Description: "Sample entry " + name,
			Category:    cats[rand.IntN(len(cats))].Code,
			Image:       uri,
		})
		switch {
		case err == nil:
			added++
		case errors.Is(err, domainerrors.ErrDuplicateName):
			skipped++
		default:
			log.Fatalf("Failed to add %q: %v", name, err)
		}
	}

	fmt.Printf("Added %d entries (%d already present)\n", added, skipped)
}

// gradientDataURI draws a random two-colour diagonal gradient as a PNG data URI.
func gradientDataURI(size int) (string, error) {
	from := color.RGBA{R: uint8(rand.IntN(256)), G: uint8(rand.IntN(256)), B: uint8(rand.IntN(256)), A: 255}
	to := color.RGBA{R: uint8(rand.IntN(256)), G: uint8(rand.IntN(256)), B: uint8(rand.IntN(256)), A: 255}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			t := float64(x+y) / float64(2*size)
			img.Set(x, y, color.RGBA{
				R: lerp(from.R, to.R, t),
				G: lerp(from.G, to.G, t),
				B: lerp(from.B, to.B, t),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return images.EncodeDataURI("image/png", buf.Bytes()), nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
