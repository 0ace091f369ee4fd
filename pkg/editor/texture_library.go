package editor

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // Register PNG decoder
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/pkg/config"
	"github.com/decker502/omagari/pkg/embedded"
)

// TextureLibrary holds the built-in particle textures in table order. The
// index of an image is the texture_index effects refer to.
//
// Masks holds, per texture, a white image whose alpha is the texture's red
// channel. It backs the modulate_opacity_from_r sample mapping.
type TextureLibrary struct {
	Images []*ebiten.Image
	Masks  []*ebiten.Image
	Labels []string
}

// LoadTextures decodes every entry of config.ParticleTextures from dir on
// disk. A missing or corrupt file fails the whole load.
func LoadTextures(dir string) (*TextureLibrary, error) {
	return loadTextures(func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, name))
	}, dir)
}

// LoadEmbeddedTextures decodes the built-in textures from the embedded
// assets, dir being a path such as "assets/particles".
func LoadEmbeddedTextures(dir string) (*TextureLibrary, error) {
	return loadTextures(func(name string) (io.ReadCloser, error) {
		return embedded.Open(path.Join(dir, name))
	}, dir)
}

func loadTextures(open func(name string) (io.ReadCloser, error), dir string) (*TextureLibrary, error) {
	lib := &TextureLibrary{
		Images: make([]*ebiten.Image, 0, len(config.ParticleTextures)),
		Masks:  make([]*ebiten.Image, 0, len(config.ParticleTextures)),
		Labels: make([]string, 0, len(config.ParticleTextures)),
	}
	for _, tex := range config.ParticleTextures {
		img, err := decodeImage(open, tex.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load texture %s from %s: %w", tex.Label, dir, err)
		}
		lib.Images = append(lib.Images, ebiten.NewImageFromImage(img))
		lib.Masks = append(lib.Masks, ebiten.NewImageFromImage(RedAsAlpha(img)))
		lib.Labels = append(lib.Labels, tex.Label)
	}
	return lib, nil
}

func decodeImage(open func(name string) (io.ReadCloser, error), name string) (image.Image, error) {
	file, err := open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	return img, nil
}

// RedAsAlpha returns a white image whose alpha channel is the red channel of
// img.
func RedAsAlpha(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			out.SetNRGBA(x, y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: uint8(r >> 8)})
		}
	}
	return out
}

// Len returns the number of textures.
func (l *TextureLibrary) Len() int {
	return len(l.Images)
}

// Label returns the display name of texture i, or "" when out of range.
func (l *TextureLibrary) Label(i int) string {
	if i < 0 || i >= len(l.Labels) {
		return ""
	}
	return l.Labels[i]
}
