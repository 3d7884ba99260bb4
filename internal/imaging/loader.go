package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrImageTooLarge is returned when a decoded image exceeds the cache's pixel limit.
var ErrImageTooLarge = errors.New("imaging: image exceeds pixel limit")

// ImageCache provides thread-safe caching of decoded images to avoid
// redundant disk reads.
//
// The cache stores decoded image.Image values keyed by their file path. Once
// an image is loaded, subsequent Load calls for the same path return the
// cached copy without disk I/O. Images are decoded with EXIF orientation
// applied, so JPEGs from cameras are analysed the way they are displayed.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict or Clear.
// A pixel limit set with NewImageCache rejects oversized images before they
// are cached, since every morphology tool allocates several float64 grids of
// the same size.
//
// # Example Usage
//
//	cache := imaging.NewImageCache(0)
//	img, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g := imaging.GrayGrid(img)
type ImageCache struct {
	mu        sync.RWMutex
	images    map[string]image.Image
	maxPixels int
}

// NewImageCache creates an empty image cache. A positive maxPixels rejects
// images with more pixels than that; zero disables the check.
func NewImageCache(maxPixels int) *ImageCache {
	return &ImageCache{
		images:    make(map[string]image.Image),
		maxPixels: maxPixels,
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     those of github.com/disintegration/imaging: PNG, JPEG, GIF, TIFF and BMP.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded, or if it is
//     larger than the cache's pixel limit (ErrImageTooLarge).
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	if b := img.Bounds(); c.maxPixels > 0 && b.Dx()*b.Dy() > c.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d > %d pixels", ErrImageTooLarge, b.Dx(), b.Dy(), c.maxPixels)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Unknown paths
// are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format implied by the file extension, or "unknown".
	Format string `json:"format"`

	// Bands is the number of grid bands the image maps to: 1 for gray
	// images, 3 for color images.
	Bands int `json:"bands"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// The format is derived from the file extension through imaging.FormatFromFilename.
// Color depth and band count come from the decoded Go image type:
//   - *image.Gray, *image.Gray16 -> 1 band
//   - everything else -> 3 bands
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	info := &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Format:        format,
		Bands:         3,
		ColorDepth:    "8-bit",
		FileSizeBytes: stat.Size(),
	}
	switch img.(type) {
	case *image.Gray:
		info.Bands = 1
	case *image.Gray16:
		info.Bands = 1
		info.ColorDepth = "16-bit"
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	}
	return info, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image, loading it into the cache
// if it is not already present.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
