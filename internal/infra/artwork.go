package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// ArtworkCache downloads and caches asset artwork thumbnails. Artwork is
// display-only; the trading core never touches it.
type ArtworkCache struct {
	basePath string
	client   *http.Client
}

// NewArtworkCache creates a cache rooted at the user config dir.
func NewArtworkCache() (*ArtworkCache, error) {
	path, err := getArtworkPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artwork path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artwork directory: %w", err)
	}

	// Optimize HTTP Transport to prevent connection leaks
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &ArtworkCache{
		basePath: path,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Fetch downloads the artwork for an asset if not already cached.
// Returns the local file path on success.
// Images are resized to 64x64 pixels for consistent display.
func (a *ArtworkCache) Fetch(assetID int, metadataURI string) (string, error) {
	if metadataURI == "" {
		return "", fmt.Errorf("no metadata uri for asset %d", assetID)
	}

	fileName := fmt.Sprintf("%d.png", assetID)
	filePath := filepath.Join(a.basePath, fileName)

	// Check if exists
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Already exists (Cache Hit)
	}

	// Artwork lives next to the metadata document: <base>/<id>.png
	url := strings.TrimSuffix(metadataURI, ".json") + ".png"

	resp, err := a.client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	// Decode the image
	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Resize to 64x64 with high-quality Lanczos filter
	resizedImg := imaging.Resize(srcImg, 64, 64, imaging.Lanczos)

	// Save the resized image
	if err := imaging.Save(resizedImg, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return filePath, nil
}

// Path returns the local cache path for an asset's artwork.
func (a *ArtworkCache) Path(assetID int) string {
	return filepath.Join(a.basePath, fmt.Sprintf("%d.png", assetID))
}

func getArtworkPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "ShopGo", "assets", "artwork"), nil
}
