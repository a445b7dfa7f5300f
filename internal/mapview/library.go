package mapview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"storelocator/platform/config"
	"storelocator/platform/deps"
	"storelocator/platform/logger"
)

// Library describes the map library assets and tile source.
type Library struct {
	ScriptURL   string `json:"scriptUrl"`
	StyleURL    string `json:"styleUrl"`
	TileURL     string `json:"tileUrl"`
	Attribution string `json:"attribution"`
}

// LibraryName identifies the map library dependency in logs and errors.
const LibraryName = "map-library"

// NewLibraryHandle returns a process-wide handle for the map library. When
// checking is enabled both assets must answer with a 2xx status before the
// library counts as loaded.
func NewLibraryHandle(cfg config.MapConfig, client *http.Client, log *logger.Logger) *deps.Handle[Library] {
	lib := Library{
		ScriptURL:   cfg.GetMapLibraryJS(),
		StyleURL:    cfg.GetMapLibraryCSS(),
		TileURL:     cfg.GetMapTileURL(),
		Attribution: cfg.GetMapTileAttribution(),
	}
	if !cfg.GetMapLibraryCheck() {
		return deps.Resolved(LibraryName, lib)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return deps.New(LibraryName, func(ctx context.Context) (Library, error) {
		for _, asset := range []string{lib.ScriptURL, lib.StyleURL} {
			if err := checkAsset(ctx, client, asset); err != nil {
				return Library{}, err
			}
		}
		return lib, nil
	}, log)
}

func checkAsset(ctx context.Context, client *http.Client, assetURL string) error {
	if assetURL == "" {
		return fmt.Errorf("asset url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("build asset request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", assetURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch %s: HTTP %d", assetURL, resp.StatusCode)
	}
	return nil
}
