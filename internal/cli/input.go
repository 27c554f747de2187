package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"

	"github.com/matzehuels/cartoforce/pkg/cache"
	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/httputil"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

// readInput returns the bytes of a local file or an http(s) URL.
// Downloads go through the download cache.
func (c *CLI) readInput(ctx context.Context, input string) ([]byte, error) {
	if httputil.IsURL(input) {
		return c.fetch(ctx, input)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", input)
	}
	return data, nil
}

func (c *CLI) fetch(ctx context.Context, url string) ([]byte, error) {
	store := c.downloadCache()
	defer store.Close()

	key := cache.URLKey(url)
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		c.Logger.Debug("download cache hit", "url", url)
		return data, nil
	}
	prog := newProgress(c.Logger)
	data, err := httputil.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Downloaded %s (%d bytes)", url, len(data)))
	if err := store.Set(ctx, key, data, downloadTTL); err != nil {
		c.Logger.Debug("download cache write failed", "url", url, "err", err)
	}
	return data, nil
}

// inputName is the local name outputs are derived from. For URLs it is
// the last path element.
func inputName(input string) string {
	if !httputil.IsURL(input) {
		return input
	}
	u, err := url.Parse(input)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return appName
	}
	return path.Base(u.Path)
}

func (c *CLI) readFeatures(ctx context.Context, input string, cfg scene.Cartogram) ([]dataset.Feature, error) {
	data, err := c.readInput(ctx, input)
	if err != nil {
		return nil, err
	}
	features, err := dataset.ReadFeatures(bytes.NewReader(data), dataset.FeatureOptions{
		NameProperty:   cfg.NameProperty,
		MetricProperty: cfg.MetricProperty,
	})
	return features, err
}

func (c *CLI) readRecords(ctx context.Context, input string, cols scene.Columns) ([]dataset.Record, error) {
	data, err := c.readInput(ctx, input)
	if err != nil {
		return nil, err
	}
	records, rowErrs, err := dataset.ReadRecords(bytes.NewReader(data), cols)
	if err != nil {
		return nil, err
	}
	for _, re := range rowErrs {
		printWarning("%s", re.Error())
	}
	return records, nil
}
