package asseturl

import (
	"net/url"
	"strconv"
	"strings"
)

// Thumbnail rendering parameters. The image edge resizes on these query
// parameters; changing them changes every thumbnail URL the API hands out.
const (
	ThumbWidth   = 200
	ThumbHeight  = 200
	ThumbFit     = "fill"
	ThumbQuality = 80
)

// Resolver turns opaque asset keys into retrieval URLs. It is a pure string
// expansion over the configured public base URL; no network calls, no state.
type Resolver struct {
	base string
}

func NewResolver(publicBaseURL string) *Resolver {
	return &Resolver{base: strings.TrimRight(publicBaseURL, "/")}
}

// URL returns the retrieval URL for the original asset, with no transform
// parameters applied.
func (r *Resolver) URL(key string) string {
	if key == "" {
		return ""
	}
	return r.base + "/" + strings.TrimLeft(key, "/")
}

// ThumbnailURL returns a URL requesting a 200x200 fill-crop render at
// quality 80.
func (r *Resolver) ThumbnailURL(key string) string {
	if key == "" {
		return ""
	}
	q := url.Values{}
	q.Set("w", strconv.Itoa(ThumbWidth))
	q.Set("h", strconv.Itoa(ThumbHeight))
	q.Set("fit", ThumbFit)
	q.Set("q", strconv.Itoa(ThumbQuality))
	return r.URL(key) + "?" + q.Encode()
}
