package colorsample

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Source is an image reference the sampler can decode. Key identifies the
// reference for caching and for discarding stale results.
type Source interface {
	Key() string
	Load(ctx context.Context) (image.Image, error)
}

type fileSource struct{ path string }

// File references an image on disk.
func File(path string) Source { return fileSource{path: path} }

func (s fileSource) Key() string { return "file:" + s.path }

func (s fileSource) Load(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Open(s.path, imaging.AutoOrientation(true))
}

type urlSource struct {
	url    string
	client *http.Client
}

// URL references an image fetched over HTTP(S). A nil client means
// http.DefaultClient.
func URL(rawURL string, client *http.Client) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return urlSource{url: rawURL, client: client}
}

func (s urlSource) Key() string { return "url:" + s.url }

func (s urlSource) Load(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.url, resp.Status)
	}
	return imaging.Decode(resp.Body, imaging.AutoOrientation(true))
}

type bytesSource struct {
	key  string
	data []byte
}

// Bytes references an encoded image held in memory, such as an uploaded
// file.
func Bytes(key string, data []byte) Source { return bytesSource{key: key, data: data} }

func (s bytesSource) Key() string { return "bytes:" + s.key }

func (s bytesSource) Load(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(s.data), imaging.AutoOrientation(true))
}

type imageSource struct {
	key string
	img image.Image
}

// Image wraps an already decoded image.
func Image(key string, img image.Image) Source { return imageSource{key: key, img: img} }

func (s imageSource) Key() string { return "image:" + s.key }

func (s imageSource) Load(context.Context) (image.Image, error) {
	if s.img == nil {
		return nil, fmt.Errorf("image %q is nil", s.key)
	}
	return s.img, nil
}

// Ref maps an image reference to a source: http(s) URLs are fetched with
// http.DefaultClient, anything else is a file path.
func Ref(ref string) Source {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return URL(ref, nil)
	}
	return File(ref)
}

// IsImageFile reports whether the file name carries an image extension.
func IsImageFile(name string) bool {
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(filepath.Ext(name))), "image/")
}
