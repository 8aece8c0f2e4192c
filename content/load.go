package content

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFS contains the default article set shipped with the site.
//
//go:embed seed/posts.yaml
var seedFS embed.FS

// Load decodes a YAML list of posts.
func Load(r io.Reader) ([]Post, error) {
	var posts []Post
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&posts); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("content: decode posts: %w", err)
	}
	return posts, nil
}

// LoadFile reads posts from a YAML file and builds a Catalog over them.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", path, err)
	}
	defer f.Close()
	posts, err := Load(f)
	if err != nil {
		return nil, err
	}
	return New(posts)
}

// Seed returns a Catalog over the embedded default articles.
func Seed() (*Catalog, error) {
	data, err := seedFS.ReadFile("seed/posts.yaml")
	if err != nil {
		return nil, fmt.Errorf("content: read seed: %w", err)
	}
	posts, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return New(posts)
}
