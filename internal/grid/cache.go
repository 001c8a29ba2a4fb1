package grid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Key identifies a remembered grid size.
type Key struct {
	Monitor string
	Profile string
}

// Size is a remembered matrix shape.
type Size struct {
	Rows    int
	Columns int
}

// DefaultSize is used for monitor/profile pairs that were never resized.
var DefaultSize = Size{Rows: DefaultRows, Columns: DefaultColumns}

type cacheEntry struct {
	Monitor string `yaml:"monitor"`
	Profile string `yaml:"profile"`
	Rows    int    `yaml:"rows"`
	Columns int    `yaml:"columns"`
}

type cacheFile struct {
	Grids []cacheEntry `yaml:"grids"`
}

// Cache remembers the grid size per monitor and profile across restarts.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[Key]Size
}

// LoadCache reads the cache at path. A missing file yields an empty cache;
// an empty path yields a cache that is never written to disk.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[Key]Size)}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read grid cache: %w", err)
	}

	var file cacheFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse grid cache %s: %w", path, err)
	}

	for _, e := range file.Grids {
		if e.Rows < 1 || e.Columns < 1 {
			continue
		}
		c.entries[Key{Monitor: e.Monitor, Profile: e.Profile}] = Size{Rows: e.Rows, Columns: e.Columns}
	}
	return c, nil
}

// Get returns the remembered size for key, or DefaultSize.
func (c *Cache) Get(key Key) Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size, ok := c.entries[key]; ok {
		return size
	}
	return DefaultSize
}

// Put remembers size for key and writes the cache to disk.
func (c *Cache) Put(key Key, size Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = size
	return c.saveLocked()
}

// Len returns the number of remembered entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) saveLocked() error {
	if c.path == "" {
		return nil
	}

	file := cacheFile{Grids: make([]cacheEntry, 0, len(c.entries))}
	for key, size := range c.entries {
		file.Grids = append(file.Grids, cacheEntry{
			Monitor: key.Monitor,
			Profile: key.Profile,
			Rows:    size.Rows,
			Columns: size.Columns,
		})
	}
	sort.Slice(file.Grids, func(i, j int) bool {
		if file.Grids[i].Monitor != file.Grids[j].Monitor {
			return file.Grids[i].Monitor < file.Grids[j].Monitor
		}
		return file.Grids[i].Profile < file.Grids[j].Profile
	})

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode grid cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create grid cache directory: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write grid cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace grid cache: %w", err)
	}
	return nil
}
