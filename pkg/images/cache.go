package images

import (
	"image"
	"sync"
)

// Cache holds decoded images by resolved source.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

func (c *Cache) Get(src string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[src]
	return img, ok
}

func (c *Cache) Put(src string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[src] = img
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
