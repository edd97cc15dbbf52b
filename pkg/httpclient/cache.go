package httpclient

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// responseCache keeps successful GET responses keyed by URL, credentials
// and language.
type responseCache struct {
	entries *lru.Cache[string, *Response]
}

func newResponseCache(size int) (*responseCache, error) {
	entries, err := lru.New[string, *Response](size)
	if err != nil {
		return nil, err
	}
	return &responseCache{entries: entries}, nil
}

// cacheKey covers every default header the backend varies its body on
func cacheKey(url, authorization, language string) string {
	return authorization + "\x00" + language + "\x00" + url
}

func (c *responseCache) get(key string) (*Response, bool) {
	resp, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return resp.clone(), true
}

func (c *responseCache) put(key string, resp *Response) {
	c.entries.Add(key, resp.clone())
}

func (c *responseCache) purge() {
	c.entries.Purge()
}

func (c *responseCache) len() int {
	return c.entries.Len()
}
