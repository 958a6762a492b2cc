// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// descriptorCache keeps descriptors resolved during enrichment so a download
// in the same process can skip the second detail-page fetch. A nil cache is
// valid and never hits.
type descriptorCache struct {
	c   *ristretto.Cache[string, types.DownloadDescriptor]
	ttl time.Duration
}

func newDescriptorCache(ttl time.Duration) (*descriptorCache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, types.DownloadDescriptor]{
		NumCounters: 10 * types.MaxSearchLimit * 10,
		MaxCost:     types.MaxSearchLimit * 10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &descriptorCache{c: c, ttl: ttl}, nil
}

func (d *descriptorCache) get(link string) (types.DownloadDescriptor, bool) {
	if d == nil {
		return types.DownloadDescriptor{}, false
	}
	return d.c.Get(link)
}

func (d *descriptorCache) put(link string, desc types.DownloadDescriptor) {
	if d == nil {
		return
	}
	d.c.SetWithTTL(link, desc, 1, d.ttl)
	d.c.Wait()
}

func (d *descriptorCache) close() {
	if d == nil {
		return
	}
	d.c.Close()
}
