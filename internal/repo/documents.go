package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/hamed0406/statuspulse/internal/domain"
)

// Documents stores the snapshot and the dynamic site list as JSON values
// in a KV.
type Documents struct {
	kv          KV
	snapshotKey string
	sitesKey    string
	static      []domain.Site
}

// NewDocuments returns a Documents over kv. static is the site list used
// until one has been stored with SaveSites.
func NewDocuments(kv KV, snapshotKey, sitesKey string, static []domain.Site) *Documents {
	return &Documents{kv: kv, snapshotKey: snapshotKey, sitesKey: sitesKey, static: static}
}

// LoadSnapshot returns the stored snapshot, or an empty one if nothing
// has been written yet.
func (d *Documents) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	b, err := d.kv.Get(ctx, d.snapshotKey)
	if errors.Is(err, ErrNotFound) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", d.snapshotKey, err)
	}
	snap := domain.Snapshot{}
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.snapshotKey, err)
	}
	if snap == nil {
		snap = domain.Snapshot{}
	}
	return snap, nil
}

// RawSnapshot returns the stored snapshot document without decoding it,
// or "{}" if nothing has been written yet.
func (d *Documents) RawSnapshot(ctx context.Context) ([]byte, error) {
	b, err := d.kv.Get(ctx, d.snapshotKey)
	if errors.Is(err, ErrNotFound) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", d.snapshotKey, err)
	}
	return b, nil
}

func (d *Documents) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.snapshotKey, err)
	}
	if err := d.kv.Put(ctx, d.snapshotKey, b); err != nil {
		return fmt.Errorf("put %s: %w", d.snapshotKey, err)
	}
	return nil
}

// Sites returns the stored site list, falling back to the static list.
func (d *Documents) Sites(ctx context.Context) ([]domain.Site, error) {
	b, err := d.kv.Get(ctx, d.sitesKey)
	if errors.Is(err, ErrNotFound) {
		return append([]domain.Site(nil), d.static...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", d.sitesKey, err)
	}
	var sites []domain.Site
	if err := json.Unmarshal(b, &sites); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.sitesKey, err)
	}
	return sites, nil
}

// SaveSites replaces the stored site list.
func (d *Documents) SaveSites(ctx context.Context, sites []domain.Site) error {
	if sites == nil {
		sites = []domain.Site{}
	}
	b, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.sitesKey, err)
	}
	if err := d.kv.Put(ctx, d.sitesKey, b); err != nil {
		return fmt.Errorf("put %s: %w", d.sitesKey, err)
	}
	return nil
}
