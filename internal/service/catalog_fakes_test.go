package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/catalogomaker/backend/internal/model"
)

type memCatalogs struct {
	mu       sync.Mutex
	catalogs map[string]model.Catalog
}

func newMemCatalogs(cs ...model.Catalog) *memCatalogs {
	m := &memCatalogs{catalogs: map[string]model.Catalog{}}
	for _, c := range cs {
		m.catalogs[c.ID] = c
	}
	return m
}

func (m *memCatalogs) Create(_ context.Context, c *model.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.catalogs[c.ID] = *c
	return nil
}

func (m *memCatalogs) GetByID(_ context.Context, id string) (*model.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.catalogs[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCatalogs) ListByOwner(_ context.Context, ownerID string) ([]model.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Catalog{}
	for _, c := range m.catalogs {
		if c.OwnerAccountID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCatalogs) Update(_ context.Context, id string, p model.CatalogPatch) (*model.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.catalogs[id]
	if !ok {
		return nil, nil
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.BannerURL != nil {
		c.BannerURL = *p.BannerURL
	}
	if p.StoreDescription != nil {
		c.StoreDescription = *p.StoreDescription
	}
	if p.WhatsAppPhone != nil {
		c.WhatsAppPhone = *p.WhatsAppPhone
	}
	m.catalogs[id] = c
	return &c, nil
}

type memProducts struct {
	mu       sync.Mutex
	products []model.Product
}

func (m *memProducts) Create(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, *p)
	return nil
}

func (m *memProducts) ListByCatalogs(_ context.Context, ids []string) (map[string][]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string][]model.Product{}
	for _, p := range m.products {
		if want[p.CatalogID] {
			out[p.CatalogID] = append(out[p.CatalogID], p)
		}
	}
	return out, nil
}

func (m *memProducts) GetByIDs(_ context.Context, catalogID string, ids []string) (map[string]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string]model.Product{}
	for _, p := range m.products {
		if p.CatalogID == catalogID && want[p.ID] {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (m *memProducts) Delete(_ context.Context, catalogID, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.CatalogID == catalogID && p.ID == productID {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memOrders struct {
	mu     sync.Mutex
	orders []model.Order
}

func (m *memOrders) Create(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.CreatedAt = time.Now()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrders) ListByOwner(_ context.Context, ownerID string) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.orders {
		if o.CatalogOwnerAccountID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeBanners struct{}

func (fakeBanners) PresignBannerUpload(_ context.Context, catalogID, contentType string) (string, string, error) {
	if contentType != "image/png" {
		return "", "", validationErrorf("unsupported")
	}
	return "https://s3.example.com/put/" + catalogID, "https://cdn.example.com/" + catalogID + ".png", nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	phone  string
	text   string
	calls  int
	ctxErr error
	err    error
	// release, when set, blocks SendText until closed.
	release chan struct{}
}

func (r *recordingNotifier) SendText(ctx context.Context, phone, text string) error {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phone, r.text, r.ctxErr = phone, text, ctx.Err()
	r.calls++
	return r.err
}

func (r *recordingNotifier) sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
