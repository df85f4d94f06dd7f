package admin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/storage"
)

type memCatalog struct {
	products map[string]models.Product
	creates  int
	updates  int
}

func (m *memCatalog) ByID(id string) (models.Product, bool) {
	p, ok := m.products[id]
	return p, ok
}

func (m *memCatalog) Create(_ context.Context, d models.ProductDraft) (models.Product, error) {
	m.creates++
	p := d.WithID("new")
	m.products[p.ID] = p
	return p, nil
}

func (m *memCatalog) Update(_ context.Context, p models.Product) error {
	m.updates++
	m.products[p.ID] = p
	return nil
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, io.Reader) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, models.ErrNotFound
}

func newForm(t *testing.T) (*Products, *memCatalog) {
	t.Helper()
	files, err := storage.NewDiskStore(t.TempDir(), "http://cdn.local")
	require.NoError(t, err)
	cat := &memCatalog{products: map[string]models.Product{
		"p1": {ID: "p1", Name: "Tee", Price: 100, Category: models.CategoryKids, ImageURLs: []string{"http://cdn.local/old.png"}},
	}}
	return NewProducts(cat, files), cat
}

func draft() models.ProductDraft {
	return models.ProductDraft{Name: "Hoodie", Price: 700, Category: models.CategoryMen, Stock: 5}
}

func TestSaveCreatesWithUploadedImages(t *testing.T) {
	form, cat := newForm(t)

	p, err := form.Save(context.Background(), ProductForm{Draft: draft()}, []Upload{
		{Filename: "front.png", ContentType: "image/png", Body: strings.NewReader("front")},
		{Filename: "back.jpg", ContentType: "image/jpeg", Body: strings.NewReader("back")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cat.creates)
	require.Len(t, p.ImageURLs, 2)
	assert.True(t, strings.HasPrefix(p.ImageURLs[0], "http://cdn.local/products/"))
	assert.True(t, strings.HasSuffix(p.ImageURLs[1], ".jpg"))
	assert.Equal(t, models.DefaultSizes(), p.Sizes)
}

func TestSaveRequiresImage(t *testing.T) {
	form, cat := newForm(t)

	_, err := form.Save(context.Background(), ProductForm{Draft: draft()}, nil)
	require.ErrorIs(t, err, models.ErrInvalidInput)
	fields, _ := models.FieldErrors(err)
	assert.Contains(t, fields, "image")
	assert.Zero(t, cat.creates)
}

func TestSaveUpdateKeepsExistingImages(t *testing.T) {
	form, cat := newForm(t)
	d := draft()
	d.Name = "Tee v2"

	p, err := form.Save(context.Background(), ProductForm{ID: "p1", Draft: d}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.updates)
	assert.Equal(t, "Tee v2", p.Name)
	assert.Equal(t, []string{"http://cdn.local/old.png"}, p.ImageURLs)
}

func TestSaveUpdateUnknownProduct(t *testing.T) {
	form, _ := newForm(t)

	_, err := form.Save(context.Background(), ProductForm{ID: "nope", Draft: draft()}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSaveUploadFailure(t *testing.T) {
	cat := &memCatalog{products: map[string]models.Product{}}
	form := NewProducts(cat, failingStore{})

	_, err := form.Save(context.Background(), ProductForm{Draft: draft()}, []Upload{
		{Filename: "a.png", Body: strings.NewReader("a")},
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	fields, _ := models.FieldErrors(err)
	assert.Equal(t, "Failed to upload image", fields["image"])
	assert.Zero(t, cat.creates)
}
