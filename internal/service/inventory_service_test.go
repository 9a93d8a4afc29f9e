package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryObjects struct {
	objects map[string][]byte
}

func (m *memoryObjects) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func newInventory(products *fakeProducts) *InventoryService {
	svc := NewInventoryService(products, &memoryObjects{objects: map[string][]byte{}}, NewNotifier(nil, nil))
	svc.now = fixedClock(testNow)
	return svc
}

func TestInventoryService_CreateAndUpdate(t *testing.T) {
	products := newFakeProducts()
	svc := newInventory(products)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, domain.CreateProductInput{
		Name:          "  Anillo oro 14k ",
		PurchasePrice: dec("219"),
		SalePrice:     dec("325"),
		Stock:         0,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Anillo oro 14k", p.Name)
	assert.False(t, p.Available, "no stock means not available")
	assert.Equal(t, domain.StartOfDay(testNow), p.PurchaseDate)

	stock := 4
	p, err = svc.UpdateProduct(ctx, p.ID, domain.UpdateProductInput{Stock: &stock})
	require.NoError(t, err)
	assert.True(t, p.Available)

	off := false
	p, err = svc.UpdateProduct(ctx, p.ID, domain.UpdateProductInput{Available: &off})
	require.NoError(t, err)
	assert.False(t, p.Available)

	negative := dec("-1")
	_, err = svc.UpdateProduct(ctx, p.ID, domain.UpdateProductInput{SalePrice: &negative})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateProduct(ctx, "missing", domain.UpdateProductInput{Stock: &stock})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryService_CreateValidation(t *testing.T) {
	svc := newInventory(newFakeProducts())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, domain.CreateProductInput{Name: "", SalePrice: dec("1")}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateProduct(ctx, domain.CreateProductInput{Name: "x", PurchasePrice: dec("-1")}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateProduct(ctx, domain.CreateProductInput{Name: "x", Stock: -2}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInventoryService_UploadImage(t *testing.T) {
	products := newFakeProducts(&domain.Product{ID: "p1", Name: "Pulsera"})
	objects := &memoryObjects{objects: map[string][]byte{}}
	svc := NewInventoryService(products, objects, nil)
	ctx := context.Background()

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	img.Set(10, 10, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	p, err := svc.UploadImage(ctx, "p1", buf.Bytes())
	require.NoError(t, err)
	require.NotNil(t, p.ImageURL)
	assert.True(t, strings.HasPrefix(*p.ImageURL, "https://cdn.example.com/products/p1/"))
	assert.Len(t, objects.objects, 1)

	_, err = svc.UploadImage(ctx, "p1", []byte("not an image"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewInventoryService(products, nil, nil).UploadImage(ctx, "p1", buf.Bytes())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInventoryService_ImportCatalogXLSX(t *testing.T) {
	products := newFakeProducts(&domain.Product{ID: "existing", Name: "Collar plata", SalePrice: dec("100"), Stock: 1})
	svc := newInventory(products)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Nombre", "Categoria", "Precio Compra", "Precio Venta", "Stock"},
		{"Anillo oro", "Anillos", 219, 325, 3},
		{"Collar plata", "Collares", 90, 180, 6},
		{"", "Aretes", 10, 20, 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	report, err := svc.ImportCatalog(context.Background(), "catalogo.xlsx", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 4, report.Errors[0].Line)

	updated, err := products.GetByID(context.Background(), "existing")
	require.NoError(t, err)
	assert.True(t, updated.SalePrice.Equal(dec("180")))
	assert.Equal(t, 6, updated.Stock)
}
