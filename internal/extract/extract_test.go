package extract

import (
	"testing"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DictatedProduct(t *testing.T) {
	res, err := Extract("anillo de oro 14k, se compró en 219, se vende en 325, tenemos 3 piezas, proveedor Plateria Luna")
	require.NoError(t, err)

	assert.Equal(t, "anillo de oro 14k", res.Name)
	assert.Equal(t, "Anillos", res.Category)
	require.NotNil(t, res.PurchasePrice)
	assert.Equal(t, "219", res.PurchasePrice.String())
	require.NotNil(t, res.SalePrice)
	assert.Equal(t, "325", res.SalePrice.String())
	require.NotNil(t, res.SuggestedPrice)
	assert.True(t, res.SuggestedPrice.Equal(*res.SalePrice))
	require.NotNil(t, res.Stock)
	assert.Equal(t, 3, *res.Stock)
	require.NotNil(t, res.Supplier)
	assert.Equal(t, "Plateria Luna", *res.Supplier)
	assert.Contains(t, res.Description, "Hermoso anillo de oro y 14 quilates")
}

func TestExtract_ExplicitFields(t *testing.T) {
	res, err := Extract("producto: Collar Luna\ncategoría: Collares finos\nprecio compra: $1,250.50\nprecio venta 1800\nstock: 2")
	require.NoError(t, err)

	assert.Equal(t, "Collar Luna", res.Name)
	assert.Equal(t, "Collares finos", res.Category)
	require.NotNil(t, res.PurchasePrice)
	assert.Equal(t, "1250.5", res.PurchasePrice.String())
	require.NotNil(t, res.SalePrice)
	assert.Equal(t, "1800", res.SalePrice.String())
	require.NotNil(t, res.Stock)
	assert.Equal(t, 2, *res.Stock)
	assert.Nil(t, res.Supplier)
}

func TestExtract_Defaults(t *testing.T) {
	res, err := Extract("algo bonito")
	require.NoError(t, err)

	assert.Equal(t, "algo bonito", res.Name)
	assert.Equal(t, "Joyeria", res.Category)
	assert.Nil(t, res.PurchasePrice)
	assert.Nil(t, res.SalePrice)
	assert.Nil(t, res.SuggestedPrice)
	assert.Nil(t, res.Stock)
	assert.Contains(t, res.Description, "Pieza de joyería")
}

func TestExtract_SuggestedFallsBackToPurchase(t *testing.T) {
	res, err := Extract("pulsera de plata, costó 150")
	require.NoError(t, err)
	require.NotNil(t, res.SuggestedPrice)
	assert.Equal(t, "150", res.SuggestedPrice.String())
	assert.Equal(t, "Pulseras", res.Category)
}

func TestExtract_EmptyText(t *testing.T) {
	_, err := Extract("   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExtract_StockPatternsInOrder(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"dije corazón, cantidad de 4", 4},
		{"dije corazón, hay 7 disponibles", 7},
		{"dije corazón, 9 en stock", 9},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := Extract(tt.text)
			require.NoError(t, err)
			require.NotNil(t, res.Stock)
			assert.Equal(t, tt.want, *res.Stock)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"219":      "219",
		"219,5":    "219.5",
		"219,50":   "219.5",
		"1,250":    "1250",
		"1,250.75": "1250.75",
		"12.5":     "12.5",
	}
	for raw, want := range tests {
		got := parseAmount(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, want, got.String(), raw)
	}
}

func TestInferCategory(t *testing.T) {
	tests := map[string]string{
		"Anillo compromiso":   "Anillos",
		"Gold necklace":       "Collares",
		"Aretes de perla":     "Aretes",
		"Brazalete tejido":    "Pulseras",
		"Cadena cartier":      "Cadenas",
		"Reloj de pulso":      "Relojes",
		"Dije trébol":         "Dijes",
		"Piercing de titanio": "Piercings",
		"Broche antiguo":      "Joyeria",
	}
	for name, want := range tests {
		assert.Equal(t, want, InferCategory(name), name)
	}
}

func TestDescribe_Materials(t *testing.T) {
	d := Describe("collar de plata 925 con diamante", "Collares")
	assert.Contains(t, d, "Elegante collar de plata y 925 de ley y con diamantes")

	d = Describe("broche de oro", "Otros")
	assert.Contains(t, d, "Pieza de joyería en oro,")
}
