package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	cases := map[string]string{
		"":          "DESC",
		"asc":       "ASC",
		" ASC ":     "ASC",
		"desc":      "DESC",
		"ascending": "DESC",
		"ASC;--":    "DESC",
	}
	for input, want := range cases {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField_ProductColumns(t *testing.T) {
	for _, field := range []string{"created_at", "price", "name", "stock"} {
		assert.Equal(t, field, ValidateSortField(field, ProductSortFields, "created_at"))
	}

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "price", ValidateSortField("  price ", ProductSortFields, "created_at"))
	})

	t.Run("columns off the list fall back", func(t *testing.T) {
		for _, field := range []string{"", "   ", "id", "category", "PRICE", "description"} {
			assert.Equal(t, "created_at", ValidateSortField(field, ProductSortFields, "created_at"), "field %q", field)
		}
	})

	t.Run("empty default is returned as is", func(t *testing.T) {
		assert.Empty(t, ValidateSortField("material", ProductSortFields, ""))
	})
}

func TestValidateSortField_RejectsInjection(t *testing.T) {
	payloads := []string{
		"price; DROP TABLE products;--",
		"price' OR '1'='1",
		"stock UNION SELECT * FROM orders",
		"name, (SELECT customer_phone FROM orders)",
		"CASE WHEN 1=1 THEN price ELSE stock END",
		"price/**/;DELETE FROM products",
		"stock\n; DROP TABLE order_items",
	}
	for _, payload := range payloads {
		assert.Equal(t, "created_at", ValidateSortField(payload, ProductSortFields, "created_at"), "payload %q", payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload), "payload %q", payload)
	}
}
