package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/internal/validation"
)

func TestKindCommands_OfflineLifecycle(t *testing.T) {
	ctx := context.Background()
	session := newCatalogSession(t, unavailable(), "k")
	console, out := newConsole()
	c := New(Config{APIKey: "k"}, console, notLoggedIn(), nil, discardLogger())
	c.session = session

	err := execute(c, "product", "create",
		"--set", "name=Lamp", "--set", "price=19.90", "--set", "stock=3", "--set", "sizes=S,M")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created product "+models.LocalIDPrefix)
	assert.Contains(t, out.String(), "saved locally")

	products := session.Catalog.Products.List(ctx)
	require.Len(t, products, 1)
	lamp := products[0]
	assert.Equal(t, []string{"S", "M"}, lamp.Sizes)
	assert.Equal(t, 3, lamp.Stock)

	out.Reset()
	require.NoError(t, execute(c, "product", "list"))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Lamp")
	assert.Contains(t, out.String(), "19.90")
	assert.Contains(t, out.String(), "1 products")

	out.Reset()
	require.NoError(t, execute(c, "product", "update", lamp.ID, "--set", "price=21.5"))
	assert.Contains(t, out.String(), "Updated product "+lamp.ID)

	out.Reset()
	require.NoError(t, execute(c, "product", "get", lamp.ID))
	assert.Contains(t, out.String(), `"name": "Lamp"`)
	assert.Contains(t, out.String(), `"price": "21.5"`)

	out.Reset()
	require.NoError(t, execute(c, "product", "delete", lamp.ID))
	assert.Contains(t, out.String(), "Deleted product "+lamp.ID)

	err = execute(c, "product", "get", lamp.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out.Reset()
	require.NoError(t, execute(c, "products", "list"))
	assert.Contains(t, out.String(), "No products found.")
}

func TestKindCommands_Online(t *testing.T) {
	key := serviceKey(t)
	session := newCatalogSession(t, recordStore(t), key)
	console, out := newConsole()
	c := New(Config{APIKey: key}, console, notLoggedIn(), nil, discardLogger())
	c.session = session

	require.NoError(t, execute(c, "category", "create", "--set", "name=Outdoor Lighting"))
	assert.Contains(t, out.String(), "Created category ")
	assert.NotContains(t, out.String(), models.LocalIDPrefix)
	assert.NotContains(t, out.String(), "saved locally")

	require.NoError(t, execute(c, "attr", "create", "--set", "name=Fit", "--set", `values=["slim","regular"]`))

	out.Reset()
	require.NoError(t, execute(c, "category", "list"))
	assert.Contains(t, out.String(), "outdoor-lighting")

	out.Reset()
	require.NoError(t, execute(c, "attribute", "list"))
	assert.Contains(t, out.String(), "slim, regular")
	assert.Contains(t, out.String(), "select")
}

func TestKindCommands_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{
			name:    "get unknown id",
			args:    []string{"product", "get", "missing"},
			wantMsg: "product missing not found",
		},
		{
			name:    "update unknown local id",
			args:    []string{"category", "update", models.LocalIDPrefix + "missing", "--set", "name=X"},
			wantMsg: "not found",
		},
		{
			name:    "create without fields",
			args:    []string{"product", "create"},
			wantMsg: "nothing to set",
		},
		{
			name:    "unknown field",
			args:    []string{"product", "create", "--set", "colour=red"},
			wantMsg: `unknown field "colour"`,
		},
		{
			name:    "id is not editable",
			args:    []string{"product", "create", "--set", "id=abc"},
			wantMsg: `unknown field "id"`,
		},
		{
			name:    "malformed pair",
			args:    []string{"product", "create", "--set", "name"},
			wantMsg: "expected field=value",
		},
		{
			name:    "get needs an id",
			args:    []string{"product", "get"},
			wantMsg: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console, _ := newConsole()
			c := New(Config{APIKey: "k"}, console, notLoggedIn(), nil, discardLogger())
			c.session = newCatalogSession(t, unavailable(), "k")

			err := execute(c, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestKindCommands_ValidationError(t *testing.T) {
	console, out := newConsole()
	c := New(Config{APIKey: "k"}, console, notLoggedIn(), nil, discardLogger())
	c.session = newCatalogSession(t, unavailable(), "k")

	err := execute(c, "product", "create", "--set", "name=Lamp", "--set", "stock=-1")
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	assert.Empty(t, out.String())
	assert.Empty(t, c.session.Catalog.Products.List(context.Background()))
}

func TestParseSets(t *testing.T) {
	patch, err := parseSets[models.Product]([]string{
		"name=1984",
		"stock=7",
		"price=9.99",
		"colors=red, blue",
		`sizes=["XL"]`,
		"description=a=b",
	})
	require.NoError(t, err)

	assert.Equal(t, "1984", patch["name"])
	assert.EqualValues(t, 7, patch["stock"])
	assert.EqualValues(t, 9.99, patch["price"])
	assert.Equal(t, []string{"red", " blue"}, patch["colors"])
	assert.Equal(t, []any{"XL"}, patch["sizes"])
	assert.Equal(t, "a=b", patch["description"])

	rec, err := models.ApplyPatch(models.Product{}, patch)
	require.NoError(t, err)
	rec = rec.Normalize()
	assert.Equal(t, "1984", rec.Name)
	assert.Equal(t, []string{"red", "blue"}, rec.Colors)
}

func TestEditableFields(t *testing.T) {
	fields := editableFields[models.Attribute]()
	assert.Equal(t, []string{"name", "type", "values"}, sortedKeys(fields))
}
