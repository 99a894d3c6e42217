package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autodf/internal/core/entity"
	"autodf/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Email  string `db:"email" json:"email"`
	Hidden string `db:"-" json:"hidden"`
	NoTag  string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "organization_id", "code", "name", "email",
	}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "hidden")
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			OrganizationID: "org-1",
			Code:           "CLI-001",
			Name:           "Test Name",
		},
		Email:  "test@example.com",
		Hidden: "skip me",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "org-1", m["organization_id"])
	assert.Equal(t, "CLI-001", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, "test@example.com", m["email"])

	_, ok := m["hidden"]
	assert.False(t, ok)
}

func TestStructToMap_Pointer(t *testing.T) {
	cat := &mockCatalog{Email: "ptr@example.com"}
	m := StructToMap(cat)
	assert.Equal(t, "ptr@example.com", m["email"])
}
