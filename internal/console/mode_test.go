package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_CreateLabels(t *testing.T) {
	m := CreateMode()

	assert.False(t, m.IsEdit())
	assert.Equal(t, "Create billboard", m.Title(ResourceBillboards))
	assert.Equal(t, "Add a new billboard", m.Description(ResourceBillboards))
	assert.Equal(t, "Create", m.ActionLabel())
	assert.Equal(t, "Billboard created.", m.SuccessToast(ResourceBillboards))

	_, okr := m.Record()
	assert.False(t, okr)
}

func TestMode_EditLabels(t *testing.T) {
	m := EditMode(Values{"name": "Vitamins"})

	assert.True(t, m.IsEdit())
	assert.Equal(t, "Edit category", m.Title(ResourceCategories))
	assert.Equal(t, "Edit a category", m.Description(ResourceCategories))
	assert.Equal(t, "Save changes", m.ActionLabel())
	assert.Equal(t, "Category updated.", m.SuccessToast(ResourceCategories))

	record, okr := m.Record()
	require.True(t, okr)
	assert.Equal(t, "Vitamins", record["name"])
}

func TestMode_InitialPrefersRecordInEdit(t *testing.T) {
	spec, oks := SpecFor("products")
	require.True(t, oks)
	featured, okf := spec.Field("is_featured")
	require.True(t, okf)
	name, okn := spec.Field("name")
	require.True(t, okn)

	edit := EditMode(Values{"name": "Mug", "is_featured": true})
	assert.Equal(t, "Mug", edit.Initial(name))
	assert.Equal(t, true, edit.Initial(featured))

	create := CreateMode()
	assert.Nil(t, create.Initial(name))
	assert.Equal(t, false, create.Initial(featured), "checkbox default applies in create mode")
}

func TestMode_InitialFallsBackToDefaultForMissingRecordKey(t *testing.T) {
	spec, oks := SpecFor("products")
	require.True(t, oks)
	archived, oka := spec.Field("is_archived")
	require.True(t, oka)

	edit := EditMode(Values{"name": "Mug"})
	assert.Equal(t, false, edit.Initial(archived))
}

func TestMode_EditWithNilRecord(t *testing.T) {
	m := EditMode(nil)
	record, okr := m.Record()
	require.True(t, okr)
	assert.NotNil(t, record)
	assert.Empty(t, record)
}
