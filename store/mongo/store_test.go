package mongo

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationIndexesCoverCollections(t *testing.T) {
	idx := migrationIndexes()
	for _, col := range []string{colEvents, colBalances, colSchedules} {
		assert.NotEmpty(t, idx[col], col)
	}
	assert.Len(t, idx, 3)
}

func TestModelsUseDocumentID(t *testing.T) {
	for _, m := range []any{eventModel{}, balanceModel{}, scheduleModel{}} {
		f, ok := reflect.TypeOf(m).FieldByName("ID")
		require.True(t, ok)
		assert.Equal(t, "_id", f.Tag.Get("bson"))
	}
}
