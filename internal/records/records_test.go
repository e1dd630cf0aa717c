package records_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub/internal/objects"
	"github.com/recordhub/recordhub/internal/records"
	"github.com/recordhub/recordhub/internal/store/memstore"
)

func TestMapperCopiesFields(t *testing.T) {
	stored := &records.StoredRecord{
		ID:     uuid.New(),
		Fields: map[string]any{"name": "original"},
	}

	editable := records.Mapper.ToEditable(stored)
	editable.Fields["name"] = "changed"

	assert.Equal(t, "original", stored.Fields["name"])
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := records.NewRepository(memstore.New(records.CloneStored))

	tenantID := uuid.New()
	userID := uuid.New()

	value, err := repo.New(context.Background(), tenantID, "primary", objects.Claims{})
	require.NoError(t, err)

	value.Fields["name"] = "invoice 42"
	value.Fields["state"] = 10

	require.NoError(t, repo.Save(context.Background(), tenantID, userID, "primary", objects.Claims{}, value))

	fetched, found, err := repo.ByID(context.Background(), tenantID, "primary", objects.Claims{}, value.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "invoice 42", fetched.Fields["name"])
}
