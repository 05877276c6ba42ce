package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDirectory(t *testing.T) {
	db := newTestDB(t)
	acme := newLedgerFixture(t, db, "Acme")
	globex := newLedgerFixture(t, db, "Globex")
	repo := NewGormDirectory(db)
	ctx := context.Background()

	t.Run("finds records of the tenant", func(t *testing.T) {
		s, err := repo.FindSupplier(ctx, acme.tenantID, acme.supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Supplies", s.Name)

		c, err := repo.FindCustomer(ctx, acme.tenantID, acme.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Customer", c.Name)

		p, err := repo.FindPart(ctx, acme.tenantID, acme.part.ID)
		require.NoError(t, err)
		assert.Equal(t, "SKU-Acme", p.SKU)
		assert.Equal(t, acme.supplier.ID, p.SupplierID)
		assert.Nil(t, p.ListPrice)
	})

	t.Run("records of another tenant are not found", func(t *testing.T) {
		_, err := repo.FindSupplier(ctx, acme.tenantID, globex.supplier.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		_, err = repo.FindCustomer(ctx, globex.tenantID, acme.customer.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		_, err = repo.FindPart(ctx, acme.tenantID, globex.part.ID)
		assert.Equal(t, "part not found", err.Error())
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.FindSupplier(ctx, acme.tenantID, uuid.New())
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("lists suppliers by name", func(t *testing.T) {
		acme.addSupplier(t, "Aardvark Tools")

		list, err := repo.ListSuppliers(ctx, acme.tenantID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Aardvark Tools", list[0].Name)
		assert.Equal(t, "Acme Supplies", list[1].Name)
	})
}
