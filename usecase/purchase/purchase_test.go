package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/usecase/usecasetest"
)

func setup() (*UseCase, *usecasetest.Users, *usecasetest.Transactions) {
	users := usecasetest.NewUsers(domain.User{UserID: "u-1", Email: "ada@example.com"})
	history := &usecasetest.Transactions{}
	return New(users, history, nil), users, history
}

func TestRecordStoresOneTransactionPerPurchase(t *testing.T) {
	uc, _, history := setup()

	var ref domain.ProductRef
	require.NoError(t, json.Unmarshal([]byte(`["7","12"]`), &ref))

	before := time.Now().UTC()
	tx, err := uc.Record(context.Background(), "u-1", ref)
	require.NoError(t, err)

	require.Len(t, history.Items, 1)
	stored := history.Items[0]
	assert.Equal(t, "7,12", stored.Product())
	assert.Equal(t, "u-1", stored.UserID)
	assert.False(t, stored.Timestamp.Before(before.Truncate(time.Microsecond)))
	assert.Equal(t, tx.ID, stored.ID)
	assert.NotEmpty(t, tx.ID)
}

func TestRecordUsesServerTimestamp(t *testing.T) {
	uc, _, history := setup()
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.FixedZone("X", 3600))
	uc.now = func() time.Time { return fixed }

	_, err := uc.Record(context.Background(), "u-1", domain.ProductRef{3})
	require.NoError(t, err)
	assert.Equal(t, fixed.UTC(), history.Items[0].Timestamp)
	assert.Equal(t, time.UTC, history.Items[0].Timestamp.Location())
}

func TestRecordValidation(t *testing.T) {
	uc, _, history := setup()

	_, err := uc.Record(context.Background(), "", domain.ProductRef{1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	_, err = uc.Record(context.Background(), "u-1", nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Empty(t, history.Items)
}

func TestRecordUnknownUser(t *testing.T) {
	uc, _, history := setup()

	_, err := uc.Record(context.Background(), "ghost", domain.ProductRef{1})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, history.Items)
}

func TestRecordSurfacesWriteFailure(t *testing.T) {
	uc, _, history := setup()
	history.AppendErr = errors.New("write conflict")

	_, err := uc.Record(context.Background(), "u-1", domain.ProductRef{1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeStore))
}

func TestRecordSurfacesUserLookupFailure(t *testing.T) {
	uc, users, _ := setup()
	users.Err = errors.New("pool exhausted")

	_, err := uc.Record(context.Background(), "u-1", domain.ProductRef{1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeStore))
}
