package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommitter(store *testutil.MockStorage) *Committer {
	committer := NewCommitter(store)
	committer.Now = func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	}
	ids := 0
	committer.NewID = func() string {
		ids++
		return fmt.Sprintf("expense-%d", ids)
	}
	return committer
}

func TestCommit(t *testing.T) {
	store := &testutil.MockStorage{}
	committer := testCommitter(store)
	batch := testBatch()

	count, err := committer.Commit(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.Len(t, store.Inserted, 1, "all rows land in a single insert call")
	inserted := store.Inserted[0]
	require.Len(t, inserted, 3)

	first := inserted[0]
	assert.Equal(t, "expense-1", first.ID)
	assert.Equal(t, "STARBUCKS #123", first.Comment)
	assert.Equal(t, 4.50, first.Amount)
	require.NotNil(t, first.CategoryID)
	assert.Equal(t, "cat-coffee", *first.CategoryID)
	assert.Equal(t, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), first.CreatedAt)

	assert.Equal(t, "TRADER JOES", inserted[1].Comment)
	assert.Equal(t, "SHELL OIL", inserted[2].Comment)
}

func TestCommit_ExcludesDeselectedRows(t *testing.T) {
	store := &testutil.MockStorage{}
	committer := testCommitter(store)

	batch := testBatch()
	deselected, err := batch.UpdateCandidate(1, FieldSelected, "false")
	require.NoError(t, err)

	count, err := committer.Commit(context.Background(), deselected)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, store.Inserted, 1)
	inserted := store.Inserted[0]
	require.Len(t, inserted, 2)
	assert.Equal(t, "STARBUCKS #123", inserted[0].Comment)
	assert.Equal(t, "SHELL OIL", inserted[1].Comment)
}

func TestCommit_InvalidBatchNeverTouchesStore(t *testing.T) {
	store := &testutil.MockStorage{}
	committer := testCommitter(store)

	invalid := map[string]ReviewBatch{
		"empty selection": testBatch().SetAllSelected(false),
	}

	missingCat := testBatch()
	missingCat[1].CategoryID = nil
	invalid["missing category"] = missingCat

	flagged := testBatch()
	flagged[0].Flagged = true
	invalid["flagged row"] = flagged

	for name, batch := range invalid {
		t.Run(name, func(t *testing.T) {
			count, err := committer.Commit(context.Background(), batch)
			require.Error(t, err)
			assert.True(t, common.IsValidationError(err))
			assert.Zero(t, count)
			assert.Zero(t, store.InsertCalls, "validation failures must not reach the store")
		})
	}
}

func TestCommit_StoreFailureThenRetry(t *testing.T) {
	storeErr := errors.New("database is locked")
	store := &testutil.MockStorage{InsertErr: storeErr}
	committer := testCommitter(store)
	batch := testBatch()

	count, err := committer.Commit(context.Background(), batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPersistenceFailed)
	assert.ErrorIs(t, err, storeErr, "the store's own error stays inspectable")
	assert.Zero(t, count)
	assert.Equal(t, 1, store.InsertCalls)
	assert.Empty(t, store.Inserted, "nothing recorded on failure")

	// The batch value is unchanged, so the same commit retries cleanly
	// once the store recovers.
	assert.Equal(t, testBatch(), batch)
	store.InsertErr = nil

	count, err = committer.Commit(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, store.Inserted, 1)
	assert.Len(t, store.Inserted[0], 3)
}
