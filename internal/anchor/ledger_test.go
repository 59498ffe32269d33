package anchor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certo/pkg/domain-errors"
	"certo/pkg/platform/sentinel"
	"certo/pkg/requestcontext"
)

func TestLedgerIssueAndGet(t *testing.T) {
	ledger := NewLedger()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	receipt, err := ledger.IssueCredential(ctx, "ENG_TRACK-ABC-XYZ123", "AI Engineering", "eng_track", "0xowner")
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TxHash)
	assert.Equal(t, uint64(1), receipt.BlockNumber)
	assert.Equal(t, now, receipt.AnchoredAt)

	record, err := ledger.GetCredential(ctx, "ENG_TRACK-ABC-XYZ123")
	require.NoError(t, err)
	assert.Equal(t, "AI Engineering", record.Title)
	assert.False(t, record.Revoked)
}

func TestLedgerRejectsDuplicateAnchor(t *testing.T) {
	ledger := NewLedger()
	ctx := context.Background()

	_, err := ledger.IssueCredential(ctx, "C-1-AAAAAA", "T", "t1", "0xowner")
	require.NoError(t, err)

	_, err = ledger.IssueCredential(ctx, "C-1-AAAAAA", "T", "t1", "0xowner")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestLedgerGetMissing(t *testing.T) {
	ledger := NewLedger()

	_, err := ledger.GetCredential(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestLedgerRevoke(t *testing.T) {
	ledger := NewLedger()
	ctx := context.Background()

	_, err := ledger.IssueCredential(ctx, "C-1-AAAAAA", "T", "t1", "0xowner")
	require.NoError(t, err)

	_, err = ledger.RevokeCredential(ctx, "C-1-AAAAAA")
	require.NoError(t, err)

	record, err := ledger.GetCredential(ctx, "C-1-AAAAAA")
	require.NoError(t, err)
	assert.True(t, record.Revoked)

	_, err = ledger.RevokeCredential(ctx, "NOPE")
	require.Error(t, err)
}

func TestLedgerHonorsCancelledContext(t *testing.T) {
	ledger := NewLedger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ledger.IssueCredential(ctx, "C-1-AAAAAA", "T", "t1", "0xowner")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
