package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	memoryadapter "ballotcore/contexts/election-trust/mirror-sync/adapters/memory"
	"ballotcore/contexts/election-trust/mirror-sync/application"
	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
)

func incrementFixture(t *testing.T) (*memoryadapter.Store, application.IncrementPolicy) {
	t.Helper()
	store := memoryadapter.NewStore(2)
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:   "m-candidate",
		ElectionKey: "m-election",
		FirstName:   "Asha",
	})
	return store, application.NewIncrementPolicy(nil)
}

func TestIncrementUsesFirstTier(t *testing.T) {
	store, policy := incrementFixture(t)
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	require.NoError(t, policy.Increment(context.Background(), session, "m-candidate", 1))

	candidate, ok := store.Candidate("m-candidate")
	require.True(t, ok)
	require.Equal(t, 1, candidate.VoteCount)
}

func TestIncrementFallsBackToAtomicTier(t *testing.T) {
	store, policy := incrementFixture(t)
	store.FailSave(errors.New("save path broken"))
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	require.NoError(t, policy.Increment(context.Background(), session, "m-candidate", 1))

	candidate, _ := store.Candidate("m-candidate")
	require.Equal(t, 1, candidate.VoteCount)
}

func TestIncrementFallsBackToRawTier(t *testing.T) {
	store, policy := incrementFixture(t)
	store.FailSave(errors.New("save path broken"))
	store.FailAtomic(errors.New("atomic path broken"))
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	require.NoError(t, policy.Increment(context.Background(), session, "m-candidate", 2))

	candidate, _ := store.Candidate("m-candidate")
	require.Equal(t, 2, candidate.VoteCount)
}

func TestIncrementExhaustsAllTiers(t *testing.T) {
	store, policy := incrementFixture(t)
	store.FailSave(errors.New("save path broken"))
	store.FailAtomic(errors.New("atomic path broken"))
	store.FailRaw(errors.New("raw path broken"))
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	err = policy.Increment(context.Background(), session, "m-candidate", 1)
	require.ErrorIs(t, err, domainerrors.ErrIncrementExhausted)

	candidate, _ := store.Candidate("m-candidate")
	require.Equal(t, 0, candidate.VoteCount)
}
