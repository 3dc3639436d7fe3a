package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	memoryadapter "ballotcore/contexts/election-trust/mirror-sync/adapters/memory"
	"ballotcore/contexts/election-trust/mirror-sync/application"
	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
)

func TestMatcherPrefersDirectKey(t *testing.T) {
	store := memoryadapter.NewStore(2)
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:   "candidate-1",
		ElectionKey: "m-election",
		FirstName:   "Asha",
	})
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:           "m-other",
		OriginalCandidateID: "candidate-1",
		ElectionKey:         "m-election",
		FirstName:           "Decoy",
	})
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	matcher := application.NewCandidateMatcher()
	candidate, ok, err := matcher.Match(context.Background(), session, application.CandidateQuery{
		ElectionKey:         "m-election",
		OriginalCandidateID: "candidate-1",
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "candidate-1", candidate.MirrorKey)
}

func TestMatcherFallsBackToOriginalID(t *testing.T) {
	store := memoryadapter.NewStore(2)
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:           "m-42",
		OriginalCandidateID: "candidate-7",
		ElectionKey:         "m-election",
		FirstName:           "Asha",
	})
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	matcher := application.NewCandidateMatcher()
	candidate, ok, err := matcher.Match(context.Background(), session, application.CandidateQuery{
		ElectionKey:         "m-election",
		OriginalCandidateID: "candidate-7",
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "m-42", candidate.MirrorKey)
}

func TestMatcherFallsBackToOriginalIDPrefix(t *testing.T) {
	store := memoryadapter.NewStore(2)
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:           "m-42",
		OriginalCandidateID: "candidate-7~2",
		ElectionKey:         "m-election",
		FirstName:           "Asha",
	})
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	matcher := application.NewCandidateMatcher()
	candidate, ok, err := matcher.Match(context.Background(), session, application.CandidateQuery{
		ElectionKey:         "m-election",
		OriginalCandidateID: "candidate-7",
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "m-42", candidate.MirrorKey)
}

func TestMatcherFallsBackToStructuralName(t *testing.T) {
	store := memoryadapter.NewStore(2)
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:   "m-structural",
		ElectionKey: "m-election",
		FirstName:   "Asha",
		LastName:    "Verma",
		PartyName:   "Unity",
	})
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	matcher := application.NewCandidateMatcher()
	candidate, ok, err := matcher.Match(context.Background(), session, application.CandidateQuery{
		ElectionKey:         "m-election",
		OriginalCandidateID: "candidate-unknown",
		FirstName:           "asha",
		LastName:            "VERMA",
		PartyName:           "unity",
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "m-structural", candidate.MirrorKey)
}

func TestMatcherScopesToElection(t *testing.T) {
	store := memoryadapter.NewStore(2)
	store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:           "m-elsewhere",
		OriginalCandidateID: "candidate-7",
		ElectionKey:         "m-other-election",
		FirstName:           "Asha",
		LastName:            "Verma",
	})
	session, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer session.Release()

	matcher := application.NewCandidateMatcher()
	_, ok, err := matcher.Match(context.Background(), session, application.CandidateQuery{
		ElectionKey:         "m-election",
		OriginalCandidateID: "candidate-7",
		FirstName:           "Asha",
		LastName:            "Verma",
	})
	require.NoError(t, err)
	require.False(t, ok)
}
