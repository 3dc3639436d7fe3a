package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	mirrorsync "ballotcore/contexts/election-trust/mirror-sync"
	"ballotcore/contexts/election-trust/mirror-sync/application"
	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
)

func TestSyncElectionCreatesThenUpdates(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	require.NoError(t, module.Synchronizer.SyncElection(context.Background(), application.ElectionSync{
		ElectionID: "election-1",
		Title:      "General Election",
		IsActive:   true,
	}))
	created, ok := module.Store.Election("election-1")
	require.True(t, ok)
	require.True(t, created.IsActive)
	require.Equal(t, "General Election", created.Title)

	require.NoError(t, module.Synchronizer.SyncElection(context.Background(), application.ElectionSync{
		ElectionID: "election-1",
		Title:      "General Election",
		IsArchived: true,
		TotalVotes: 40,
	}))
	updated, ok := module.Store.Election("election-1")
	require.True(t, ok)
	require.Equal(t, created.MirrorKey, updated.MirrorKey)
	require.False(t, updated.IsActive)
	require.True(t, updated.IsArchived)
	require.Equal(t, 40, updated.TotalVotes)
}

func TestSyncVoteMatchesExistingCandidate(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)
	module.Store.SetElection(entities.RemoteElection{
		MirrorKey:          "m-election",
		OriginalElectionID: "election-1",
		IsActive:           true,
	})
	module.Store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:           "m-candidate",
		OriginalCandidateID: "candidate-1",
		ElectionKey:         "m-election",
		FirstName:           "Asha",
	})

	require.NoError(t, module.Synchronizer.SyncVote(context.Background(), application.VoteSync{
		VoteID:      "vote-1",
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
		FirstName:   "Asha",
	}))

	candidate, _ := module.Store.Candidate("m-candidate")
	require.Equal(t, 1, candidate.VoteCount)
	require.Equal(t, 1, module.Store.VoteCount())
}

func TestSyncVoteRejectsMirrorDuplicate(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)
	module.Store.SetElection(entities.RemoteElection{
		MirrorKey:          "m-election",
		OriginalElectionID: "election-1",
		IsActive:           true,
	})
	module.Store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:   "candidate-1",
		ElectionKey: "m-election",
		FirstName:   "Asha",
	})

	sync := application.VoteSync{
		VoteID:      "vote-1",
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	}
	require.NoError(t, module.Synchronizer.SyncVote(context.Background(), sync))

	sync.VoteID = "vote-1-redelivered"
	err := module.Synchronizer.SyncVote(context.Background(), sync)
	require.ErrorIs(t, err, domainerrors.ErrMirrorAlreadyVoted)

	candidate, _ := module.Store.Candidate("candidate-1")
	require.Equal(t, 1, candidate.VoteCount)
	require.Equal(t, 1, module.Store.VoteCount())
}

func TestSyncVoteSeedsUnknownCandidateOnce(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	require.NoError(t, module.Synchronizer.SyncVote(context.Background(), application.VoteSync{
		VoteID:      "vote-1",
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
		FirstName:   "Asha",
		LastName:    "Verma",
		PartyName:   "Unity",
	}))

	election, ok := module.Store.Election("election-1")
	require.True(t, ok, "vote before lifecycle event must create the election")

	session, err := module.Store.Acquire(context.Background())
	require.NoError(t, err)
	candidates, err := session.ListCandidatesForElection(context.Background(), election.MirrorKey)
	session.Release()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "candidate-1", candidates[0].OriginalCandidateID)
	require.Equal(t, 1, candidates[0].VoteCount, "seeded candidate counts its vote exactly once")
}

func TestSyncVoteNoneOptionSkipsCandidates(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)
	module.Store.SetElection(entities.RemoteElection{
		MirrorKey:          "m-election",
		OriginalElectionID: "election-1",
		IsActive:           true,
	})

	require.NoError(t, module.Synchronizer.SyncVote(context.Background(), application.VoteSync{
		VoteID:     "vote-none",
		VoterID:    "voter-1",
		ElectionID: "election-1",
		NoneOption: true,
	}))

	session, err := module.Store.Acquire(context.Background())
	require.NoError(t, err)
	candidates, err := session.ListCandidatesForElection(context.Background(), "m-election")
	session.Release()
	require.NoError(t, err)
	require.Empty(t, candidates)
	require.Equal(t, 1, module.Store.VoteCount())
}

func TestSyncVoteSurvivesIncrementExhaustionAndReconcileRepairs(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)
	module.Store.SetElection(entities.RemoteElection{
		MirrorKey:          "m-election",
		OriginalElectionID: "election-1",
		IsActive:           true,
	})
	module.Store.SetCandidate(entities.RemoteCandidate{
		MirrorKey:   "candidate-1",
		ElectionKey: "m-election",
		FirstName:   "Asha",
	})

	module.Store.FailSave(errors.New("save path broken"))
	module.Store.FailAtomic(errors.New("atomic path broken"))
	module.Store.FailRaw(errors.New("raw path broken"))

	require.NoError(t, module.Synchronizer.SyncVote(context.Background(), application.VoteSync{
		VoteID:      "vote-1",
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	}), "exhausted counter tiers must not fail vote propagation")

	candidate, _ := module.Store.Candidate("candidate-1")
	require.Equal(t, 0, candidate.VoteCount, "counter stays stale until reconcile")

	module.Store.FailSave(nil)
	module.Store.FailAtomic(nil)
	module.Store.FailRaw(nil)

	require.NoError(t, module.Synchronizer.Reconcile(context.Background(), "election-1"))

	candidate, _ = module.Store.Candidate("candidate-1")
	require.Equal(t, 1, candidate.VoteCount)
	election, _ := module.Store.Election("election-1")
	require.Equal(t, 1, election.TotalVotes)
}

func TestMirrorHasVoted(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	voted, err := module.Synchronizer.MirrorHasVoted(context.Background(), "voter-1", "election-unknown")
	require.NoError(t, err)
	require.False(t, voted)

	require.NoError(t, module.Synchronizer.SyncVote(context.Background(), application.VoteSync{
		VoteID:     "vote-1",
		VoterID:    "voter-1",
		ElectionID: "election-1",
		NoneOption: true,
	}))

	voted, err = module.Synchronizer.MirrorHasVoted(context.Background(), "voter-1", "election-1")
	require.NoError(t, err)
	require.True(t, voted)

	voted, err = module.Synchronizer.MirrorHasVoted(context.Background(), "voter-2", "election-1")
	require.NoError(t, err)
	require.False(t, voted)
}

func TestSyncVoteFailsWhenMirrorUnavailable(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)
	module.Store.FailAcquire(domainerrors.ErrMirrorUnavailable)

	err := module.Synchronizer.SyncVote(context.Background(), application.VoteSync{
		VoteID:     "vote-1",
		VoterID:    "voter-1",
		ElectionID: "election-1",
		NoneOption: true,
	})
	require.ErrorIs(t, err, domainerrors.ErrMirrorUnavailable)
}
