package voteledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	voteledger "ballotcore/contexts/election-trust/vote-ledger"
	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
	httptransport "ballotcore/contexts/election-trust/vote-ledger/transport/http"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type scriptedDispatcher struct {
	outcome     ports.ChainOutcome
	err         error
	complete    ports.ChainOutcome
	completeErr error
	statusDone  bool
	statusErr   error
	dispatched  []chainv1.Operation
}

func (d *scriptedDispatcher) Dispatch(
	_ context.Context,
	op chainv1.Operation,
	_ string,
	_ map[string]string,
) (ports.ChainOutcome, error) {
	d.dispatched = append(d.dispatched, op)
	return d.outcome, d.err
}

func (d *scriptedDispatcher) DispatchSecondary(
	_ context.Context,
	op chainv1.Operation,
	_ string,
	_ map[string]string,
) ports.ChainOutcome {
	d.dispatched = append(d.dispatched, op)
	if d.err != nil {
		return ports.ChainOutcome{Warning: d.err.Error()}
	}
	return d.outcome
}

func (d *scriptedDispatcher) Complete(
	_ context.Context,
	op chainv1.Operation,
	_ string,
	_ string,
) (ports.ChainOutcome, error) {
	d.dispatched = append(d.dispatched, op)
	return d.complete, d.completeErr
}

func (d *scriptedDispatcher) Status(_ context.Context, _ chainv1.Operation, _ string) (bool, error) {
	return d.statusDone, d.statusErr
}

type staticMirror struct {
	hasVoted bool
	err      error
}

func (m staticMirror) MirrorHasVoted(_ context.Context, _ string, _ string) (bool, error) {
	return m.hasVoted, m.err
}

type recordingPublisher struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func seedLedger(module voteledger.Module) {
	now := time.Now().UTC()
	module.Store.SetElectionSnapshot(entities.ElectionSnapshot{
		ElectionID: "election-1",
		Title:      "General Election",
		Category:   "general",
		IsActive:   true,
		EndDate:    now.Add(24 * time.Hour),
	})
	module.Store.SetCandidateSnapshot(entities.CandidateSnapshot{
		CandidateID: "candidate-1",
		FirstName:   "Asha",
		LastName:    "Verma",
		PartyName:   "Unity",
		Category:    "general",
		ElectionID:  "election-1",
	})
	module.Store.SetCandidateSnapshot(entities.CandidateSnapshot{
		CandidateID: "candidate-2",
		FirstName:   "Ravi",
		LastName:    "Iyer",
		PartyName:   "Progress",
		Category:    "general",
		ElectionID:  "election-1",
	})
	module.Store.SetVoter(entities.Voter{
		VoterID:  "voter-1",
		FullName: "Meera Nair",
		Email:    "meera@example.com",
		Status:   entities.VoterStatusApproved,
	})
	module.Store.SetVoter(entities.Voter{
		VoterID:  "voter-2",
		FullName: "Karan Shah",
		Email:    "karan@example.com",
		Status:   entities.VoterStatusApproved,
	})
	module.Store.SetVoter(entities.Voter{
		VoterID:  "voter-pending",
		FullName: "Pending Person",
		Email:    "pending@example.com",
		Status:   entities.VoterStatusPending,
	})
}

func TestCastVoteTallyAndChainBackfill(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xvote"}}
	module := voteledger.NewInMemoryModule(dispatcher, nil, &recordingPublisher{}, nil)
	seedLedger(module)

	cast, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if !cast.Data.ChainConfirmed || cast.Data.TxHash != "0xvote" {
		t.Fatalf("expected chain-confirmed vote, got %+v", cast.Data)
	}

	none, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:    "voter-2",
		ElectionID: "election-1",
	})
	if err != nil {
		t.Fatalf("cast none vote failed: %v", err)
	}
	if !none.Data.NoneOption {
		t.Fatalf("expected none-option vote, got %+v", none.Data)
	}

	tally, err := module.Handler.TallyHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Data.TotalVotes != 2 || tally.Data.NoneVotes != 1 {
		t.Fatalf("expected 2 votes with 1 none, got total %d none %d", tally.Data.TotalVotes, tally.Data.NoneVotes)
	}
	for _, candidate := range tally.Data.Candidates {
		want := 0
		if candidate.CandidateID == "candidate-1" {
			want = 1
		}
		if candidate.VoteCount != want {
			t.Fatalf("candidate %s expected %d votes, got %d", candidate.CandidateID, want, candidate.VoteCount)
		}
	}

	voter, err := module.Handler.GetVoterHandler(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if !voter.Data.HasVoted || voter.Data.LastVotedElection != "election-1" {
		t.Fatalf("expected voter marked as voted, got %+v", voter.Data)
	}
}

func TestCastVoteSecondAttemptIsRejected(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xvote"}}
	module := voteledger.NewInMemoryModule(dispatcher, nil, &recordingPublisher{}, nil)
	seedLedger(module)

	if _, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	}); err != nil {
		t.Fatalf("first cast failed: %v", err)
	}

	_, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-2",
	})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	tally, err := module.Handler.TallyHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Data.TotalVotes != 1 {
		t.Fatalf("rejected cast must not change the tally, got %d", tally.Data.TotalVotes)
	}
}

func TestCastVotePreconditions(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true}}
	module := voteledger.NewInMemoryModule(dispatcher, nil, &recordingPublisher{}, nil)
	seedLedger(module)

	_, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-pending",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	})
	if !errors.Is(err, domainerrors.ErrVoterNotApproved) {
		t.Fatalf("expected ErrVoterNotApproved, got %v", err)
	}

	module.Store.SetElectionSnapshot(entities.ElectionSnapshot{
		ElectionID: "election-closed",
		Title:      "Closed Election",
		IsActive:   true,
		EndDate:    time.Now().UTC().Add(-time.Hour),
	})
	_, err = module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:    "voter-1",
		ElectionID: "election-closed",
	})
	if !errors.Is(err, domainerrors.ErrElectionWindowClosed) {
		t.Fatalf("expected ErrElectionWindowClosed, got %v", err)
	}

	module.Store.SetElectionSnapshot(entities.ElectionSnapshot{
		ElectionID: "election-draft",
		Title:      "Draft Election",
		EndDate:    time.Now().UTC().Add(24 * time.Hour),
	})
	_, err = module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:    "voter-1",
		ElectionID: "election-draft",
	})
	if !errors.Is(err, domainerrors.ErrElectionNotActive) {
		t.Fatalf("expected ErrElectionNotActive, got %v", err)
	}

	module.Store.SetCandidateSnapshot(entities.CandidateSnapshot{
		CandidateID: "candidate-foreign",
		FirstName:   "Outsider",
		Category:    "municipal",
		ElectionID:  "election-other",
	})
	_, err = module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-foreign",
	})
	if !errors.Is(err, domainerrors.ErrCandidateNotInElection) {
		t.Fatalf("expected ErrCandidateNotInElection, got %v", err)
	}
}

func TestCastVoteChainOutageIsSoftFailure(t *testing.T) {
	dispatcher := &scriptedDispatcher{err: errors.New("chain node unreachable")}
	module := voteledger.NewInMemoryModule(dispatcher, nil, &recordingPublisher{}, nil)
	seedLedger(module)

	cast, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	})
	if err != nil {
		t.Fatalf("cast must succeed when chain is down: %v", err)
	}
	if cast.Data.ChainConfirmed {
		t.Fatalf("vote must not be chain-confirmed on outage")
	}
	if cast.Warning == "" {
		t.Fatalf("expected warning carrying the chain failure")
	}

	tally, err := module.Handler.TallyHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Data.TotalVotes != 1 {
		t.Fatalf("expected primary ledger unaffected by outage, got %d votes", tally.Data.TotalVotes)
	}
}

func TestRecordVoteHardFailureAndRetry(t *testing.T) {
	dispatcher := &scriptedDispatcher{err: errors.New("chain node unreachable")}
	module := voteledger.NewInMemoryModule(dispatcher, nil, &recordingPublisher{}, nil)
	seedLedger(module)

	cast, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	dispatcher.err = nil
	dispatcher.outcome = ports.ChainOutcome{Error: "execution reverted"}
	_, err = module.Handler.RecordVoteHandler(context.Background(), cast.Data.VoteID)
	if !errors.Is(err, domainerrors.ErrChainRecordFailed) {
		t.Fatalf("expected ErrChainRecordFailed, got %v", err)
	}

	dispatcher.outcome = ports.ChainOutcome{Success: true, TxHash: "0xretry"}
	recorded, err := module.Handler.RecordVoteHandler(context.Background(), cast.Data.VoteID)
	if err != nil {
		t.Fatalf("record retry failed: %v", err)
	}
	if !recorded.Data.ChainConfirmed || recorded.Data.TxHash != "0xretry" {
		t.Fatalf("expected confirmed vote after retry, got %+v", recorded.Data)
	}

	dispatchCount := len(dispatcher.dispatched)
	again, err := module.Handler.RecordVoteHandler(context.Background(), cast.Data.VoteID)
	if err != nil {
		t.Fatalf("record on confirmed vote failed: %v", err)
	}
	if !again.Chain.AlreadySatisfied {
		t.Fatalf("expected already-satisfied outcome, got %+v", again.Chain)
	}
	if len(dispatcher.dispatched) != dispatchCount {
		t.Fatalf("already-confirmed record must not redispatch")
	}
}

func TestVoterApprovalFlow(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xapprove"}}
	module := voteledger.NewInMemoryModule(dispatcher, nil, &recordingPublisher{}, nil)

	registered, err := module.Handler.RegisterVoterHandler(context.Background(), httptransport.RegisterVoterRequest{
		FullName:      "Meera Nair",
		Email:         "Meera@Example.com",
		WalletAddress: "0xABC",
	})
	if err != nil {
		t.Fatalf("register voter failed: %v", err)
	}
	if registered.Data.Status != string(entities.VoterStatusPending) {
		t.Fatalf("expected pending voter, got %q", registered.Data.Status)
	}
	if registered.Data.Email != "meera@example.com" {
		t.Fatalf("expected lowercased email, got %q", registered.Data.Email)
	}

	approved, err := module.Handler.ApproveVoterHandler(context.Background(), registered.Data.VoterID)
	if err != nil {
		t.Fatalf("approve voter failed: %v", err)
	}
	if approved.Data.Status != string(entities.VoterStatusApproved) || approved.Data.ApproveTxHash != "0xapprove" {
		t.Fatalf("expected approved voter with tx hash, got %+v", approved.Data)
	}

	if _, err := module.Handler.ApproveVoterHandler(context.Background(), registered.Data.VoterID); !errors.Is(err, domainerrors.ErrVoterAlreadyResolved) {
		t.Fatalf("expected ErrVoterAlreadyResolved, got %v", err)
	}
	if _, err := module.Handler.RejectVoterHandler(context.Background(), registered.Data.VoterID); !errors.Is(err, domainerrors.ErrVoterAlreadyResolved) {
		t.Fatalf("expected ErrVoterAlreadyResolved on reject, got %v", err)
	}
}

func TestVoteStatusConsultsMirrorGuard(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xvote"}, statusDone: true}
	module := voteledger.NewInMemoryModule(dispatcher, staticMirror{hasVoted: true}, &recordingPublisher{}, nil)
	seedLedger(module)

	if _, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	}); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	status, err := module.Handler.VoteStatusHandler(context.Background(), "voter-1", "election-1")
	if err != nil {
		t.Fatalf("vote status failed: %v", err)
	}
	if !status.Data.HasVotedPrimary || !status.Data.HasVotedMirror || !status.Data.ChainConfirmed {
		t.Fatalf("expected all flags set, got %+v", status.Data)
	}

	clean, err := module.Handler.VoteStatusHandler(context.Background(), "voter-2", "election-1")
	if err != nil {
		t.Fatalf("vote status for clean voter failed: %v", err)
	}
	if clean.Data.HasVotedPrimary {
		t.Fatalf("expected no primary vote for voter-2")
	}
}

func TestMirrorGuardFailureDoesNotBlockStatus(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true}}
	module := voteledger.NewInMemoryModule(dispatcher, staticMirror{err: errors.New("mirror down")}, &recordingPublisher{}, nil)
	seedLedger(module)

	status, err := module.Handler.VoteStatusHandler(context.Background(), "voter-1", "election-1")
	if err != nil {
		t.Fatalf("mirror outage must not fail the status query: %v", err)
	}
	if status.Data.HasVotedMirror {
		t.Fatalf("unreachable mirror must report false, got %+v", status.Data)
	}
}

func TestOutboxRelayPublishesVoteCast(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xvote"}}
	publisher := &recordingPublisher{}
	module := voteledger.NewInMemoryModule(dispatcher, nil, publisher, nil)
	seedLedger(module)

	if _, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
	}); err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if err := module.Relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != "vote.cast" {
		t.Fatalf("expected one vote.cast event, got %v", publisher.topics)
	}
	if remaining := module.Store.PendingOutbox(); len(remaining) != 0 {
		t.Fatalf("expected outbox drained, %d rows left", len(remaining))
	}
}
