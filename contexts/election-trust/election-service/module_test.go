package electionservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	electionservice "ballotcore/contexts/election-trust/election-service"
	"ballotcore/contexts/election-trust/election-service/application/commands"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"
	httptransport "ballotcore/contexts/election-trust/election-service/transport/http"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type scriptedDispatcher struct {
	outcome     ports.ChainOutcome
	err         error
	complete    ports.ChainOutcome
	completeErr error
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

type recordingPublisher struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func createElection(t *testing.T, module electionservice.Module, title, category string) string {
	t.Helper()
	resp, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title:     title,
		Category:  category,
		Region:    "north",
		Pincode:   "110001",
		StartDate: time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		EndDate:   time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	return resp.Data.ElectionID
}

func TestElectionLifecycleWithStrayCandidate(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xstart"}}
	module := electionservice.NewInMemoryModule(nil, dispatcher, &recordingPublisher{}, nil)

	electionID := createElection(t, module, "General Election", "general")
	if _, err := module.Handler.RegisterCandidateHandler(context.Background(), httptransport.RegisterCandidateRequest{
		FirstName:    "Asha",
		LastName:     "Verma",
		PartyName:    "Unity",
		Category:     "General",
		Constituency: "north",
	}); err != nil {
		t.Fatalf("register candidate failed: %v", err)
	}

	started, err := module.Handler.StartElectionHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("start election failed: %v", err)
	}
	if started.Status != "success" || started.Pending {
		t.Fatalf("expected committed start, got status %q pending %v", started.Status, started.Pending)
	}
	if started.Election.StartTxHash != "0xstart" {
		t.Fatalf("expected start tx hash recorded, got %q", started.Election.StartTxHash)
	}
	if len(started.Candidates) != 1 || started.Candidates[0].ElectionID != electionID {
		t.Fatalf("expected stray candidate linked to election, got %+v", started.Candidates)
	}

	if _, err := module.Handler.StartElectionHandler(context.Background(), electionID); !errors.Is(err, domainerrors.ErrElectionAlreadyActive) {
		t.Fatalf("expected ErrElectionAlreadyActive, got %v", err)
	}

	otherID := createElection(t, module, "Shadow Election", "general")
	if _, err := module.Handler.StartElectionHandler(context.Background(), otherID); !errors.Is(err, domainerrors.ErrActiveElectionExists) {
		t.Fatalf("expected ErrActiveElectionExists, got %v", err)
	}

	dispatcher.outcome = ports.ChainOutcome{Success: true, TxHash: "0xend"}
	ended, err := module.Handler.EndElectionHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("end election failed: %v", err)
	}
	if ended.Election.IsActive || !ended.Election.IsArchived {
		t.Fatalf("expected ended election to be archived, got %+v", ended.Election)
	}
	if ended.Election.EndTxHash != "0xend" {
		t.Fatalf("expected end tx hash recorded, got %q", ended.Election.EndTxHash)
	}

	if _, err := module.Handler.StartElectionHandler(context.Background(), electionID); !errors.Is(err, domainerrors.ErrElectionArchived) {
		t.Fatalf("expected ErrElectionArchived after end, got %v", err)
	}
}

func TestStartElectionWalletPendingThenComplete(t *testing.T) {
	dispatcher := &scriptedDispatcher{
		outcome: ports.ChainOutcome{
			Pending: true,
			SagaID:  "saga-1",
			CallData: &chainv1.CallData{
				ContractAddress: "0xcontract",
				Method:          "startElection",
			},
		},
		complete: ports.ChainOutcome{Success: true, TxHash: "0xsigned"},
	}
	module := electionservice.NewInMemoryModule(nil, dispatcher, &recordingPublisher{}, nil)

	electionID := createElection(t, module, "Wallet Election", "general")
	pending, err := module.Handler.StartElectionHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("start election failed: %v", err)
	}
	if !pending.Pending || pending.Status != "pending_signature" || pending.SagaID != "saga-1" {
		t.Fatalf("expected pending signature response, got %+v", pending)
	}

	stored, err := module.Handler.GetElectionHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if stored.Data.IsActive {
		t.Fatalf("pending start must not activate the election")
	}

	completed, err := module.Handler.CompleteStartHandler(context.Background(), electionID, httptransport.CompleteTransitionRequest{
		TxHash: "0xsigned",
	})
	if err != nil {
		t.Fatalf("complete start failed: %v", err)
	}
	if !completed.Election.IsActive || completed.Election.StartTxHash != "0xsigned" {
		t.Fatalf("expected activated election with signed hash, got %+v", completed.Election)
	}
}

func TestStartElectionAlreadySatisfiedConverges(t *testing.T) {
	dispatcher := &scriptedDispatcher{
		outcome: ports.ChainOutcome{Success: true, AlreadySatisfied: true, TxHash: "0xprior"},
	}
	module := electionservice.NewInMemoryModule(nil, dispatcher, &recordingPublisher{}, nil)

	electionID := createElection(t, module, "Replayed Election", "general")
	started, err := module.Handler.StartElectionHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("start election failed: %v", err)
	}
	if !started.Election.IsActive {
		t.Fatalf("already-started chain response must still activate locally")
	}
	if started.Election.StartTxHash != "0xprior" {
		t.Fatalf("expected prior tx hash adopted, got %q", started.Election.StartTxHash)
	}
}

func TestResolverSecondPassBackfillsNothing(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, &scriptedDispatcher{}, &recordingPublisher{}, nil)

	electionID := createElection(t, module, "Resolver Election", "general")
	for _, name := range []string{"Asha", "Ravi"} {
		if _, err := module.Handler.RegisterCandidateHandler(context.Background(), httptransport.RegisterCandidateRequest{
			FirstName:    name,
			LastName:     "Verma",
			PartyName:    "Unity",
			Category:     "general",
			Constituency: "north",
		}); err != nil {
			t.Fatalf("register candidate failed: %v", err)
		}
	}

	resolver := commands.CandidateResolver{Candidates: module.Store}
	election := entities.Election{ElectionID: electionID, Category: "general", Region: "north"}

	first, err := resolver.Resolve(context.Background(), election)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if first.Backfilled != 2 || len(first.Candidates) != 2 {
		t.Fatalf("expected both strays backfilled, got %+v", first)
	}

	second, err := resolver.Resolve(context.Background(), election)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if second.Backfilled != 0 {
		t.Fatalf("second resolve must write nothing, backfilled %d", second.Backfilled)
	}
	if len(second.Candidates) != len(first.Candidates) {
		t.Fatalf("resolved set changed between runs: %d then %d", len(first.Candidates), len(second.Candidates))
	}
}

func TestEndElectionChainRefusalIsSoftFailure(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xstart"}}
	module := electionservice.NewInMemoryModule(nil, dispatcher, &recordingPublisher{}, nil)

	electionID := createElection(t, module, "Flaky Chain Election", "general")
	if _, err := module.Handler.StartElectionHandler(context.Background(), electionID); err != nil {
		t.Fatalf("start election failed: %v", err)
	}

	dispatcher.outcome = ports.ChainOutcome{Error: "node unreachable"}
	ended, err := module.Handler.EndElectionHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("end election should proceed on chain refusal: %v", err)
	}
	if !ended.Election.IsArchived {
		t.Fatalf("expected election archived despite chain refusal")
	}
	if ended.Warning == "" {
		t.Fatalf("expected warning carrying the chain refusal")
	}
}

func TestLifecycleSweepIsIdempotent(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xsweep"}}
	now := time.Now().UTC()
	seed := []entities.Election{
		{
			ElectionID: "election-expired",
			Title:      "Expired Election",
			Category:   "general",
			Region:     "north",
			Pincode:    "110001",
			StartDate:  now.Add(-48 * time.Hour),
			EndDate:    now.Add(-time.Hour),
			IsActive:   true,
			CreatedAt:  now.Add(-48 * time.Hour),
		},
		{
			ElectionID: "election-live",
			Title:      "Live Election",
			Category:   "municipal",
			Region:     "south",
			Pincode:    "560001",
			StartDate:  now.Add(-time.Hour),
			EndDate:    now.Add(24 * time.Hour),
			CreatedAt:  now.Add(-time.Hour),
		},
	}
	module := electionservice.NewInMemoryModule(seed, dispatcher, &recordingPublisher{}, nil)

	if err := module.Sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	swept, err := module.Handler.GetElectionHandler(context.Background(), "election-expired")
	if err != nil {
		t.Fatalf("get swept election failed: %v", err)
	}
	if swept.Data.IsActive || !swept.Data.IsArchived {
		t.Fatalf("expected expired election ended by sweep, got %+v", swept.Data)
	}
	if swept.Data.TotalVotes != 0 {
		t.Fatalf("expected zero archival tally, got %d", swept.Data.TotalVotes)
	}

	live, err := module.Handler.GetElectionHandler(context.Background(), "election-live")
	if err != nil {
		t.Fatalf("get live election failed: %v", err)
	}
	if live.Data.IsArchived {
		t.Fatalf("sweep must not touch elections inside their window")
	}

	dispatchCount := len(dispatcher.dispatched)
	if err := module.Sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if len(dispatcher.dispatched) != dispatchCount {
		t.Fatalf("second sweep must be a no-op, got %d extra dispatches", len(dispatcher.dispatched)-dispatchCount)
	}
}

func TestCreateElectionRejectsInvalidWindow(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, &scriptedDispatcher{}, &recordingPublisher{}, nil)

	_, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title:     "Backwards Window",
		Category:  "general",
		Region:    "north",
		Pincode:   "110001",
		StartDate: time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
		EndDate:   time.Now().UTC().Format(time.RFC3339),
	})
	if !errors.Is(err, domainerrors.ErrInvalidElectionInput) {
		t.Fatalf("expected ErrInvalidElectionInput, got %v", err)
	}

	_, err = module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title:    "No Dates",
		Category: "general",
	})
	if !errors.Is(err, domainerrors.ErrInvalidElectionInput) {
		t.Fatalf("expected ErrInvalidElectionInput for missing dates, got %v", err)
	}
}

func TestOutboxRelayPublishesLifecycleEvents(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcome: ports.ChainOutcome{Success: true, TxHash: "0xstart"}}
	publisher := &recordingPublisher{}
	module := electionservice.NewInMemoryModule(nil, dispatcher, publisher, nil)

	electionID := createElection(t, module, "Relayed Election", "general")
	if _, err := module.Handler.StartElectionHandler(context.Background(), electionID); err != nil {
		t.Fatalf("start election failed: %v", err)
	}
	if len(module.Store.PendingOutbox()) == 0 {
		t.Fatalf("expected pending outbox row after start")
	}

	if err := module.Relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.events) == 0 {
		t.Fatalf("expected published lifecycle event")
	}
	if publisher.topics[0] != "election.started" {
		t.Fatalf("expected election.started topic, got %q", publisher.topics[0])
	}
	if remaining := module.Store.PendingOutbox(); len(remaining) != 0 {
		t.Fatalf("expected outbox drained, %d rows left", len(remaining))
	}
}
