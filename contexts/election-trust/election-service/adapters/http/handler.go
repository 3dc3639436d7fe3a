package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotcore/contexts/election-trust/election-service/application/commands"
	"ballotcore/contexts/election-trust/election-service/application/queries"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	httptransport "ballotcore/contexts/election-trust/election-service/transport/http"
)

type Handler struct {
	Create            commands.CreateElectionUseCase
	Update            commands.UpdateElectionUseCase
	Delete            commands.DeleteElectionUseCase
	Start             commands.StartElectionUseCase
	End               commands.EndElectionUseCase
	Archive           commands.ArchiveElectionUseCase
	RegisterCandidate commands.RegisterCandidateUseCase
	Queries           queries.ElectionUseCase
	Logger            *slog.Logger
}

func (h Handler) CreateElectionHandler(ctx context.Context, req httptransport.CreateElectionRequest) (httptransport.ElectionResponse, error) {
	startDate, endDate, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	election, err := h.Create.Execute(ctx, commands.CreateElectionCommand{
		Title:     req.Title,
		Category:  req.Category,
		Region:    req.Region,
		Pincode:   req.Pincode,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return httptransport.ElectionResponse{Status: "success", Data: electionDTO(election)}, nil
}

func (h Handler) UpdateElectionHandler(ctx context.Context, electionID string, req httptransport.UpdateElectionRequest) (httptransport.ElectionResponse, error) {
	startDate, endDate, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	election, err := h.Update.Execute(ctx, commands.UpdateElectionCommand{
		ElectionID: electionID,
		Title:      req.Title,
		Category:   req.Category,
		Region:     req.Region,
		Pincode:    req.Pincode,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return httptransport.ElectionResponse{Status: "success", Data: electionDTO(election)}, nil
}

func (h Handler) DeleteElectionHandler(ctx context.Context, electionID string) error {
	return h.Delete.Execute(ctx, commands.DeleteElectionCommand{ElectionID: electionID})
}

func (h Handler) StartElectionHandler(ctx context.Context, electionID string) (httptransport.LifecycleResponse, error) {
	result, err := h.Start.Execute(ctx, commands.StartElectionCommand{ElectionID: electionID})
	if err != nil {
		return httptransport.LifecycleResponse{}, err
	}
	return httptransport.LifecycleResponse{
		Status:     lifecycleStatus(result.Pending),
		Pending:    result.Pending,
		SagaID:     result.Chain.SagaID,
		TxHash:     result.Chain.TxHash,
		Election:   electionDTO(result.Election),
		Candidates: candidateDTOs(result.Candidates),
	}, nil
}

func (h Handler) CompleteStartHandler(ctx context.Context, electionID string, req httptransport.CompleteTransitionRequest) (httptransport.LifecycleResponse, error) {
	result, err := h.Start.CompleteStart(ctx, commands.CompleteStartCommand{
		ElectionID: electionID,
		TxHash:     req.TxHash,
	})
	if err != nil {
		return httptransport.LifecycleResponse{}, err
	}
	return httptransport.LifecycleResponse{
		Status:     "success",
		TxHash:     result.Chain.TxHash,
		Election:   electionDTO(result.Election),
		Candidates: candidateDTOs(result.Candidates),
	}, nil
}

func (h Handler) EndElectionHandler(ctx context.Context, electionID string) (httptransport.LifecycleResponse, error) {
	result, err := h.End.Execute(ctx, commands.EndElectionCommand{ElectionID: electionID})
	if err != nil {
		return httptransport.LifecycleResponse{}, err
	}
	return httptransport.LifecycleResponse{
		Status:     lifecycleStatus(result.Pending),
		Pending:    result.Pending,
		SagaID:     result.Chain.SagaID,
		TxHash:     result.Chain.TxHash,
		Warning:    result.Warning,
		Election:   electionDTO(result.Election),
		Candidates: candidateDTOs(result.Candidates),
	}, nil
}

func (h Handler) CompleteEndHandler(ctx context.Context, electionID string, req httptransport.CompleteTransitionRequest) (httptransport.LifecycleResponse, error) {
	result, err := h.End.CompleteEnd(ctx, commands.CompleteEndCommand{
		ElectionID: electionID,
		TxHash:     req.TxHash,
	})
	if err != nil {
		return httptransport.LifecycleResponse{}, err
	}
	return httptransport.LifecycleResponse{
		Status:     "success",
		TxHash:     result.Chain.TxHash,
		Warning:    result.Warning,
		Election:   electionDTO(result.Election),
		Candidates: candidateDTOs(result.Candidates),
	}, nil
}

func (h Handler) ArchiveElectionHandler(ctx context.Context, electionID string) (httptransport.LifecycleResponse, error) {
	result, err := h.Archive.Execute(ctx, commands.ArchiveElectionCommand{ElectionID: electionID})
	if err != nil {
		return httptransport.LifecycleResponse{}, err
	}
	return httptransport.LifecycleResponse{
		Status:   "success",
		Warning:  result.Warning,
		Election: electionDTO(result.Election),
	}, nil
}

func (h Handler) RegisterCandidateHandler(ctx context.Context, req httptransport.RegisterCandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.RegisterCandidate.Execute(ctx, commands.RegisterCandidateCommand{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PartyName:    req.PartyName,
		Category:     req.Category,
		Constituency: req.Constituency,
		ElectionID:   req.ElectionID,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return httptransport.CandidateResponse{Status: "success", Data: candidateDTO(candidate)}, nil
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Queries.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return httptransport.ElectionResponse{Status: "success", Data: electionDTO(election)}, nil
}

func (h Handler) ListElectionsHandler(ctx context.Context) (httptransport.ElectionListResponse, error) {
	elections, err := h.Queries.ListElections(ctx)
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	resp := httptransport.ElectionListResponse{
		Status: "success",
		Data:   make([]httptransport.ElectionDTO, 0, len(elections)),
	}
	for _, election := range elections {
		resp.Data = append(resp.Data, electionDTO(election))
	}
	return resp, nil
}

func (h Handler) ResultsHandler(ctx context.Context, electionID string) (httptransport.ResultsResponse, error) {
	results, err := h.Queries.Results(ctx, electionID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	resp := httptransport.ResultsResponse{Status: "success"}
	resp.Data.Election = electionDTO(results.Election)
	resp.Data.Candidates = candidateDTOs(results.Candidates)
	resp.Data.TotalVotes = results.TotalVotes
	return resp, nil
}

func parseWindow(start string, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, domainerrors.ErrInvalidElectionInput
	}
	endDate, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, domainerrors.ErrInvalidElectionInput
	}
	return startDate, endDate, nil
}

func lifecycleStatus(pending bool) string {
	if pending {
		return "pending_signature"
	}
	return "success"
}

func electionDTO(election entities.Election) httptransport.ElectionDTO {
	return httptransport.ElectionDTO{
		ElectionID:    election.ElectionID,
		Title:         election.Title,
		Category:      election.Category,
		Region:        election.Region,
		Pincode:       election.Pincode,
		StartDate:     election.StartDate.UTC().Format(time.RFC3339),
		EndDate:       election.EndDate.UTC().Format(time.RFC3339),
		IsActive:      election.IsActive,
		IsArchived:    election.IsArchived,
		TotalVotes:    election.TotalVotes,
		StartTxHash:   election.StartTxHash,
		EndTxHash:     election.EndTxHash,
		ArchiveTxHash: election.ArchiveTxHash,
		CreatedAt:     election.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func candidateDTO(candidate entities.Candidate) httptransport.CandidateDTO {
	return httptransport.CandidateDTO{
		CandidateID:      candidate.CandidateID,
		FirstName:        candidate.FirstName,
		LastName:         candidate.LastName,
		PartyName:        candidate.PartyName,
		Category:         candidate.Category,
		Constituency:     candidate.Constituency,
		VoteCount:        candidate.VoteCount,
		ElectionID:       candidate.ElectionID,
		InActiveElection: candidate.InActiveElection,
		IsArchived:       candidate.IsArchived,
	}
}

func candidateDTOs(candidates []entities.Candidate) []httptransport.CandidateDTO {
	items := make([]httptransport.CandidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, candidateDTO(candidate))
	}
	return items
}
