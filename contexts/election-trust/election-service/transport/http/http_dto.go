package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Region    string `json:"region,omitempty"`
	Pincode   string `json:"pincode,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type UpdateElectionRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Region    string `json:"region,omitempty"`
	Pincode   string `json:"pincode,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ElectionDTO struct {
	ElectionID    string `json:"election_id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Region        string `json:"region,omitempty"`
	Pincode       string `json:"pincode,omitempty"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	IsActive      bool   `json:"is_active"`
	IsArchived    bool   `json:"is_archived"`
	TotalVotes    int    `json:"total_votes"`
	StartTxHash   string `json:"start_tx_hash,omitempty"`
	EndTxHash     string `json:"end_tx_hash,omitempty"`
	ArchiveTxHash string `json:"archive_tx_hash,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type ElectionResponse struct {
	Status string      `json:"status"`
	Data   ElectionDTO `json:"data"`
}

type ElectionListResponse struct {
	Status string        `json:"status"`
	Data   []ElectionDTO `json:"data"`
}

type CandidateDTO struct {
	CandidateID      string `json:"candidate_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name,omitempty"`
	PartyName        string `json:"party_name,omitempty"`
	Category         string `json:"category"`
	Constituency     string `json:"constituency,omitempty"`
	VoteCount        int    `json:"vote_count"`
	ElectionID       string `json:"election_id,omitempty"`
	InActiveElection bool   `json:"in_active_election"`
	IsArchived       bool   `json:"is_archived"`
}

type RegisterCandidateRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	PartyName    string `json:"party_name,omitempty"`
	Category     string `json:"category"`
	Constituency string `json:"constituency,omitempty"`
	ElectionID   string `json:"election_id,omitempty"`
}

type CandidateResponse struct {
	Status string       `json:"status"`
	Data   CandidateDTO `json:"data"`
}

// LifecycleResponse is shared by the start, end and archive transitions.
// Pending means a wallet signature is still required and no state changed.
type LifecycleResponse struct {
	Status     string         `json:"status"`
	Pending    bool           `json:"pending,omitempty"`
	SagaID     string         `json:"saga_id,omitempty"`
	TxHash     string         `json:"tx_hash,omitempty"`
	Warning    string         `json:"warning,omitempty"`
	Election   ElectionDTO    `json:"election"`
	Candidates []CandidateDTO `json:"candidates,omitempty"`
}

type CompleteTransitionRequest struct {
	TxHash string `json:"tx_hash"`
}

type ResultsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Election   ElectionDTO    `json:"election"`
		Candidates []CandidateDTO `json:"candidates"`
		TotalVotes int            `json:"total_votes"`
	} `json:"data"`
}
