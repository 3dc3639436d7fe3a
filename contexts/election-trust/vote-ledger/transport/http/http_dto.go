package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ChainOutcomeDTO separates the primary-store result from the ledger side in
// every response, so clients can react to partial success.
type ChainOutcomeDTO struct {
	Success          bool   `json:"success"`
	Pending          bool   `json:"pending,omitempty"`
	AlreadySatisfied bool   `json:"already_satisfied,omitempty"`
	TxHash           string `json:"tx_hash,omitempty"`
	SagaID           string `json:"saga_id,omitempty"`
	Error            string `json:"error,omitempty"`
	Warning          string `json:"warning,omitempty"`
}

type RegisterVoterRequest struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type VoterDTO struct {
	VoterID           string `json:"voter_id"`
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	WalletAddress     string `json:"wallet_address,omitempty"`
	Status            string `json:"status"`
	HasVoted          bool   `json:"has_voted"`
	LastVotedElection string `json:"last_voted_election,omitempty"`
	ApproveTxHash     string `json:"approve_tx_hash,omitempty"`
}

type VoterResponse struct {
	Status  string          `json:"status"`
	Warning string          `json:"warning,omitempty"`
	Chain   ChainOutcomeDTO `json:"chain,omitempty"`
	Data    VoterDTO        `json:"data"`
}

type VoterListResponse struct {
	Status string     `json:"status"`
	Data   []VoterDTO `json:"data"`
}

type CastVoteRequest struct {
	VoterID    string `json:"voter_id"`
	ElectionID string `json:"election_id"`
	// CandidateID empty means the none-of-the-above option.
	CandidateID string `json:"candidate_id,omitempty"`
}

type VoteDTO struct {
	VoteID         string `json:"vote_id"`
	VoterID        string `json:"voter_id"`
	ElectionID     string `json:"election_id"`
	CandidateID    string `json:"candidate_id,omitempty"`
	NoneOption     bool   `json:"none_option"`
	TxHash         string `json:"tx_hash,omitempty"`
	ChainConfirmed bool   `json:"chain_confirmed"`
	CastAt         string `json:"cast_at"`
}

type CastVoteResponse struct {
	Status  string          `json:"status"`
	Warning string          `json:"warning,omitempty"`
	Chain   ChainOutcomeDTO `json:"chain"`
	Data    VoteDTO         `json:"data"`
}

type RecordVoteResponse struct {
	Status  string          `json:"status"`
	Pending bool            `json:"pending,omitempty"`
	Chain   ChainOutcomeDTO `json:"chain"`
	Data    VoteDTO         `json:"data"`
}

type CompleteRecordRequest struct {
	TxHash string `json:"tx_hash"`
}

type TallyCandidateDTO struct {
	CandidateID      string `json:"candidate_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name,omitempty"`
	PartyName        string `json:"party_name,omitempty"`
	ChainCandidateID string `json:"chain_candidate_id,omitempty"`
	VoteCount        int    `json:"vote_count"`
}

type TallyResponse struct {
	Status string `json:"status"`
	Data   struct {
		ElectionID string              `json:"election_id"`
		Title      string              `json:"title"`
		TotalVotes int                 `json:"total_votes"`
		NoneVotes  int                 `json:"none_votes"`
		Candidates []TallyCandidateDTO `json:"candidates"`
	} `json:"data"`
}

type VoteStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		HasVotedPrimary bool   `json:"has_voted_primary"`
		HasVotedMirror  bool   `json:"has_voted_mirror"`
		ChainConfirmed  bool   `json:"chain_confirmed"`
		ChainDone       bool   `json:"chain_done"`
		TxHash          string `json:"tx_hash,omitempty"`
	} `json:"data"`
}
