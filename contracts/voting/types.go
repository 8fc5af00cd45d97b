package voting

import (
	"encoding/json"
	"fmt"

	"go.dedis.ch/ballot/core/access"
	"go.dedis.ch/ballot/core/store"
	"golang.org/x/xerrors"
)

// Status defines the step of the voting workflow. The administrator moves
// the form from one status to the next.
type Status uint16

const (
	// RegisteringVoters is the initial status, while the administrator
	// registers the voters.
	RegisteringVoters Status = iota

	// ProposalsRegistrationStarted is the status while the voters can submit
	// proposals.
	ProposalsRegistrationStarted

	// ProposalsRegistrationEnded is the status once the proposals are fixed.
	ProposalsRegistrationEnded

	// VotingSessionStarted is the status while the voters can cast votes.
	VotingSessionStarted

	// VotingSessionEnded is the status once the votes are fixed.
	VotingSessionEnded

	// VotesTallied is the final status, once the winning proposal is
	// computed.
	VotesTallied
)

func (s Status) String() string {
	switch s {
	case RegisteringVoters:
		return "RegisteringVoters"
	case ProposalsRegistrationStarted:
		return "ProposalsRegistrationStarted"
	case ProposalsRegistrationEnded:
		return "ProposalsRegistrationEnded"
	case VotingSessionStarted:
		return "VotingSessionStarted"
	case VotingSessionEnded:
		return "VotingSessionEnded"
	case VotesTallied:
		return "VotesTallied"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(s))
	}
}

// Voter is the registration record of an identity.
type Voter struct {
	IsRegistered  bool   `json:"isRegistered"`
	HasVoted      bool   `json:"hasVoted"`
	VotedProposal uint32 `json:"votedProposal"`
}

// Proposal is a submitted description with its vote counter. Proposals are
// identified by their index in the form, in submission order.
type Proposal struct {
	Description string `json:"description"`
	VoteCount   uint64 `json:"voteCount"`
}

// Form aggregates the whole state of the workflow: the status, the voter
// registry, the proposals and the winning index once tallied.
type Form struct {
	Status    Status           `json:"status"`
	Voters    map[string]Voter `json:"voters"`
	Proposals []Proposal       `json:"proposals"`

	// Winner is meaningful only once the status is VotesTallied.
	Winner uint32 `json:"winner"`
}

func newForm() Form {
	return Form{
		Status: RegisteringVoters,
		Voters: map[string]Voter{},
	}
}

// requireVoter returns an authorization error unless the name is a registered
// voter.
func (f Form) requireVoter(name string) error {
	if !f.Voters[name].IsRegistered {
		return AuthorizationError{Identity: name, Reason: "not a registered voter"}
	}

	return nil
}

// requireFreshVoter returns an authorization error unless the name is a
// registered voter that has not voted yet.
func (f Form) requireFreshVoter(name string) error {
	err := f.requireVoter(name)
	if err != nil {
		return err
	}

	if f.Voters[name].HasVoted {
		return AuthorizationError{Identity: name, Reason: "already voted"}
	}

	return nil
}

// requireStatus returns a status error unless the form is in the expected
// status.
func (f Form) requireStatus(expected Status) error {
	if f.Status != expected {
		return StatusError{Current: f.Status, Expected: expected}
	}

	return nil
}

// computeWinner reproduces the historical winner selection: each proposal is
// compared only to its direct predecessor, so the winner is not necessarily
// the proposal with the most votes overall. For counts [3,1,2] it returns
// index 2.
//
// TODO: settle whether the winner should be the running maximum instead, and
// migrate the stored forms if so.
func (f Form) computeWinner() uint32 {
	winner := uint32(0)

	for i := 1; i < len(f.Proposals); i++ {
		if f.Proposals[i].VoteCount > f.Proposals[i-1].VoteCount {
			winner = uint32(i)
		}
	}

	return winner
}

// formKey locates the form document inside the contract storage.
var formKey = []byte("voting:form")

// loadForm reads the form from the snapshot, or returns a fresh one if none
// has been stored yet.
func loadForm(snap store.Readable) (Form, error) {
	value, err := snap.Get(formKey)
	if err != nil {
		return Form{}, xerrors.Errorf("failed to get form: %v", err)
	}

	if value == nil {
		return newForm(), nil
	}

	form := Form{}

	err = json.Unmarshal(value, &form)
	if err != nil {
		return Form{}, xerrors.Errorf("failed to unmarshal form: %v", err)
	}

	if form.Voters == nil {
		form.Voters = map[string]Voter{}
	}

	return form, nil
}

// saveForm writes the form document to the snapshot.
func saveForm(snap store.Snapshot, form Form) error {
	value, err := json.Marshal(form)
	if err != nil {
		return xerrors.Errorf("failed to marshal form: %v", err)
	}

	err = snap.Set(formKey, value)
	if err != nil {
		return xerrors.Errorf("failed to set form: %v", err)
	}

	return nil
}

// AuthorizationError is returned when the caller is not allowed to perform an
// operation: it is not the administrator, not a registered voter, or flagged
// as having voted.
type AuthorizationError struct {
	Identity string
	Reason   string
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("identity '%s' not authorized: %s", e.Identity, e.Reason)
}

// StatusError is returned when an operation is invoked while the form is not
// in the status it requires.
type StatusError struct {
	Current  Status
	Expected Status
}

func (e StatusError) Error() string {
	return fmt.Sprintf("invalid status %v, expected %v", e.Current, e.Expected)
}

func identityName(ident access.Identity) (string, error) {
	if ident == nil {
		return "", xerrors.New("transaction has no identity")
	}

	name, err := ident.MarshalText()
	if err != nil {
		return "", xerrors.Errorf("failed to marshal identity: %v", err)
	}

	return string(name), nil
}

func identityLabel(ident access.Identity) string {
	name, err := identityName(ident)
	if err != nil {
		return fmt.Sprintf("%v", ident)
	}

	return name
}
