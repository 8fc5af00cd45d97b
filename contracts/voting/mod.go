// Package voting implements a native contract that runs a permissioned,
// status-gated voting workflow. A single administrator registers the voters
// and moves the form through the statuses, the voters submit proposals and
// then cast votes, and the tally fixes the winning proposal.
package voting

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/ballot"
	"go.dedis.ch/ballot/core"
	"go.dedis.ch/ballot/core/access"
	"go.dedis.ch/ballot/core/execution"
	"go.dedis.ch/ballot/core/execution/native"
	"go.dedis.ch/ballot/core/store"
	"golang.org/x/xerrors"
)

// commands defines the commands of the voting contract. This interface helps
// in testing the contract.
type commands interface {
	register(snap store.Snapshot, step execution.Step) error
	startProposals(snap store.Snapshot, step execution.Step) error
	endProposals(snap store.Snapshot, step execution.Step) error
	startVoting(snap store.Snapshot, step execution.Step) error
	endVoting(snap store.Snapshot, step execution.Step) error
	propose(snap store.Snapshot, step execution.Step) error
	list(snap store.Snapshot, step execution.Step) error
	vote(snap store.Snapshot, step execution.Step) error
	tally(snap store.Snapshot, step execution.Step) error
	winner(snap store.Snapshot, step execution.Step) error
	status(snap store.Snapshot, step execution.Step) error
}

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/ballot.Voting"

	// VoterArg is the argument's name in the transaction that contains the
	// identity to register.
	VoterArg = "voting:voter"

	// ProposalArg is the argument's name in the transaction that contains the
	// description of a proposal.
	ProposalArg = "voting:proposal"

	// CmdArg is the argument's name to indicate the kind of command we want
	// to run on the contract. Should be one of the Command type.
	CmdArg = "voting:command"

	// credentialAllCommand defines the credential command that is allowed to
	// perform all commands.
	credentialAllCommand = "all"
)

// Command defines a type of command for the voting contract.
type Command string

const (
	// CmdRegister defines the command to register a voter.
	CmdRegister Command = "REGISTER"

	// CmdStartProposals defines the command to open the proposals
	// registration.
	CmdStartProposals Command = "START_PROPOSALS"

	// CmdEndProposals defines the command to close the proposals
	// registration.
	CmdEndProposals Command = "END_PROPOSALS"

	// CmdStartVoting defines the command to open the voting session.
	CmdStartVoting Command = "START_VOTING"

	// CmdEndVoting defines the command to close the voting session.
	CmdEndVoting Command = "END_VOTING"

	// CmdPropose defines the command to submit a proposal.
	CmdPropose Command = "PROPOSE"

	// CmdList defines the command to list the proposals so far.
	CmdList Command = "LIST"

	// CmdVote defines the command to cast a vote.
	CmdVote Command = "VOTE"

	// CmdTally defines the command to compute the winning proposal.
	CmdTally Command = "TALLY"

	// CmdWinner defines the command to display the winning proposal.
	CmdWinner Command = "WINNER"

	// CmdStatus defines the command to display the current status.
	CmdStatus Command = "STATUS"
)

// defines prometheus metrics
var (
	promVoters = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_voters",
		Help: "number of registered voters",
	})

	promProposals = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_proposals",
		Help: "number of submitted proposals",
	})

	promVotes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ballot_votes_total",
		Help: "total number of accepted votes",
	})

	promStatus = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_status",
		Help: "current status of the form",
	})
)

func init() {
	ballot.PromCollectors = append(ballot.PromCollectors,
		promVoters, promProposals, promVotes, promStatus)
}

// NewCreds creates new credentials for a voting contract execution.
func NewCreds(id []byte) access.Credential {
	return access.NewContractCreds(id, ContractName, credentialAllCommand)
}

// RegisterContract registers the voting contract to the given execution
// service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is a smart contract that runs the voting workflow over the
// snapshot it is given.
//
// - implements native.Contract
type Contract struct {
	// access is the access control service deciding who the administrator is
	access access.Service

	// accessKey is the access identifier of the administrator credential
	accessKey []byte

	// cmd provides the commands that can be executed by this smart contract
	cmd commands

	// watcher receives the events emitted by the commands
	watcher core.Observable

	// printer is the output used by the LIST, WINNER and STATUS commands
	printer io.Writer
}

// NewContract creates a new voting contract.
func NewContract(aKey []byte, srvc access.Service) Contract {
	contract := Contract{
		access:    srvc,
		accessKey: aKey,
		watcher:   core.NewWatcher(),
		printer:   infoLog{},
	}

	contract.cmd = votingCommand{Contract: &contract}

	return contract
}

// SetPrinter changes the output of the display commands. The default prints
// to the logger. The commands are bound to the receiver so that they observe
// the new output.
func (c *Contract) SetPrinter(w io.Writer) {
	c.printer = w
	c.cmd = votingCommand{Contract: c}
}

// Execute implements native.Contract. It checks the caller when the command
// is reserved to the administrator, then runs the command.
func (c Contract) Execute(snap store.Snapshot, step execution.Step) error {
	cmd := step.Current.GetArg(CmdArg)
	if len(cmd) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", CmdArg)
	}

	switch Command(cmd) {
	case CmdRegister, CmdStartProposals, CmdEndProposals, CmdStartVoting,
		CmdEndVoting, CmdTally:

		creds := NewCreds(c.accessKey)

		err := c.access.Match(snap, creds, step.Current.GetIdentity())
		if err != nil {
			return AuthorizationError{
				Identity: identityLabel(step.Current.GetIdentity()),
				Reason:   "not the administrator (" + err.Error() + ")",
			}
		}
	}

	switch Command(cmd) {
	case CmdRegister:
		err := c.cmd.register(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to REGISTER: %w", err)
		}
	case CmdStartProposals:
		err := c.cmd.startProposals(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to START_PROPOSALS: %w", err)
		}
	case CmdEndProposals:
		err := c.cmd.endProposals(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to END_PROPOSALS: %w", err)
		}
	case CmdStartVoting:
		err := c.cmd.startVoting(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to START_VOTING: %w", err)
		}
	case CmdEndVoting:
		err := c.cmd.endVoting(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to END_VOTING: %w", err)
		}
	case CmdPropose:
		err := c.cmd.propose(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to PROPOSE: %w", err)
		}
	case CmdList:
		err := c.cmd.list(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to LIST: %w", err)
		}
	case CmdVote:
		err := c.cmd.vote(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to VOTE: %w", err)
		}
	case CmdTally:
		err := c.cmd.tally(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to TALLY: %w", err)
		}
	case CmdWinner:
		err := c.cmd.winner(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to WINNER: %w", err)
		}
	case CmdStatus:
		err := c.cmd.status(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to STATUS: %w", err)
		}
	default:
		return xerrors.Errorf("unknown command: %s", cmd)
	}

	return nil
}

// infoLog defines an output using zerolog
//
// - implements io.Writer
type infoLog struct{}

func (h infoLog) Write(p []byte) (int, error) {
	ballot.Logger.Info().Msg(string(p))

	return len(p), nil
}
