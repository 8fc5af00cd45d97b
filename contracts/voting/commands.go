package voting

import (
	"fmt"
	"strings"

	"go.dedis.ch/ballot"
	"go.dedis.ch/ballot/core/execution"
	"go.dedis.ch/ballot/core/store"
	"golang.org/x/xerrors"
)

// votingCommand implements the commands of the voting contract
//
// - implements commands
type votingCommand struct {
	*Contract
}

// register implements commands. It marks the identity of the VoterArg
// argument as a registered voter. Registering twice has no additional effect.
func (c votingCommand) register(snap store.Snapshot, step execution.Step) error {
	name := step.Current.GetArg(VoterArg)
	if len(name) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", VoterArg)
	}

	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	voter := form.Voters[string(name)]
	voter.IsRegistered = true
	form.Voters[string(name)] = voter

	err = saveForm(snap, form)
	if err != nil {
		return err
	}

	c.watcher.Notify(VoterRegistered{Voter: string(name)})
	promVoters.Set(float64(len(form.Voters)))

	ballot.Logger.Info().Str("contract", ContractName).
		Msgf("registered voter '%s'", name)

	return nil
}

// startProposals implements commands. It moves the form to
// ProposalsRegistrationStarted. The current status is not checked, see the
// note on transition.
func (c votingCommand) startProposals(snap store.Snapshot, step execution.Step) error {
	return c.transition(snap, ProposalsRegistrationStarted)
}

// endProposals implements commands. It moves the form to
// ProposalsRegistrationEnded without checking the current status.
func (c votingCommand) endProposals(snap store.Snapshot, step execution.Step) error {
	return c.transition(snap, ProposalsRegistrationEnded)
}

// startVoting implements commands. It moves the form to VotingSessionStarted
// without checking the current status.
func (c votingCommand) startVoting(snap store.Snapshot, step execution.Step) error {
	return c.transition(snap, VotingSessionStarted)
}

// endVoting implements commands. It moves the form to VotingSessionEnded.
// Unlike the opening transitions, this one requires the voting session to be
// running.
func (c votingCommand) endVoting(snap store.Snapshot, step execution.Step) error {
	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	err = form.requireStatus(VotingSessionStarted)
	if err != nil {
		return err
	}

	return c.moveTo(snap, form, VotingSessionEnded)
}

// transition overwrites the status with the given one, whatever the current
// status is. The three opening transitions have always behaved this way, so
// calling them out of order silently rewinds or skips steps of the workflow.
func (c votingCommand) transition(snap store.Snapshot, next Status) error {
	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	return c.moveTo(snap, form, next)
}

func (c votingCommand) moveTo(snap store.Snapshot, form Form, next Status) error {
	previous := form.Status
	form.Status = next

	err := saveForm(snap, form)
	if err != nil {
		return err
	}

	c.watcher.Notify(StatusChanged{Previous: previous, Current: next})
	promStatus.Set(float64(next))

	ballot.Logger.Info().Str("contract", ContractName).
		Msgf("status moved from %v to %v", previous, next)

	return nil
}

// propose implements commands. It appends a new proposal with the
// description of the ProposalArg argument. Only a registered voter can
// submit, and only while the proposals registration is open.
func (c votingCommand) propose(snap store.Snapshot, step execution.Step) error {
	description := step.Current.GetArg(ProposalArg)
	if len(description) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", ProposalArg)
	}

	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	name, err := identityName(step.Current.GetIdentity())
	if err != nil {
		return xerrors.Errorf("failed to read identity: %v", err)
	}

	err = form.requireVoter(name)
	if err != nil {
		return err
	}

	err = form.requireStatus(ProposalsRegistrationStarted)
	if err != nil {
		return err
	}

	form.Proposals = append(form.Proposals, Proposal{Description: string(description)})
	index := uint32(len(form.Proposals) - 1)

	err = saveForm(snap, form)
	if err != nil {
		return err
	}

	c.watcher.Notify(ProposalRegistered{Index: index})
	promProposals.Set(float64(len(form.Proposals)))

	ballot.Logger.Info().Str("contract", ContractName).
		Msgf("proposal %d registered by '%s'", index, name)

	return nil
}

// list implements commands. It prints the proposals with their index and
// vote count. The read is restricted to registered voters, mirroring the
// submission guard.
func (c votingCommand) list(snap store.Snapshot, step execution.Step) error {
	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	name, err := identityName(step.Current.GetIdentity())
	if err != nil {
		return xerrors.Errorf("failed to read identity: %v", err)
	}

	err = form.requireVoter(name)
	if err != nil {
		return err
	}

	res := make([]string, len(form.Proposals))
	for i, proposal := range form.Proposals {
		res[i] = fmt.Sprintf("%d:%s=%d", i, proposal.Description, proposal.VoteCount)
	}

	fmt.Fprint(c.printer, strings.Join(res, ","))

	return nil
}

// vote implements commands. It increments the counter of every proposal
// whose description matches the ProposalArg argument. A vote matching no
// proposal succeeds without effect. Only a registered voter that is not
// flagged as having voted can cast, and only while the voting session is
// running.
func (c votingCommand) vote(snap store.Snapshot, step execution.Step) error {
	description := step.Current.GetArg(ProposalArg)
	if len(description) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", ProposalArg)
	}

	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	name, err := identityName(step.Current.GetIdentity())
	if err != nil {
		return xerrors.Errorf("failed to read identity: %v", err)
	}

	err = form.requireFreshVoter(name)
	if err != nil {
		return err
	}

	err = form.requireStatus(VotingSessionStarted)
	if err != nil {
		return err
	}

	matched := []uint32{}

	for i := range form.Proposals {
		if form.Proposals[i].Description == string(description) {
			form.Proposals[i].VoteCount++
			matched = append(matched, uint32(i))
		}
	}

	// The voter record is left untouched: the historical vote path never
	// sets HasVoted, so the already-voted guard is inert. See DESIGN.md.

	err = saveForm(snap, form)
	if err != nil {
		return err
	}

	for _, index := range matched {
		c.watcher.Notify(VoteCast{Voter: name, Proposal: index})
		promVotes.Inc()
	}

	ballot.Logger.Info().Str("contract", ContractName).
		Msgf("identity '%s' voted for %d proposal(s)", name, len(matched))

	return nil
}

// tally implements commands. It closes the workflow by computing the winning
// proposal. It requires the voting session to be over.
func (c votingCommand) tally(snap store.Snapshot, step execution.Step) error {
	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	err = form.requireStatus(VotingSessionEnded)
	if err != nil {
		return err
	}

	previous := form.Status
	form.Status = VotesTallied
	form.Winner = form.computeWinner()

	err = saveForm(snap, form)
	if err != nil {
		return err
	}

	c.watcher.Notify(StatusChanged{Previous: previous, Current: VotesTallied})
	promStatus.Set(float64(VotesTallied))

	ballot.Logger.Info().Str("contract", ContractName).
		Msgf("votes tallied, winning proposal is %d", form.Winner)

	return nil
}

// winner implements commands. It prints the description of the winning
// proposal once the votes are tallied.
func (c votingCommand) winner(snap store.Snapshot, step execution.Step) error {
	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	err = form.requireStatus(VotesTallied)
	if err != nil {
		return err
	}

	if int(form.Winner) >= len(form.Proposals) {
		return xerrors.Errorf("no winning proposal")
	}

	fmt.Fprint(c.printer, form.Proposals[form.Winner].Description)

	return nil
}

// status implements commands. It prints the current status of the form.
func (c votingCommand) status(snap store.Snapshot, step execution.Step) error {
	form, err := loadForm(snap)
	if err != nil {
		return xerrors.Errorf("failed to load form: %v", err)
	}

	fmt.Fprint(c.printer, form.Status.String())

	return nil
}
