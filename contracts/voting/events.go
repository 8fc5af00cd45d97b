package voting

import "context"

// Event is the type of the notifications sent by the contract while the
// commands mutate the form. Events are sent after the mutation has been
// written, in the order of the triggering operations.
type Event interface{}

// VoterRegistered is the event sent when an identity is registered as a
// voter.
type VoterRegistered struct {
	Voter string
}

// StatusChanged is the event sent when the form moves to another status.
type StatusChanged struct {
	Previous Status
	Current  Status
}

// ProposalRegistered is the event sent when a proposal is appended to the
// form.
type ProposalRegistered struct {
	Index uint32
}

// VoteCast is the event sent for every proposal whose counter is incremented
// by a vote.
type VoteCast struct {
	Voter    string
	Proposal uint32
}

// Watch returns a channel that is populated with the events emitted by the
// contract, until the context is done.
func (c Contract) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, 100)

	obs := observer{ch: ch}
	c.watcher.Add(obs)

	go func() {
		<-ctx.Done()
		c.watcher.Remove(obs)
		close(ch)
	}()

	return ch
}

// observer forwards the watcher notifications to a channel.
//
// - implements core.Observer
type observer struct {
	ch chan Event
}

// NotifyCallback implements core.Observer. It pushes the event to the
// channel.
func (obs observer) NotifyCallback(event interface{}) {
	obs.ch <- event
}
