package actor

// Envelope pairs a message with the ref of whoever sent it. Sender is the
// zero ActorRef for unsolicited, outside-the-system sends.
type Envelope struct {
	Message any
	Sender  ActorRef
}
