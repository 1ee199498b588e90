package actor

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/lguibr/bollywood/queue"
)

const defaultMailboxCapacityHint = 16

// Mailbox is the per-actor dual queue: a system (lifecycle/supervision)
// queue and a user queue, plus the scheduling flags that make scheduling
// idempotent under concurrent senders. System messages always drain
// before any user message in a given pass,
// and at most one worker ever observes processing == true.
type Mailbox struct {
	mu   sync.Mutex
	user *queue.FIFO[Envelope]
	sys  *queue.FIFO[Envelope]

	scheduled  atomic.Bool
	processing atomic.Bool

	dispatcher Dispatcher
	ctx        *Context

	// throughput bounds how many user messages one drain cycle may
	// process; 1 is the cooperative-fairness default, larger values
	// trade fairness for fewer reschedules on a hot actor.
	throughput int
}

func newMailbox(ctx *Context, d Dispatcher, throughput int) *Mailbox {
	if throughput < 1 {
		throughput = 1
	}
	return &Mailbox{
		user:       queue.New[Envelope](defaultMailboxCapacityHint),
		sys:        queue.New[Envelope](defaultMailboxCapacityHint),
		dispatcher: d,
		ctx:        ctx,
		throughput: throughput,
	}
}

// sendUser enqueues a user envelope and schedules a drain if needed.
func (m *Mailbox) sendUser(e Envelope) {
	m.enqueueAndSchedule(m.user, e)
}

// sendSystem enqueues a system envelope and schedules a drain if needed.
func (m *Mailbox) sendSystem(e Envelope) {
	m.enqueueAndSchedule(m.sys, e)
}

func (m *Mailbox) enqueueAndSchedule(q *queue.FIFO[Envelope], e Envelope) {
	m.mu.Lock()
	q.Push(e)
	if m.scheduled.Load() || m.processing.Load() {
		m.mu.Unlock()
		return
	}
	m.scheduled.Store(true)
	m.mu.Unlock()
	m.dispatcher.schedule(m)
}

// purgeUser discards every queued user message. Used by Restart, which
// preserves the system queue but drops stale user work.
func (m *Mailbox) purgeUser() {
	m.mu.Lock()
	m.user = queue.New[Envelope](defaultMailboxCapacityHint)
	m.mu.Unlock()
}

// drain is invoked by a dispatcher worker. It exhausts the system queue,
// then processes up to `throughput` user messages while RUNNING, then
// releases the worker and reschedules itself if work remains. User
// messages left on an actor that has reached TERMINATED are not
// rescheduled; nothing will process them.
func (m *Mailbox) drain() {
	m.processing.Store(true)

	for {
		m.mu.Lock()
		env, ok := m.sys.Pop()
		m.mu.Unlock()
		if !ok {
			break
		}
		m.ctx.handleSystemMessage(env)
	}

	if m.ctx.stateSnapshot() == StateRunning {
		for i := 0; i < m.throughput; i++ {
			m.mu.Lock()
			env, ok := m.user.Pop()
			m.mu.Unlock()
			if !ok {
				break
			}
			m.ctx.handleUserMessage(env)
			// A message handler may have produced system work (e.g. a
			// Stopped directive self-sends Stop); stop burning through
			// user throughput once we've left RUNNING.
			if m.ctx.stateSnapshot() != StateRunning {
				break
			}
		}
	}

	live := m.ctx.stateSnapshot() != StateTerminated
	m.mu.Lock()
	m.processing.Store(false)
	m.scheduled.Store(false)
	more := m.sys.Len() > 0 || (live && m.user.Len() > 0)
	if more {
		m.scheduled.Store(true)
	}
	m.mu.Unlock()

	if more {
		m.dispatcher.schedule(m)
	}
}
