package dialogue

import (
	"context"
	"log"
	"sync"

	"frontdesk/session"
	"frontdesk/summary"
)

const turnQueueSize = 16

// Runner drives one call. It owns the only goroutine that evaluates turns
// for its session, so turns are processed strictly in arrival order even if
// the transport delivers overlapping input; a pending extraction round-trip
// simply delays the next turn.
type Runner struct {
	sess    *session.CallSession
	router  *Router
	builder *summary.Builder
	speak   func(text string) // outbound response channel to the transport

	turns chan string
	done  chan struct{}
	once  sync.Once
}

// NewRunner binds a session to the router and the summary builder. speak is
// invoked from the runner goroutine for every agent response.
func NewRunner(sess *session.CallSession, router *Router, builder *summary.Builder, speak func(string)) *Runner {
	return &Runner{
		sess:    sess,
		router:  router,
		builder: builder,
		speak:   speak,
		turns:   make(chan string, turnQueueSize),
		done:    make(chan struct{}),
	}
}

// Start greets the caller and begins draining queued turns.
func (r *Runner) Start(ctx context.Context) {
	r.speak(r.router.Greet(r.sess))
	go r.drain(ctx)
}

func (r *Runner) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.finish()
			return
		case <-r.done:
			return
		case text := <-r.turns:
			result, err := r.router.HandleTurn(ctx, r.sess, text)
			if err != nil {
				log.Printf("⚠️ [%s] Turn rejected: %v", shortID(r.sess.ID), err)
				continue
			}
			for _, reply := range result.Replies {
				r.speak(reply)
			}
			if result.Closing {
				r.finish()
				return
			}
		}
	}
}

// Submit queues one final caller utterance. Returns ErrSessionClosed once
// the call has been finalized, so late input is rejected rather than
// silently dropped.
func (r *Runner) Submit(text string) error {
	if r.sess.Closed() {
		return session.ErrSessionClosed
	}
	select {
	case <-r.done:
		return session.ErrSessionClosed
	case r.turns <- text:
		return nil
	}
}

// Abort finalizes the call on an upstream disconnect. Whatever partial state
// exists still yields a terminal summary. Safe to call any number of times,
// including after a normal close.
func (r *Runner) Abort() {
	r.finish()
}

// Done is closed once the call is finalized.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Record returns the finalized summary, or nil while the call is live.
func (r *Runner) Record() *summary.Record {
	select {
	case <-r.done:
		return r.builder.Finalize(r.sess)
	default:
		return nil
	}
}

func (r *Runner) finish() {
	r.once.Do(func() {
		rec := r.builder.Finalize(r.sess)
		log.Printf("📋 [%s] Call finalized: outcome=%s topics=%d", shortID(r.sess.ID), rec.Outcome, len(rec.Topics))
		close(r.done)
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
