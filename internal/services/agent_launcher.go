package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/metrics"
	"github.com/preetsinghmakkar/meetingsync/internal/models"
	"github.com/preetsinghmakkar/meetingsync/internal/stream"
	ws "github.com/preetsinghmakkar/meetingsync/internal/websocket"
)

// AgentSession is a live connection binding an agent to a call.
type AgentSession interface {
	UpdateInstructions(instructions string) error
	Close()
	Done() <-chan struct{}
}

type RealtimeProvider interface {
	ConnectAgent(ctx context.Context, callID string, creds stream.AgentCredentials) (AgentSession, error)
}

type LauncherConfig struct {
	Workers      int
	Attempts     int
	Backoff      time.Duration
	Timeout      time.Duration
	OpenAIAPIKey string
	QueueSize    int
}

var (
	errLauncherStopped = errors.New("launcher stopped")
	errLaunchReleased  = errors.New("meeting released before agent joined")
)

// launchTicket marks one queued launch; released is guarded by AgentLauncher.ticketsMu.
type launchTicket struct {
	released bool
}

type launchJob struct {
	meetingID string
	agent     models.Agent
	ticket    *launchTicket
}

// AgentLauncher opens agent sessions off the request path on a fixed pool of workers.
// A launch that still fails after the configured attempts is logged and counted; the
// meeting stays active.
type AgentLauncher struct {
	provider RealtimeProvider
	hub      *ws.Hub
	cfg      LauncherConfig
	log      zerolog.Logger

	mu       sync.RWMutex
	closed   bool
	jobs     chan launchJob
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	ticketsMu sync.Mutex
	tickets   map[string]*launchTicket // key: meeting id, latest unfinished launch
}

func NewAgentLauncher(provider RealtimeProvider, hub *ws.Hub, cfg LauncherConfig, log zerolog.Logger) *AgentLauncher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	l := &AgentLauncher{
		provider: provider,
		hub:      hub,
		cfg:      cfg,
		log:      log.With().Str("component", "agent_launcher").Logger(),
		jobs:     make(chan launchJob, cfg.QueueSize),
		stop:     make(chan struct{}),
		tickets:  make(map[string]*launchTicket),
	}

	for i := 0; i < cfg.Workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}
	return l
}

// Launch queues a session launch and returns immediately.
func (l *AgentLauncher) Launch(meetingID string, agent models.Agent) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		metrics.RecordAgentLaunch("dropped")
		l.log.Error().Str("meeting_id", meetingID).Msg("launcher stopped, agent launch dropped")
		return
	}

	ticket := &launchTicket{}
	l.ticketsMu.Lock()
	l.tickets[meetingID] = ticket
	l.ticketsMu.Unlock()

	select {
	case l.jobs <- launchJob{meetingID: meetingID, agent: agent, ticket: ticket}:
	default:
		l.finish(meetingID, ticket)
		metrics.RecordAgentLaunch("dropped")
		l.log.Error().Str("meeting_id", meetingID).Msg("launch queue full, agent launch dropped")
	}
}

// Release closes the agent session of meetingID, if one is live. A launch for the
// meeting that has not registered its session yet is abandoned.
func (l *AgentLauncher) Release(meetingID string) {
	l.ticketsMu.Lock()
	if ticket, ok := l.tickets[meetingID]; ok {
		ticket.released = true
		delete(l.tickets, meetingID)
	}
	l.ticketsMu.Unlock()

	if l.hub.Remove(meetingID) {
		l.log.Info().Str("meeting_id", meetingID).Msg("agent session released")
	}
}

// Shutdown stops accepting launches, lets workers drain queued ones and closes live sessions.
func (l *AgentLauncher) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.jobs)
	}
	l.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(finished)
	}()

	var err error
	select {
	case <-finished:
	case <-ctx.Done():
		l.stopOnce.Do(func() { close(l.stop) })
		err = ctx.Err()
	}

	l.hub.CloseAll()
	return err
}

func (l *AgentLauncher) worker() {
	defer l.wg.Done()

	for job := range l.jobs {
		l.launch(job)
	}
}

func (l *AgentLauncher) launch(job launchJob) {
	log := l.log.With().Str("meeting_id", job.meetingID).Str("agent_id", job.agent.ID).Logger()
	defer l.finish(job.meetingID, job.ticket)

	var lastErr error
	for attempt := 1; attempt <= l.cfg.Attempts; attempt++ {
		if attempt > 1 && !l.wait(l.cfg.Backoff<<(attempt-2)) {
			lastErr = errLauncherStopped
			break
		}
		if l.released(job.ticket) {
			lastErr = errLaunchReleased
			break
		}

		lastErr = l.connect(job)
		if lastErr == nil {
			metrics.RecordAgentLaunch("success")
			log.Info().Int("attempt", attempt).Msg("agent session started")
			return
		}
		if errors.Is(lastErr, errLaunchReleased) {
			break
		}

		if attempt < l.cfg.Attempts {
			metrics.RecordAgentLaunch("retry")
			log.Warn().Err(lastErr).Int("attempt", attempt).Msg("agent session launch failed, retrying")
		}
	}

	if errors.Is(lastErr, errLaunchReleased) {
		metrics.RecordAgentLaunch("released")
		log.Info().Msg("meeting ended before agent joined, launch abandoned")
		return
	}

	metrics.RecordAgentLaunch("failed")
	metrics.RecordUpstreamFailure("connect_agent")
	log.Error().Err(lastErr).Msg("agent session launch failed, meeting stays active without agent")
}

// wait sleeps for d and reports false if the launcher was stopped meanwhile.
func (l *AgentLauncher) wait(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-l.stop:
		return false
	}
}

func (l *AgentLauncher) connect(job launchJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.Timeout)
	defer cancel()

	session, err := l.provider.ConnectAgent(ctx, job.meetingID, stream.AgentCredentials{
		AgentUserID:  job.agent.ID,
		OpenAIAPIKey: l.cfg.OpenAIAPIKey,
	})
	if err != nil {
		return err
	}

	if err := session.UpdateInstructions(job.agent.Instructions); err != nil {
		session.Close()
		return err
	}

	// registering under ticketsMu orders this against Release: either Release sees the
	// session in the hub, or this sees the ticket released
	l.ticketsMu.Lock()
	released := job.ticket.released
	if !released {
		l.hub.Add(job.meetingID, session)
	}
	l.ticketsMu.Unlock()

	if released {
		session.Close()
		return errLaunchReleased
	}
	return nil
}

func (l *AgentLauncher) released(ticket *launchTicket) bool {
	l.ticketsMu.Lock()
	defer l.ticketsMu.Unlock()
	return ticket.released
}

// finish forgets ticket unless a newer launch for meetingID replaced it.
func (l *AgentLauncher) finish(meetingID string, ticket *launchTicket) {
	l.ticketsMu.Lock()
	defer l.ticketsMu.Unlock()
	if l.tickets[meetingID] == ticket {
		delete(l.tickets, meetingID)
	}
}
