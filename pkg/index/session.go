package index

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/papercomputeco/upvector/pkg/transport"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// ResumableQueryRequest starts a resumable query in Namespace.
type ResumableQueryRequest struct {
	payload.Query
	Namespace vector.Namespace

	// MaxIdle is how long the service keeps the session alive between
	// calls. It is sent in whole seconds; zero uses the service default.
	MaxIdle time.Duration
}

// SessionState is the client-side lifecycle of a Session.
type SessionState int

const (
	// SessionCreated is the state right after the query started.
	SessionCreated SessionState = iota

	// SessionActive is entered by the first successful FetchNext.
	SessionActive

	// SessionStopped is terminal. Every further call fails locally.
	SessionStopped
)

func (s SessionState) String() string {
	switch s {
	case SessionCreated:
		return "created"
	case SessionActive:
		return "active"
	case SessionStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is a handle to server-held resumable query state. A Session is
// owned by one caller and is not safe for concurrent use.
type Session struct {
	id     string
	state  SessionState
	exec   transport.Executor
	logger *slog.Logger
}

// ResumableQuery starts a resumable query and returns its first batch of
// results together with the session that continues it.
func (i *Index) ResumableQuery(ctx context.Context, req ResumableQueryRequest) ([]vector.QueryResult, *Session, error) {
	if req.MaxIdle < 0 {
		return nil, nil, vector.ClientErrorf("max idle must not be negative, got %s", req.MaxIdle)
	}

	p, err := payload.BuildResumableQuery(req.Query, idleSeconds(req.MaxIdle))
	if err != nil {
		return nil, nil, err
	}

	path := payload.PathResumableQuery
	if req.IsData() {
		path = payload.PathResumableQueryData
	}

	var result payload.ResumableStartResult
	if err := i.exec.Execute(ctx, req.Namespace.Path(path), p, &result); err != nil {
		return nil, nil, err
	}
	if result.UUID == "" {
		return nil, nil, vector.ClientErrorf("resumable query could not be started")
	}

	i.logger.Debug("resumable query started", "session", result.UUID, "results", len(result.Scores))

	return result.Scores, &Session{
		id:     result.UUID,
		state:  SessionCreated,
		exec:   i.exec,
		logger: i.logger,
	}, nil
}

// idleSeconds rounds d up to whole seconds so a sub-second idle time is
// never sent as zero.
func idleSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second > 0 {
		secs++
	}
	return secs
}

// Resume returns a handle to a session started earlier, for example by
// another process. The session counts as active. An empty id yields a
// session on which every call fails locally.
func (i *Index) Resume(id string) *Session {
	return &Session{
		id:     id,
		state:  SessionActive,
		exec:   i.exec,
		logger: i.logger,
	}
}

// ID returns the server-issued session id, empty once stopped.
func (s *Session) ID() string {
	return s.id
}

// State returns the lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// FetchNext returns up to k further results continuing in rank order. A
// batch shorter than k means the results are exhausted.
func (s *Session) FetchNext(ctx context.Context, k int) ([]vector.QueryResult, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, vector.ClientErrorf("additional_k must be positive, got %d", k)
	}

	var results []vector.QueryResult
	err := s.exec.Execute(ctx, payload.PathResumableQueryNext, payload.ResumableNextPayload{
		UUID:        s.id,
		AdditionalK: k,
	}, &results)
	if err != nil {
		return nil, err
	}

	s.state = SessionActive
	return results, nil
}

// Stop releases the server-held state and returns the service status. A
// failed Stop leaves the session as it was, so it may be retried.
func (s *Session) Stop(ctx context.Context) (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}

	var status string
	if err := s.exec.Execute(ctx, payload.PathResumableQueryEnd, payload.ResumableEndPayload{UUID: s.id}, &status); err != nil {
		return "", err
	}

	s.logger.Debug("resumable query stopped", "session", s.id)
	s.id = ""
	s.state = SessionStopped
	return status, nil
}

// Close stops the session unless it is already stopped. It makes a Session
// usable with defer.
func (s *Session) Close() error {
	if s.state == SessionStopped {
		return nil
	}
	_, err := s.Stop(context.Background())
	return err
}

func (s *Session) usable() error {
	if s.state == SessionStopped {
		return vector.ClientErrorf("resumable query session has been stopped")
	}
	if s.id == "" {
		return vector.ClientErrorf("resumable query session has not been started")
	}
	return nil
}

// WithResumableQuery starts a resumable query, runs fn with its first batch
// and session, and stops the session when fn returns or panics. The session
// is stopped exactly once unless fn already stopped it. Errors from fn and
// from the stop are joined.
func WithResumableQuery(
	ctx context.Context,
	idx *Index,
	req ResumableQueryRequest,
	fn func(ctx context.Context, first []vector.QueryResult, s *Session) error,
) (err error) {
	first, s, err := idx.ResumableQuery(ctx, req)
	if err != nil {
		return err
	}

	defer func() {
		if s.state == SessionStopped {
			return
		}
		if _, stopErr := s.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}()

	return fn(ctx, first, s)
}
