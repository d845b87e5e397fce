package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"trainplandev/logger"
)

// Session is one user's conversation with the agent. History holds the full
// model-visible transcript including tool call and response turns.
type Session struct {
	ID     string
	UserID string

	mu      sync.Mutex
	history []*genai.Content
}

// History returns a copy of the transcript safe to extend without holding the
// session lock.
func (s *Session) History() []*genai.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*genai.Content(nil), s.history...)
}

func (s *Session) SetHistory(history []*genai.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
}

type StoreConnectProps struct {
	Logger *logger.LogMiddleware
}

// Store keeps sessions in memory. There is no eviction or persistence; a
// restart starts everyone over.
type Store struct {
	logger *logger.LogMiddleware

	mu       sync.RWMutex
	sessions map[string]*Session
}

func Connect(ctx context.Context, args StoreConnectProps) *Store {
	tracer := otel.Tracer("session/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	args.Logger.Logger(ctx).Info("[Session] In-memory session store started")
	return &Store{logger: args.Logger, sessions: make(map[string]*Session)}
}

// Create makes a new session with generated user and session IDs.
func (st *Store) Create(ctx context.Context) *Session {
	tracer := otel.Tracer("session/Create")
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	sess := &Session{
		ID:     uuid.NewString(),
		UserID: "user_" + uuid.NewString()[:8],
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	span.SetAttributes(attribute.String("session.id", sess.ID))
	st.logger.Logger(ctx).Info("[Session] Session created",
		zap.String("session_id", sess.ID),
		zap.String("user_id", sess.UserID),
	)
	return sess
}

// Get looks a session up by ID and verifies it belongs to the given user.
func (st *Store) Get(sessionID, userID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, false
	}
	return sess, true
}
