package session

import (
	"time"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// sessionRecord is the on-disk JSON shape. It mirrors agent.Session's
// exported fields; transient loop-run state never round-trips.
type sessionRecord struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Workspace string          `json:"workdir"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Title     string          `json:"title"`
	Messages  []agent.Message `json:"messages"`
}

func fromSession(s *agent.Session) sessionRecord {
	messages := s.Snapshot()
	return sessionRecord{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Workspace: s.Workspace,
		Provider:  s.Provider,
		Model:     s.Model,
		Title:     s.Title,
		Messages:  messages,
	}
}

func (r sessionRecord) toSession() *agent.Session {
	return agent.Restore(r.ID, r.CreatedAt, r.UpdatedAt, r.Workspace, r.Provider, r.Model, r.Title, r.Messages)
}
