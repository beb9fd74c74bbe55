package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"TempQuant/internal/domain/models"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrProposalExpired  = errors.New("proposal expired")
)

// ProposalStore holds pending two-phase trade proposals in memory. The
// propose step is side-effect-free; committing removes the proposal so a
// double confirm cannot double-submit.
type ProposalStore struct {
	mu  sync.Mutex
	m   map[string]models.TradeProposal
	now func() time.Time
}

func NewProposalStore() *ProposalStore {
	return &ProposalStore{m: make(map[string]models.TradeProposal), now: time.Now}
}

// Propose registers an opportunity for later confirmation and returns the
// proposal carrying its one-time token.
func (s *ProposalStore) Propose(opp models.Opportunity, ttl time.Duration) models.TradeProposal {
	now := s.now()
	p := models.TradeProposal{
		Token:       uuid.NewString(),
		Opportunity: opp,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	s.mu.Lock()
	s.m[p.Token] = p
	s.prune(now)
	s.mu.Unlock()
	return p
}

// Take removes and returns the proposal for token. Expired or unknown
// tokens fail; a taken proposal can never be taken again.
func (s *ProposalStore) Take(token string) (models.TradeProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[token]
	if !ok {
		return models.TradeProposal{}, ErrProposalNotFound
	}
	delete(s.m, token)
	if p.Expired(s.now()) {
		return models.TradeProposal{}, ErrProposalExpired
	}
	return p, nil
}

// Pending lists live proposals.
func (s *ProposalStore) Pending() []models.TradeProposal {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	out := make([]models.TradeProposal, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	return out
}

func (s *ProposalStore) prune(now time.Time) {
	for token, p := range s.m {
		if p.Expired(now) {
			delete(s.m, token)
		}
	}
}
