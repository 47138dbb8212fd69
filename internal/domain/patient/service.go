package patient

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when no patient matches the given reference.
var ErrNotFound = errors.New("patient not found")

// Service resolves loose patient references (numeric id or free-text name)
// to a canonical patient id.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve maps a patient reference to exactly one patient id.
//
// A non-zero id is returned unchanged; existence is validated downstream by
// the empty-result behavior of the reading store. A name is matched with an
// ordered list of strategies:
//
//  1. two or more tokens: first token AND last token against first/last name
//  2. fallback: the whole string against first, last, or "first last"
//  3. single token: the token against first OR last name
//
// When several patients match, the first in the store's natural return order
// wins. Callers needing disambiguation must pre-filter.
func (s *Service) Resolve(ctx context.Context, patientID int, patientName string) (int, error) {
	if patientID != 0 {
		return patientID, nil
	}

	name := strings.ToLower(strings.TrimSpace(patientName))
	if name == "" {
		return 0, ErrNotFound
	}

	tokens := strings.Fields(name)

	var (
		matches []*Patient
		err     error
	)
	if len(tokens) >= 2 {
		matches, err = s.repo.SearchFirstLast(ctx, tokens[0], tokens[len(tokens)-1])
		if err != nil {
			return 0, err
		}
		if len(matches) == 0 {
			matches, err = s.repo.SearchFullName(ctx, name)
			if err != nil {
				return 0, err
			}
		}
	} else {
		matches, err = s.repo.SearchAnyField(ctx, tokens[0])
		if err != nil {
			return 0, err
		}
	}

	if len(matches) == 0 {
		return 0, ErrNotFound
	}
	// First match wins on ambiguity.
	return matches[0].ID, nil
}

// GetInfo returns the compact patient view for the given id.
func (s *Service) GetInfo(ctx context.Context, id int) (*Info, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.ToInfo(), nil
}

// List returns patients ordered by name.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}
