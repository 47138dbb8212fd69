package patient

import (
	"context"
	"strings"
	"testing"
)

// -- Mock Repository --

type mockRepo struct {
	patients []*Patient
}

func newMockRepo(patients ...*Patient) *mockRepo {
	return &mockRepo{patients: patients}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Patient, error) {
	for _, p := range m.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func contains(field, term string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(term))
}

func (m *mockRepo) SearchFirstLast(_ context.Context, first, last string) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if contains(p.FirstName, first) && contains(p.LastName, last) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) SearchAnyField(_ context.Context, term string) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if contains(p.FirstName, term) || contains(p.LastName, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) SearchFullName(_ context.Context, term string) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if contains(p.FirstName, term) || contains(p.LastName, term) || contains(p.FullName(), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	return m.patients, len(m.patients), nil
}

// -- Tests --

func testPatients() []*Patient {
	return []*Patient{
		{ID: 111, FirstName: "Anil", LastName: "Kumar"},
		{ID: 132, FirstName: "Rayudu", LastName: "Varma"},
		{ID: 140, FirstName: "Maria", LastName: "Rayas"},
	}
}

func TestResolve_IDPassthrough(t *testing.T) {
	svc := NewService(newMockRepo(testPatients()...))
	id, err := svc.Resolve(context.Background(), 999, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 999 {
		t.Errorf("expected id returned unchanged, got %d", id)
	}
}

func TestResolve_SingleToken(t *testing.T) {
	svc := NewService(newMockRepo(testPatients()...))
	id, err := svc.Resolve(context.Background(), 0, "Rayudu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 132 {
		t.Errorf("expected id 132, got %d", id)
	}
}

func TestResolve_FirstLastTokens(t *testing.T) {
	svc := NewService(newMockRepo(testPatients()...))
	id, err := svc.Resolve(context.Background(), 0, "rayudu varma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 132 {
		t.Errorf("expected id 132, got %d", id)
	}
}

func TestResolve_FullNameFallback(t *testing.T) {
	// "anil ku" has two tokens but "ku" matches Kumar via the first+last pass;
	// force the fallback instead with a middle name the AND-pass cannot hit.
	repo := newMockRepo(&Patient{ID: 7, FirstName: "Jean Pierre", LastName: "Dubois"})
	svc := NewService(repo)

	id, err := svc.Resolve(context.Background(), 0, "pierre dubois x")
	if err == nil {
		t.Fatalf("expected fallback not to match token 'x', got id %d", id)
	}

	id, err = svc.Resolve(context.Background(), 0, "jean pierre")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}
}

func TestResolve_FirstMatchWinsOnAmbiguity(t *testing.T) {
	// Two patients match "ray"; the store's natural order decides.
	svc := NewService(newMockRepo(testPatients()...))
	id, err := svc.Resolve(context.Background(), 0, "ray")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 132 {
		t.Errorf("expected first match 132, got %d", id)
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc := NewService(newMockRepo(testPatients()...))
	_, err := svc.Resolve(context.Background(), 0, "NonexistentName")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_NoInput(t *testing.T) {
	svc := NewService(newMockRepo(testPatients()...))
	_, err := svc.Resolve(context.Background(), 0, "   ")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for blank input, got %v", err)
	}
}

func TestGetInfo(t *testing.T) {
	email := "rayudu@example.com"
	repo := newMockRepo(&Patient{ID: 132, FirstName: "Rayudu", LastName: "Varma", Email: &email})
	svc := NewService(repo)

	info, err := svc.GetInfo(context.Background(), 132)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "Rayudu Varma" {
		t.Errorf("expected full name, got %s", info.Name)
	}
	if info.Email != email {
		t.Errorf("expected email carried over, got %s", info.Email)
	}
}

func TestGetInfo_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.GetInfo(context.Background(), 5); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
