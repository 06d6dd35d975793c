package services

import (
	"context"
	"errors"
	"fmt"

	"explorewithme/internal/domain"
)

type compilationService struct {
	compilationRepo domain.CompilationRepository
	eventRepo       domain.EventRepository
}

// NewCompilationService creates a CompilationService with the given repositories.
func NewCompilationService(compilationRepo domain.CompilationRepository, eventRepo domain.EventRepository) domain.CompilationService {
	return &compilationService{compilationRepo: compilationRepo, eventRepo: eventRepo}
}

func (s *compilationService) Create(ctx context.Context, title string, pinned bool, eventIDs []string) (*domain.Compilation, error) {
	events, err := s.resolveEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	comp := &domain.Compilation{Title: title, Pinned: pinned, Events: events}
	if err := s.compilationRepo.Create(ctx, comp, eventIDs); err != nil {
		return nil, fmt.Errorf("create compilation: %w", err)
	}
	return comp, nil
}

func (s *compilationService) Update(ctx context.Context, id string, patch *domain.CompilationPatch) (*domain.Compilation, error) {
	comp, err := s.compilationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}

	if patch.Title != nil && *patch.Title != "" {
		comp.Title = *patch.Title
	}
	if patch.Pinned != nil {
		comp.Pinned = *patch.Pinned
	}

	eventIDs := patch.EventIDs
	if eventIDs == nil {
		eventIDs = make([]string, 0, len(comp.Events))
		for _, e := range comp.Events {
			eventIDs = append(eventIDs, e.ID)
		}
	} else {
		events, err := s.resolveEvents(ctx, eventIDs)
		if err != nil {
			return nil, err
		}
		comp.Events = events
	}

	if err := s.compilationRepo.Update(ctx, comp, eventIDs); err != nil {
		return nil, fmt.Errorf("update compilation: %w", err)
	}
	return comp, nil
}

func (s *compilationService) GetByID(ctx context.Context, id string) (*domain.Compilation, error) {
	comp, err := s.compilationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	return comp, nil
}

func (s *compilationService) List(ctx context.Context, pinned *bool, from, size int) ([]*domain.Compilation, error) {
	comps, err := s.compilationRepo.List(ctx, pinned, from, size)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	if comps == nil {
		comps = []*domain.Compilation{}
	}
	return comps, nil
}

func (s *compilationService) Delete(ctx context.Context, id string) error {
	if err := s.compilationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete compilation: %w", err)
	}
	return nil
}

func (s *compilationService) resolveEvents(ctx context.Context, eventIDs []string) ([]*domain.Event, error) {
	if len(eventIDs) == 0 {
		return []*domain.Event{}, nil
	}
	events, err := s.eventRepo.ListByIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(events) != len(eventIDs) {
		return nil, domain.ErrNotFound
	}
	return events, nil
}
