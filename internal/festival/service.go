package festival

import (
	"context"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

// Validation constants.
const (
	MaxNameLength     = 255
	MaxLocationLength = 255
)

// CreateRequest is the input for a new festival.
type CreateRequest struct {
	Name                 string     `json:"name"`
	Location             string     `json:"location"`
	StartDate            civil.Date `json:"start_date"`
	EndDate              civil.Date `json:"end_date"`
	Type                 Type       `json:"type"`
	Description          string     `json:"description"`
	CulturalSignificance string     `json:"cultural_significance"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name                 *string     `json:"name"`
	Location             *string     `json:"location"`
	StartDate            *civil.Date `json:"start_date"`
	EndDate              *civil.Date `json:"end_date"`
	Type                 *Type       `json:"type"`
	Description          *string     `json:"description"`
	CulturalSignificance *string     `json:"cultural_significance"`
	IsActive             *bool       `json:"is_active"`
}

// ServiceConfig holds configuration for the festival service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service provides festival operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new festival service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// List returns a page of active festivals.
func (s *Service) List(ctx context.Context, skip, limit int) ([]*Festival, error) {
	var errs []FieldError
	if skip < 0 {
		errs = append(errs, FieldError{Field: "skip", Message: "must be at least 0"})
	}
	if limit < 1 || limit > MaxLimit {
		errs = append(errs, FieldError{Field: "limit", Message: "must be between 1 and 500"})
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return s.repo.List(ctx, ListOptions{Skip: skip, Limit: limit})
}

// Get returns an active festival by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Festival, error) {
	return s.repo.Get(ctx, id)
}

// OnDate returns festivals running on date.
func (s *Service) OnDate(ctx context.Context, date civil.Date) ([]*Festival, error) {
	return s.repo.ListOnDate(ctx, date)
}

// InRange returns festivals overlapping [start, end].
func (s *Service) InRange(ctx context.Context, start, end civil.Date) ([]*Festival, error) {
	if end.Before(start) {
		return nil, &ValidationError{Errors: []FieldError{{Field: "end_date", Message: "must not be before start_date"}}}
	}
	return s.repo.ListInRange(ctx, start, end)
}

// ByLocation returns festivals whose location contains text.
func (s *Service) ByLocation(ctx context.Context, text string) ([]*Festival, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Errors: []FieldError{{Field: "location", Message: "is required"}}}
	}
	return s.repo.ListByLocation(ctx, text)
}

// Search returns festivals matching every set filter field.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]*Festival, error) {
	return s.repo.Search(ctx, filter)
}

// Create validates and stores a new active festival.
func (s *Service) Create(ctx context.Context, input *CreateRequest) (*Festival, error) {
	f := &Festival{
		Name:                 strings.TrimSpace(input.Name),
		Location:             strings.TrimSpace(input.Location),
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		Type:                 input.Type,
		Description:          input.Description,
		CulturalSignificance: input.CulturalSignificance,
		IsActive:             true,
	}

	if errs := validate(f); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("festival_id", f.ID).Str("name", f.Name).Msg("festival created")
	return f, nil
}

// Update applies a partial update to an active festival.
func (s *Service) Update(ctx context.Context, id int64, input *UpdateRequest) (*Festival, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		f.Name = strings.TrimSpace(*input.Name)
	}
	if input.Location != nil {
		f.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartDate != nil {
		f.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		f.EndDate = *input.EndDate
	}
	if input.Type != nil {
		f.Type = *input.Type
	}
	if input.Description != nil {
		f.Description = *input.Description
	}
	if input.CulturalSignificance != nil {
		f.CulturalSignificance = *input.CulturalSignificance
	}
	if input.IsActive != nil {
		f.IsActive = *input.IsActive
	}

	if errs := validate(f); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("festival_id", f.ID).Str("name", f.Name).Msg("festival updated")
	return f, nil
}

// Delete soft-deletes an active festival. Deleting a festival that is
// already inactive returns ErrFestivalNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("festival_id", id).Msg("festival deleted")
	return nil
}

func validate(f *Festival) []FieldError {
	var errs []FieldError

	if f.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	} else if len(f.Name) > MaxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "must be at most 255 characters"})
	}

	if f.Location == "" {
		errs = append(errs, FieldError{Field: "location", Message: "is required"})
	} else if len(f.Location) > MaxLocationLength {
		errs = append(errs, FieldError{Field: "location", Message: "must be at most 255 characters"})
	}

	startOK := f.StartDate.IsValid()
	endOK := f.EndDate.IsValid()
	if !startOK {
		errs = append(errs, FieldError{Field: "start_date", Message: "is required"})
	}
	if !endOK {
		errs = append(errs, FieldError{Field: "end_date", Message: "is required"})
	}
	if startOK && endOK && f.EndDate.Before(f.StartDate) {
		errs = append(errs, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}

	if f.Type != "" && !f.Type.Valid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be one of outdoor, indoor, religious, cultural"})
	}

	return errs
}
