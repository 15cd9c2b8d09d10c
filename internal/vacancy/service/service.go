package service

import (
	"context"
	"time"

	"jobaggregator/internal/vacancy"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type VacancyRepository interface {
	Create(ctx context.Context, v *vacancy.Vacancy) error
	GetByID(ctx context.Context, id int64) (*vacancy.Vacancy, error)
	List(ctx context.Context, offset, limit int) ([]*vacancy.Vacancy, error)
	Update(ctx context.Context, id int64, u vacancy.Update) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo VacancyRepository
	now  func() time.Time
}

func NewService(repo VacancyRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, title, company string, location, url *string) (*vacancy.Vacancy, error) {
	v := &vacancy.Vacancy{
		Title:     title,
		Company:   company,
		Location:  location,
		URL:       url,
		Source:    vacancy.SourceManual,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*vacancy.Vacancy, error) {
	return s.repo.GetByID(ctx, id)
}

// List нормализует пагинацию: отрицательный offset считается 0, limit в пределах [1, MaxLimit]
func (s *Service) List(ctx context.Context, offset, limit int) ([]*vacancy.Vacancy, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.repo.List(ctx, offset, limit)
}

// Update применяет непустые поля и возвращает вакансию после изменения
func (s *Service) Update(ctx context.Context, id int64, u vacancy.Update) (*vacancy.Vacancy, error) {
	if !u.Empty() {
		if err := s.repo.Update(ctx, id, u); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
