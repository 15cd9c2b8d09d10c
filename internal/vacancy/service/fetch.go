package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"jobaggregator/internal/config"
	"jobaggregator/internal/hh"
	"jobaggregator/internal/metrics"
	"jobaggregator/internal/vacancy"
)

// notAvailable подставляется, когда hh.ru не вернул работодателя или регион
const notAvailable = "N/A"

type Searcher interface {
	SearchVacancies(ctx context.Context, q hh.SearchQuery) (*hh.VacancySearchResult, error)
}

type ExternalStore interface {
	UpsertExternal(ctx context.Context, v *vacancy.Vacancy) (bool, error)
}

// FetchTask периодически забирает свежие вакансии с hh.ru и складывает их в базу
type FetchTask struct {
	searcher Searcher
	store    ExternalStore
	cfg      config.ScheduleConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewFetchTask(searcher Searcher, store ExternalStore, cfg config.ScheduleConfig, log *zap.Logger) *FetchTask {
	return &FetchTask{
		searcher: searcher,
		store:    store,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// RunOnce выполняет один проход и возвращает число новых вакансий.
// Ошибка сохранения одной вакансии не прерывает проход.
func (t *FetchTask) RunOnce(ctx context.Context) (int, error) {
	res, err := t.searcher.SearchVacancies(ctx, hh.SearchQuery{
		Text:    t.cfg.Keyword,
		Area:    t.cfg.Area,
		PerPage: t.cfg.PerPage,
	})
	if err != nil {
		metrics.VacancyFetchRunsTotal.WithLabelValues("error").Inc()
		return 0, errors.Wrap(err, "failed to fetch vacancies from hh.ru")
	}

	stored := 0
	var firstErr error
	for _, item := range res.Items {
		v := fromItem(item, t.now().UTC())
		inserted, err := t.store.UpsertExternal(ctx, v)
		if err != nil {
			t.log.Warn("failed to store vacancy", zap.String("external_id", item.ID), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to store vacancy %s", item.ID)
			}
			continue
		}
		if inserted {
			stored++
		}
	}

	metrics.VacanciesStoredTotal.Add(float64(stored))
	if firstErr != nil {
		metrics.VacancyFetchRunsTotal.WithLabelValues("partial").Inc()
	} else {
		metrics.VacancyFetchRunsTotal.WithLabelValues("ok").Inc()
	}

	t.log.Info("vacancies fetched",
		zap.String("keyword", t.cfg.Keyword),
		zap.Int("received", len(res.Items)),
		zap.Int("stored", stored))

	return stored, firstErr
}

// Start запускает первый проход сразу, затем раз в Interval, пока не отменен ctx
func (t *FetchTask) Start(ctx context.Context) {
	interval := t.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	t.log.Info("vacancy fetch task started", zap.Duration("interval", interval))
	t.run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("vacancy fetch task stopped")
			return
		case <-ticker.C:
			t.run(ctx)
		}
	}
}

func (t *FetchTask) run(ctx context.Context) {
	if _, err := t.RunOnce(ctx); err != nil {
		t.log.Error("vacancy fetch failed", zap.Error(err))
	}
}

func fromItem(item hh.VacancyItem, now time.Time) *vacancy.Vacancy {
	company, location := notAvailable, notAvailable
	if item.Employer != nil && item.Employer.Name != "" {
		company = item.Employer.Name
	}
	if item.Area != nil && item.Area.Name != "" {
		location = item.Area.Name
	}

	v := &vacancy.Vacancy{
		Title:     item.Name,
		Company:   company,
		Location:  &location,
		Source:    vacancy.SourceHH,
		CreatedAt: now,
	}
	if item.AlternateURL != "" {
		u := item.AlternateURL
		v.URL = &u
	}
	if item.ID != "" {
		id := vacancy.SourceHH + ":" + item.ID
		v.ExternalID = &id
	}
	return v
}
