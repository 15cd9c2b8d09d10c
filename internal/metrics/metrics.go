package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// hh.ru API метрики
	HHAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_api_requests_total",
			Help: "Total number of hh.ru API requests",
		},
		[]string{"action", "status"},
	)
	HHAPIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "hh_api_request_duration_seconds",
			Help: "Duration of hh.ru API requests in seconds",
		},
		[]string{"action"},
	)

	// OAuth токены hh.ru
	HHTokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_token_refresh_total",
			Help: "hh.ru token refresh exchanges by result",
		},
		[]string{"result"},
	)
	HHTokenLinkTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_token_link_total",
			Help: "hh.ru authorization-code exchanges by result",
		},
		[]string{"result"},
	)

	// Сбор вакансий
	VacancyFetchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancy_fetch_runs_total",
			Help: "Scheduled vacancy fetch runs by result",
		},
		[]string{"result"},
	)
	VacanciesStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vacancies_stored_total",
			Help: "Vacancies stored by the fetch task",
		},
	)
)

// Go- и process-коллекторы уже есть в DefaultRegisterer
var initOnce sync.Once

func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(HTTPRequestsInFlight)

		prometheus.MustRegister(HHAPIRequestsTotal)
		prometheus.MustRegister(HHAPIRequestDuration)
		prometheus.MustRegister(HHTokenRefreshTotal)
		prometheus.MustRegister(HHTokenLinkTotal)

		prometheus.MustRegister(VacancyFetchRunsTotal)
		prometheus.MustRegister(VacanciesStoredTotal)
	})
}
