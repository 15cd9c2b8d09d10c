package hh

// Named: вложенный объект hh.ru вида {"id": "...", "name": "..."}
type Named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VacancyItem: вакансия из поисковой выдачи hh.ru (только нужные нам поля)
type VacancyItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
	Employer     *Named `json:"employer"`
	Area         *Named `json:"area"`
}

type VacancySearchResult struct {
	Items   []VacancyItem `json:"items"`
	Found   int           `json:"found"`
	Pages   int           `json:"pages"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

type SearchQuery struct {
	Text    string
	Area    int
	PerPage int
	Page    int
}
