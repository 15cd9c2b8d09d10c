package dto

type CreateVacancyRequest struct {
	Title    string  `json:"title" validate:"required,max=255"`
	Company  string  `json:"company" validate:"required,max=255"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	URL      *string `json:"url" validate:"omitempty,url"`
}

// UpdateVacancyRequest: частичное обновление: nil-поля не меняются
type UpdateVacancyRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	Company  *string `json:"company" validate:"omitempty,min=1,max=255"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	URL      *string `json:"url" validate:"omitempty,url"`
}
