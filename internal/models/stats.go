package models

type CompanyStats struct {
	JobCardsByStatus map[JobStatus]int `json:"job_cards_by_status"`
	ActiveProviders  int               `json:"active_providers"`
	TotalProviders   int               `json:"total_providers"`
}

type AdminStats struct {
	CompaniesByStatus map[CompanyStatus]int `json:"companies_by_status"`
	UsersByRole       map[Role]int          `json:"users_by_role"`
	JobCardsByStatus  map[JobStatus]int     `json:"job_cards_by_status"`
}
