package set_analysis_schedule_active

// SetActiveRequest тело запроса
type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}
