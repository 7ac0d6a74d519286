// Package api contains the request and response contracts of the status
// server. Version v1 is the current API version.
package api

// RunStartRequest is the body of POST /runs. No steps means every step in
// registration order.
type RunStartRequest struct {
	Steps []string `json:"steps,omitempty" validate:"omitempty,unique,dive,oneof=transform evaluate"`
}

// RunListRequest holds the query parameters of GET /runs
type RunListRequest struct {
	Status string `json:"status" query:"status" validate:"omitempty,oneof=pending running completed failed cancelled"`
	Limit  int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
}

// ObservationsRequest holds the query parameters of GET /observations.
// From and To bound the observation date, both inclusive.
type ObservationsRequest struct {
	Model string `json:"model" query:"model" validate:"omitempty,max=256"`
	From  string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
}
