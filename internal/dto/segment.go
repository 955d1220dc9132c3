package dto

import (
	"time"

	"github.com/procureflow/budget_control_app/internal/core/domain"
)

// AddSegmentsRequest defines the data needed to enroll segment values into a budget.
type AddSegmentsRequest struct {
	SegmentValueIDs []string             `json:"segmentValueIDs" binding:"required,min=1"`
	ControlLevel    *domain.ControlLevel `json:"controlLevel" binding:"omitempty,controllevel"` // optional override, nil defers to the budget default
	Notes           string               `json:"notes"`
}

// UpdateSegmentRequest defines the data allowed for updating a membership.
type UpdateSegmentRequest struct {
	ControlLevel *domain.ControlLevel `json:"controlLevel" binding:"omitempty,controllevel"`
	IsActive     *bool                `json:"isActive"`
	Notes        *string              `json:"notes"`
}

// BudgetSegmentResponse defines the data returned for a budget segment membership.
type BudgetSegmentResponse struct {
	BudgetSegmentID       string               `json:"budgetSegmentID"`
	BudgetID              string               `json:"budgetID"`
	SegmentValueID        string               `json:"segmentValueID"`
	SegmentCode           string               `json:"segmentCode"`
	SegmentType           string               `json:"segmentType"`
	Alias                 string               `json:"alias"`
	ControlLevel          *domain.ControlLevel `json:"controlLevel"` // null when deferring to the budget default
	EffectiveControlLevel domain.ControlLevel  `json:"effectiveControlLevel"`
	IsActive              bool                 `json:"isActive"`
	Notes                 string               `json:"notes"`
	CreatedAt             time.Time            `json:"createdAt"`
	CreatedBy             string               `json:"createdBy"`
	LastUpdatedAt         time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy         string               `json:"lastUpdatedBy"`
}

// ListSegmentsResponse wraps the memberships of a budget.
type ListSegmentsResponse struct {
	Segments []BudgetSegmentResponse `json:"segments"`
}

// SegmentValueResponse defines the data returned for a segment master entry.
type SegmentValueResponse struct {
	SegmentValueID  string `json:"segmentValueID"`
	SegmentTypeID   string `json:"segmentTypeID"`
	SegmentTypeName string `json:"segmentTypeName"`
	Code            string `json:"code"`
	Alias           string `json:"alias"`
}

// ListSegmentValuesParams defines query parameters for listing the segment master.
type ListSegmentValuesParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ListSegmentValuesResponse wraps the segment master listing.
type ListSegmentValuesResponse struct {
	SegmentValues []SegmentValueResponse `json:"segmentValues"`
}

// ToBudgetSegmentResponse converts a domain.BudgetSegmentDetail to BudgetSegmentResponse DTO.
// budgetDefault is the parent budget's default control level.
func ToBudgetSegmentResponse(d *domain.BudgetSegmentDetail, budgetDefault domain.ControlLevel) BudgetSegmentResponse {
	return BudgetSegmentResponse{
		BudgetSegmentID:       d.BudgetSegmentID,
		BudgetID:              d.BudgetID,
		SegmentValueID:        d.SegmentValueID,
		SegmentCode:           d.SegmentValue.Code,
		SegmentType:           d.SegmentValue.SegmentTypeName,
		Alias:                 d.SegmentValue.Alias,
		ControlLevel:          d.ControlLevel,
		EffectiveControlLevel: d.EffectiveControlLevel(budgetDefault),
		IsActive:              d.IsActive,
		Notes:                 d.Notes,
		CreatedAt:             d.CreatedAt,
		CreatedBy:             d.CreatedBy,
		LastUpdatedAt:         d.LastUpdatedAt,
		LastUpdatedBy:         d.LastUpdatedBy,
	}
}

// ToListSegmentsResponse converts membership details to ListSegmentsResponse
func ToListSegmentsResponse(details []domain.BudgetSegmentDetail, budgetDefault domain.ControlLevel) ListSegmentsResponse {
	res := make([]BudgetSegmentResponse, len(details))
	for i, d := range details {
		res[i] = ToBudgetSegmentResponse(&d, budgetDefault)
	}
	return ListSegmentsResponse{Segments: res}
}

// ToSegmentValueResponse converts a domain.SegmentValue to SegmentValueResponse DTO
func ToSegmentValueResponse(sv *domain.SegmentValue) SegmentValueResponse {
	return SegmentValueResponse{
		SegmentValueID:  sv.SegmentValueID,
		SegmentTypeID:   sv.SegmentTypeID,
		SegmentTypeName: sv.SegmentTypeName,
		Code:            sv.Code,
		Alias:           sv.Alias,
	}
}

// ToListSegmentValuesResponse converts segment values to ListSegmentValuesResponse
func ToListSegmentValuesResponse(values []domain.SegmentValue) ListSegmentValuesResponse {
	res := make([]SegmentValueResponse, len(values))
	for i, sv := range values {
		res[i] = ToSegmentValueResponse(&sv)
	}
	return ListSegmentValuesResponse{SegmentValues: res}
}
