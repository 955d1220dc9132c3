package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
)

// reportingService provides cross-budget reporting views.
type reportingService struct {
	fundsRepo portsrepo.FundsRepositoryFacade
}

// NewReportingService creates a new ReportingService.
func NewReportingService(fundsRepo portsrepo.FundsRepositoryFacade) portssvc.ReportingSvcFacade {
	return &reportingService{fundsRepo: fundsRepo}
}

// Ensure reportingService implements the portssvc.ReportingSvcFacade interface
var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// GetViolationsReport lists the ledger rows of active budgets whose
// utilization is at or above the threshold percentage. Over-budget rows are
// flagged separately.
func (s *reportingService) GetViolationsReport(ctx context.Context, params dto.ViolationsReportParams) (*dto.ViolationsReportResponse, error) {
	details, err := s.fundsRepo.ListActiveAmountDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active budget amounts: %w", err)
	}

	threshold := decimal.NewFromFloat(params.Threshold)
	rows := []dto.ViolationRowResponse{}
	for i := range details {
		if details[i].Amount.UtilizationPercentage().GreaterThanOrEqual(threshold) {
			rows = append(rows, dto.ToViolationRowResponse(&details[i]))
		}
	}

	return &dto.ViolationsReportResponse{
		Threshold:  params.Threshold,
		Count:      len(rows),
		Violations: rows,
	}, nil
}
