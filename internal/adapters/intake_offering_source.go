package adapters

import (
	"context"

	catalogtransport "printsite_backend/internal/catalog/transport"
	intakesvc "printsite_backend/internal/intake/service"
	intaketransport "printsite_backend/internal/intake/transport"
)

// catalogLister is the catalog query the quote form needs.
type catalogLister interface {
	ListActiveGrouped(ctx context.Context) ([]catalogtransport.CategoryGroup, error)
}

// IntakeOfferingSource adapts the catalog service for the intake form session.
type IntakeOfferingSource struct {
	catalog catalogLister
}

// NewIntakeOfferingSource creates a new offering source adapter.
func NewIntakeOfferingSource(catalog catalogLister) *IntakeOfferingSource {
	return &IntakeOfferingSource{catalog: catalog}
}

// ListOfferingGroups maps catalog groups onto the quote form picker.
func (a *IntakeOfferingSource) ListOfferingGroups(ctx context.Context) ([]intaketransport.OfferingGroup, error) {
	groups, err := a.catalog.ListActiveGrouped(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]intaketransport.OfferingGroup, len(groups))
	for i, g := range groups {
		items := make([]intaketransport.OfferingItem, len(g.Offerings))
		for j, o := range g.Offerings {
			items[j] = intaketransport.OfferingItem{Name: o.Name, Slug: o.Slug}
		}
		out[i] = intaketransport.OfferingGroup{Category: g.Category, Items: items}
	}
	return out, nil
}

// Compile-time check that IntakeOfferingSource implements intake/service.OfferingSource.
var _ intakesvc.OfferingSource = (*IntakeOfferingSource)(nil)
