package service

import (
	"printsite_backend/internal/intake/repository"
	"printsite_backend/internal/intake/transport"
)

func toQuoteResponse(q repository.QuoteRequest) transport.QuoteResponse {
	return transport.QuoteResponse{
		ID:              q.ID,
		Name:            q.Name,
		Email:           q.Email,
		Phone:           q.Phone,
		Service:         q.Service,
		ServiceCategory: q.ServiceCategory,
		Description:     q.Description,
		Quantity:        q.Quantity,
		Size:            q.Size,
		HasArtwork:      q.ArtworkFileRef != nil,
		Address: transport.DeliveryAddress{
			Street:    q.AddressStreet,
			Suburb:    q.AddressSuburb,
			State:     q.AddressState,
			Postcode:  q.AddressPostcode,
			Formatted: q.FormattedDeliveryAddress,
		},
		SpecialRequirements: q.SpecialRequirements,
		Status:              q.Status,
		CreatedAt:           q.CreatedAt,
	}
}

func toAdminQuoteResponse(q repository.QuoteRequest) transport.AdminQuoteResponse {
	return transport.AdminQuoteResponse{
		QuoteResponse:  toQuoteResponse(q),
		ArtworkFileRef: q.ArtworkFileRef,
		Notes:          q.Notes,
		UpdatedAt:      q.UpdatedAt,
	}
}

func toContactResponse(m repository.ContactMessage) transport.ContactResponse {
	return transport.ContactResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

func toAdminContactResponse(m repository.ContactMessage) transport.AdminContactResponse {
	return transport.AdminContactResponse{
		ContactResponse: toContactResponse(m),
		Notes:           m.Notes,
		UpdatedAt:       m.UpdatedAt,
	}
}
