package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

func requirePrincipal(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.NotAuthenticated(fmt.Errorf("no authenticated session"))
	}
	return rd, nil
}

func requireProcessor(ctx context.Context, orgID uuid.UUID) (*requestdata.RequestData, error) {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if rd.OrganizationType != requestdata.OrgTypeProcessor {
		return nil, apierr.NotAuthorized(fmt.Errorf("processor role required"))
	}
	if orgID != uuid.Nil && rd.OrganizationID != orgID {
		return nil, apierr.NotAuthorized(fmt.Errorf("wrong processor organization"))
	}
	return rd, nil
}

func requireProducer(ctx context.Context, orgID uuid.UUID) (*requestdata.RequestData, error) {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if rd.OrganizationType != requestdata.OrgTypeProducer {
		return nil, apierr.NotAuthorized(fmt.Errorf("producer role required"))
	}
	if orgID != uuid.Nil && rd.OrganizationID != orgID {
		return nil, apierr.NotAuthorized(fmt.Errorf("wrong producer organization"))
	}
	return rd, nil
}

// requireSheetParty admits either side of the document: the owning producer
// org or the assigned processor org.
func requireSheetParty(ctx context.Context, sheet *types.CutSheet) (*requestdata.RequestData, error) {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if rd.OrganizationID == sheet.ProducerOrgID {
		return rd, nil
	}
	if sheet.ProcessorOrgID != nil && rd.OrganizationID == *sheet.ProcessorOrgID {
		return rd, nil
	}
	return nil, apierr.NotAuthorized(fmt.Errorf("organization is not a party to this cut sheet"))
}
