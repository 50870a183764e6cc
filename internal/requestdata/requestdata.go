package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type OrgType string

const (
	OrgTypeProducer  OrgType = "producer"
	OrgTypeProcessor OrgType = "processor"
)

type RequestData struct {
	TokenString      string
	UserID           uuid.UUID
	OrganizationID   uuid.UUID
	OrganizationType OrgType
}

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
