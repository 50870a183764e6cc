package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream opens a long-lived event stream subscribed to one cut sheet's
// channel. The connection is torn down when the client goes away.
func (sh *SSEHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.NotAuthenticated(fmt.Errorf("no authenticated session")))
		return
	}
	sheetID, err := uuid.Parse(c.Query("cut_sheet_id"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid cut sheet id")))
		return
	}
	client := sh.hub.NewClient(rd.UserID)
	sh.hub.Subscribe(client, sse.CutSheetChannel(sheetID))
	defer sh.hub.CloseClient(client)
	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
