package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/services"
	"github.com/pasturelink/pasturelink-backend/internal/taxonomy"
)

type CutConfigHandler struct {
	configService services.CutConfigService
	tax           *taxonomy.Taxonomy
}

func NewCutConfigHandler(configService services.CutConfigService, tax *taxonomy.Taxonomy) *CutConfigHandler {
	return &CutConfigHandler{configService: configService, tax: tax}
}

// GetTaxonomy serves the static cut catalog the frontends build pickers from.
func (ch *CutConfigHandler) GetTaxonomy(c *gin.Context) {
	animal := c.Param("animal")
	schema, ok := ch.tax.AnimalSchema(animal)
	if !ok {
		RespondError(c, apierr.NotFound(fmt.Errorf("unknown animal type %q", animal)))
		return
	}
	RespondOK(c, gin.H{"animal": schema})
}

func (ch *CutConfigHandler) ListAnimals(c *gin.Context) {
	RespondOK(c, gin.H{"animals": ch.tax.Animals()})
}

func (ch *CutConfigHandler) GetConfig(c *gin.Context) {
	processorID, err := uuid.Parse(c.Param("processorId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid processor id")))
		return
	}
	resolved, err := ch.configService.GetConfig(c.Request.Context(), processorID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resolved)
}

func (ch *CutConfigHandler) UpsertConfig(c *gin.Context) {
	var patch services.ConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.configService.UpsertConfig(c.Request.Context(), patch); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutConfigHandler) ToggleCut(c *gin.Context) {
	cutID := c.Param("cutId")
	if err := ch.configService.ToggleCut(c.Request.Context(), cutID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutConfigHandler) CutCounts(c *gin.Context) {
	processorID, err := uuid.Parse(c.Param("processorId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid processor id")))
		return
	}
	counts, err := ch.configService.CutCounts(c.Request.Context(), processorID, c.Param("animal"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, counts)
}
