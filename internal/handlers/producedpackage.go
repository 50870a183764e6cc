package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/services"
)

type PackageHandler struct {
	packageService services.PackageService
}

func NewPackageHandler(packageService services.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

func (ph *PackageHandler) Create(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req services.CreatePackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	pkg, err := ph.packageService.CreatePackage(c.Request.Context(), sheetID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"package": pkg})
}

func (ph *PackageHandler) List(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	packages, err := ph.packageService.ListPackages(c.Request.Context(), sheetID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"packages": packages})
}

func (ph *PackageHandler) UpdateWeight(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	packageID, err := uuid.Parse(c.Param("packageId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid package id")))
		return
	}
	var req struct {
		WeightLbs float64 `json:"weight_lbs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ph.packageService.UpdatePackageWeight(c.Request.Context(), sheetID, packageID, req.WeightLbs); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ph *PackageHandler) Delete(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	packageID, err := uuid.Parse(c.Param("packageId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid package id")))
		return
	}
	if err := ph.packageService.DeletePackage(c.Request.Context(), sheetID, packageID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
