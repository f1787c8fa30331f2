package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/services"
	"gorm.io/gorm"
)

type ProviderApplicationRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2"`
	Bio          string `json:"bio" validate:"required"`
}

func ApplyToBeAProvider(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req ProviderApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existingProvider models.Provider
	err := database.DB.Where("user_id = ?", userID).First(&existingProvider).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already submitted an application."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	newApplication := models.Provider{
		UserID:         userID,
		BusinessName:   &req.BusinessName,
		Bio:            &req.Bio,
		Tier:           models.TierNew,
		CommissionRate: services.CommissionRateFor(models.TierNew, models.ServiceTypeStandard),
	}

	if err := database.DB.Create(&newApplication).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create application"})
	}

	return c.Status(fiber.StatusCreated).JSON(newApplication)
}

type ServiceOfferingRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description,omitempty"`
	ServiceType string  `json:"service_type" validate:"required,oneof=standard emergency recurring"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

func CreateServiceOffering(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	var req ServiceOfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var provider models.Provider
	if err := database.DB.First(&provider, "user_id = ?", providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider profile not found"})
	}
	if provider.Status != "approved" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Provider is not approved yet"})
	}

	offering := models.ServiceOffering{
		ProviderID:  providerID,
		Name:        req.Name,
		Description: req.Description,
		ServiceType: req.ServiceType,
		Price:       req.Price,
	}
	if err := database.DB.Create(&offering).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create service offering"})
	}

	return c.Status(fiber.StatusCreated).JSON(offering)
}

func ListMyServiceOfferings(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	var offerings []models.ServiceOffering
	if err := database.DB.Where("provider_id = ?", providerID).Find(&offerings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(offerings)
}

func GetMyProviderProfile(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	var provider models.Provider
	if err := database.DB.Preload("User").First(&provider, "user_id = ?", providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider profile not found"})
	}
	return c.JSON(provider)
}

// GetMyTierProgress reports how close the provider is to the next tier.
func GetMyTierProgress(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	evaluation, err := services.EvaluateProvider(providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider profile not found"})
		}
		if errors.Is(err, services.ErrTierDataMissing) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Tier requirement data is missing"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(evaluation)
}

func ListActiveServiceOfferings(c *fiber.Ctx) error {
	var offerings []models.ServiceOffering
	query := database.DB.Where("is_active = ?", true)

	if providerIDStr := c.Query("provider_id"); providerIDStr != "" {
		providerID, err := uuid.Parse(providerIDStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID format"})
		}
		query = query.Where("provider_id = ?", providerID)
	}

	if err := query.Find(&offerings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(offerings)
}
