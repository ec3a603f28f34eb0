package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/app/repository"
	"github.com/amparoassist/amparo/internal/pkg/accountcontext"
	"github.com/amparoassist/amparo/internal/pkg/storage"
)

const maxPhotoBytes = 2 * 1024 * 1024

var photoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// DependentController manages the beneficiaries covered under an account's
// plan. Every operation is scoped to the authenticated account.
type DependentController struct {
	dependents    repository.DependentRepository
	subscriptions repository.SubscriptionRepository
	storage       *storage.Client
}

// NewDependentController creates a new dependent controller
func NewDependentController(dependents repository.DependentRepository, subscriptions repository.SubscriptionRepository, storageClient *storage.Client) *DependentController {
	return &DependentController{dependents: dependents, subscriptions: subscriptions, storage: storageClient}
}

// HandleListDependents returns the account's dependents.
func (ctrl *DependentController) HandleListDependents(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	deps, err := ctrl.dependents.ListByAccount(accountID)
	if err != nil {
		log.Errorf("[Dependents] list failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load dependents"})
	}

	return c.JSON(fiber.Map{"dependents": deps})
}

type dependentRequest struct {
	Name         string `json:"name"`
	CPF          string `json:"cpf"`
	BirthDate    string `json:"birth_date"`
	Relationship string `json:"relationship"`
	Active       *bool  `json:"active"`
}

// HandleCreateDependent registers a new dependent. Creation fails when the
// account's plan capacity is already used up by active dependents.
func (ctrl *DependentController) HandleCreateDependent(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	var req dependentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	dep := models.Dependent{
		AccountID:    accountID,
		Name:         req.Name,
		CPF:          req.CPF,
		Relationship: strings.TrimSpace(req.Relationship),
		Active:       true,
	}
	if req.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return dependentValidationError(c, "birth_date", "Birth date must be YYYY-MM-DD")
		}
		dep.BirthDate = &birth
	}

	if err := dep.Validate(); err != nil {
		return dependentModelError(c, err)
	}

	if status := ctrl.checkCapacity(c, accountID); status != nil {
		return status
	}

	if err := ctrl.dependents.Create(&dep); err != nil {
		if isDuplicateEntry(err) {
			return dependentValidationError(c, "cpf", "CPF already registered for this account")
		}
		log.Errorf("[Dependents] create failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create dependent"})
	}

	return c.Status(fiber.StatusCreated).JSON(dep)
}

// HandleUpdateDependent updates a dependent's data.
func (ctrl *DependentController) HandleUpdateDependent(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	dep, status := ctrl.loadOwnedDependent(c, accountID)
	if dep == nil {
		return status
	}

	var req dependentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	if req.Name != "" {
		dep.Name = req.Name
	}
	if req.CPF != "" {
		dep.CPF = req.CPF
	}
	if req.Relationship != "" {
		dep.Relationship = strings.TrimSpace(req.Relationship)
	}
	if req.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return dependentValidationError(c, "birth_date", "Birth date must be YYYY-MM-DD")
		}
		dep.BirthDate = &birth
	}

	reactivating := req.Active != nil && *req.Active && !dep.Active
	if req.Active != nil {
		dep.Active = *req.Active
	}

	if err := dep.Validate(); err != nil {
		return dependentModelError(c, err)
	}

	// Reactivation consumes a capacity slot just like creation does.
	if reactivating {
		if status := ctrl.checkCapacity(c, accountID); status != nil {
			return status
		}
	}

	if err := ctrl.dependents.Update(dep); err != nil {
		if isDuplicateEntry(err) {
			return dependentValidationError(c, "cpf", "CPF already registered for this account")
		}
		log.Errorf("[Dependents] update failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update dependent"})
	}

	return c.JSON(dep)
}

// HandleDeleteDependent removes a dependent.
func (ctrl *DependentController) HandleDeleteDependent(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	dep, status := ctrl.loadOwnedDependent(c, accountID)
	if dep == nil {
		return status
	}

	if err := ctrl.dependents.Delete(dep.ID, accountID); err != nil {
		log.Errorf("[Dependents] delete failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete dependent"})
	}

	if dep.PhotoURL != "" && ctrl.storage != nil {
		if err := ctrl.storage.Delete(c.Context(), photoObjectKeyFromURL(dep)); err != nil {
			log.Warnf("[Dependents] photo cleanup failed for dependent %d: %v", dep.ID, err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadPhoto stores a dependent's photo in object storage.
func (ctrl *DependentController) HandleUploadPhoto(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	if ctrl.storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "Photo storage is not configured"})
	}

	dep, status := ctrl.loadOwnedDependent(c, accountID)
	if dep == nil {
		return status
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing photo file"})
	}
	if fileHeader.Size > maxPhotoBytes {
		return dependentValidationError(c, "photo", "Photo must be at most 2 MiB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("[Dependents] photo open failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to read photo"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		log.Errorf("[Dependents] photo read failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to read photo"})
	}
	if len(data) > maxPhotoBytes {
		return dependentValidationError(c, "photo", "Photo must be at most 2 MiB")
	}

	contentType := http.DetectContentType(data)
	ext, ok := photoExtensions[contentType]
	if !ok {
		return dependentValidationError(c, "photo", "Photo must be PNG, JPEG or WebP")
	}

	objectKey := fmt.Sprintf("dependents/%s/%d%s", accountID, dep.ID, ext)
	url, err := ctrl.storage.Upload(c.Context(), objectKey, data, contentType)
	if err != nil {
		log.Errorf("[Dependents] photo upload failed for dependent %d: %v", dep.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store photo"})
	}

	dep.PhotoURL = url
	if err := ctrl.dependents.Update(dep); err != nil {
		log.Errorf("[Dependents] photo url save failed for dependent %d: %v", dep.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save photo"})
	}

	return c.JSON(fiber.Map{"photo_url": url})
}

// HandleDeletePhoto removes a dependent's photo.
func (ctrl *DependentController) HandleDeletePhoto(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	if ctrl.storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "Photo storage is not configured"})
	}

	dep, status := ctrl.loadOwnedDependent(c, accountID)
	if dep == nil {
		return status
	}

	if dep.PhotoURL == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := ctrl.storage.Delete(c.Context(), photoObjectKeyFromURL(dep)); err != nil {
		log.Warnf("[Dependents] photo delete failed for dependent %d: %v", dep.ID, err)
	}

	dep.PhotoURL = ""
	if err := ctrl.dependents.Update(dep); err != nil {
		log.Errorf("[Dependents] photo url clear failed for dependent %d: %v", dep.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to remove photo"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// checkCapacity returns a JSON error response when the account has no slot
// left for another active dependent, nil when the create/reactivate may
// proceed.
func (ctrl *DependentController) checkCapacity(c *fiber.Ctx, accountID string) error {
	sub, err := ctrl.subscriptions.GetCurrentForAccount(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dependentValidationError(c, "plan", "No subscription found for this account")
		}
		log.Errorf("[Dependents] subscription lookup failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check plan capacity"})
	}

	capacity := sub.Plan.DependentCapacity
	count, err := ctrl.dependents.CountActiveByAccount(accountID)
	if err != nil {
		log.Errorf("[Dependents] capacity count failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check plan capacity"})
	}
	if count >= int64(capacity) {
		return dependentValidationError(c, "plan", fmt.Sprintf("Plan allows at most %d active dependents", capacity))
	}
	return nil
}

func (ctrl *DependentController) loadOwnedDependent(c *fiber.Ctx, accountID string) (*models.Dependent, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid dependent id"})
	}

	dep, err := ctrl.dependents.GetByIDAndAccount(uint(id), accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Dependent not found"})
		}
		log.Errorf("[Dependents] load failed: %v", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load dependent"})
	}
	return dep, nil
}

func dependentModelError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidDependentName):
		return dependentValidationError(c, "name", "Name must contain only letters and spaces")
	case errors.Is(err, models.ErrInvalidCPF):
		return dependentValidationError(c, "cpf", "Invalid CPF")
	default:
		log.Errorf("[Dependents] validation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Validation failed"})
	}
}

func dependentValidationError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   "validation_failed",
		"message": message,
		"fields":  map[string]string{field: message},
	})
}

func isDuplicateEntry(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry"))
}

func photoObjectKeyFromURL(dep *models.Dependent) string {
	// Object keys are deterministic per dependent; derive from the stored
	// URL's extension so a cleanup never deletes the wrong object.
	idx := strings.LastIndex(dep.PhotoURL, "/dependents/")
	if idx >= 0 {
		return dep.PhotoURL[idx+1:]
	}
	return fmt.Sprintf("dependents/%s/%d.jpg", dep.AccountID, dep.ID)
}
