package services

import (
	"errors"
	"log"

	"prodify/media"
	"prodify/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// CategoryService owns all reads and writes of a user's categories.
type CategoryService struct {
	db    *gorm.DB
	media *media.Store
}

func NewCategoryService(db *gorm.DB, store *media.Store) *CategoryService {
	return &CategoryService{db: db, media: store}
}

// List returns the caller's categories in insertion order.
func (s *CategoryService) List(userID string) ([]models.Category, error) {
	if userID == "" {
		return nil, MissingField("userId is required")
	}
	categories := []models.Category{}
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&categories).Error; err != nil {
		return nil, Internal("Failed to fetch categories", err)
	}
	return categories, nil
}

// Get returns a single category scoped to the caller.
func (s *CategoryService) Get(userID string, categoryID uint) (*models.Category, error) {
	if userID == "" {
		return nil, MissingField("userId is required")
	}
	var category models.Category
	err := s.db.Where("user_id = ?", userID).First(&category, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Category not found")
	}
	if err != nil {
		return nil, Internal("Failed to fetch category", err)
	}
	return &category, nil
}

type CreateCategoryInput struct {
	Name  string            `validate:"required"`
	Image *media.StagedFile `validate:"required"`
}

// Create persists a new category with its uploaded image.
func (s *CategoryService) Create(userID string, in CreateCategoryInput) (*models.Category, error) {
	if userID == "" {
		return nil, MissingField("userId is required")
	}
	if err := validate.Struct(in); err != nil {
		return nil, MissingField("Category name and image are required")
	}

	category := models.Category{
		UserID: userID,
		Name:   in.Name,
		Image:  in.Image.URL,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, Internal("Failed to create category", err)
	}
	return &category, nil
}

// UpdateCategoryInput carries a presence-based patch: nil fields are left
// untouched, non-nil fields are written even when their value is zero.
type UpdateCategoryInput struct {
	CategoryID uint
	Name       *string
	Image      *media.StagedFile
}

// Update applies the supplied fields to an owned category. When the image
// is replaced, the old backing file is removed only after the row update
// has succeeded; a failed update leaves the old file referenced and intact.
func (s *CategoryService) Update(userID string, in UpdateCategoryInput) error {
	existing, err := s.Get(userID, in.CategoryID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return MissingField("Category name cannot be empty")
		}
		updates["category"] = *in.Name
	}
	if in.Image != nil {
		updates["image"] = in.Image.URL
	}
	if len(updates) == 0 {
		return nil
	}

	err = s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", in.CategoryID, userID).
		Updates(updates).Error
	if err != nil {
		return Internal("Failed to update category", err)
	}

	if in.Image != nil && existing.Image != "" {
		s.removeFile(existing.Image)
	}
	return nil
}

// Delete removes an owned category, detaches the owner's products from it
// and deletes the backing image file once the rows are gone.
func (s *CategoryService) Delete(userID string, categoryID uint) error {
	existing, err := s.Get(userID, categoryID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, categoryID).Error
	})
	if err != nil {
		return Internal("Failed to delete category", err)
	}

	if existing.Image != "" {
		s.removeFile(existing.Image)
	}
	return nil
}

func (s *CategoryService) removeFile(urlPath string) {
	if err := s.media.Remove(urlPath); err != nil {
		log.Printf("Failed to remove file %s: %v", urlPath, err)
	}
}
