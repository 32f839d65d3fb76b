package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"prodify/media"
	"prodify/models"

	"gorm.io/gorm"
)

// errNoImages aborts an update transaction that would leave a product
// without any linked image.
var errNoImages = errors.New("no images left")

// ProductService owns all reads and writes of a user's products and their
// linked images. Multi-row writes run inside a single transaction so the
// product, image and join rows appear and disappear together.
type ProductService struct {
	db    *gorm.DB
	media *media.Store
}

func NewProductService(db *gorm.DB, store *media.Store) *ProductService {
	return &ProductService{db: db, media: store}
}

// List returns the caller's products with their images, in insertion order.
func (s *ProductService) List(userID string) ([]models.Product, error) {
	if userID == "" {
		return nil, MissingField("userId is required")
	}
	products := []models.Product{}
	err := s.db.Preload("Images").Preload("Category").
		Where("user_id = ?", userID).Order("id").
		Find(&products).Error
	if err != nil {
		return nil, Internal("Failed to fetch products", err)
	}
	return products, nil
}

// Get returns a single product scoped to the caller, with images and
// category preloaded.
func (s *ProductService) Get(userID string, productID uint) (*models.Product, error) {
	if userID == "" {
		return nil, MissingField("userId is required")
	}
	var product models.Product
	err := s.db.Preload("Images").Preload("Category").
		Where("user_id = ?", userID).
		First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Product not found")
	}
	if err != nil {
		return nil, Internal("Failed to fetch product", err)
	}
	return &product, nil
}

// CreateProductInput carries the raw form values; numeric fields are
// validated here, at the service boundary. Empty optional strings mean the
// field was not supplied.
type CreateProductInput struct {
	Title       string `validate:"required"`
	Price       string `validate:"required"`
	Description string
	Quantity    string
	CategoryID  string
	Images      []media.StagedFile `validate:"required,min=1"`
}

// Create persists the product row plus one Image and one ProductImage row
// per staged file, all in one transaction.
func (s *ProductService) Create(userID string, in CreateProductInput) (*models.Product, error) {
	if userID == "" {
		return nil, MissingField("userId is required")
	}
	if err := validate.Struct(in); err != nil {
		return nil, MissingField("Title, price, and at least one image are required")
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, Validation("Price must be a valid non-negative number")
	}
	quantity := 0
	if in.Quantity != "" {
		quantity, err = parseQuantity(in.Quantity)
		if err != nil {
			return nil, Validation("Quantity must be a non-negative integer")
		}
	}
	var categoryID *uint
	if in.CategoryID != "" {
		cid, err := s.ownedCategoryID(userID, in.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = cid
	}

	product := models.Product{
		UserID:      userID,
		CategoryID:  categoryID,
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		Quantity:    quantity,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return linkImages(tx, product.ID, in.Images)
	})
	if err != nil {
		return nil, Internal("Failed to create product", err)
	}

	return s.Get(userID, product.ID)
}

// UpdateProductInput carries a presence-based patch: nil fields are left
// untouched, non-nil fields are written even when their value is zero.
// A non-nil empty CategoryID detaches the product from its category.
type UpdateProductInput struct {
	ProductID      uint
	Title          *string
	Description    *string
	Price          *string
	Quantity       *string
	CategoryID     *string
	RemoveImageIDs []uint
	NewImages      []media.StagedFile
}

// Update applies the supplied scalar fields and image changes to an owned
// product. Image ids in RemoveImageIDs are resolved through this product's
// join rows only; ids linked elsewhere are ignored. The whole mutation is
// one transaction, and it rolls back if the product would be left without
// images. Backing files of removed images are deleted after commit.
func (s *ProductService) Update(userID string, in UpdateProductInput) error {
	if userID == "" {
		return MissingField("userId is required")
	}
	var product models.Product
	err := s.db.Where("user_id = ?", userID).First(&product, in.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Product not found")
	}
	if err != nil {
		return Internal("Failed to fetch product", err)
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if *in.Title == "" {
			return MissingField("Title cannot be empty")
		}
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		price, err := parsePrice(*in.Price)
		if err != nil {
			return Validation("Price must be a valid non-negative number")
		}
		updates["price"] = price
	}
	if in.Quantity != nil {
		quantity, err := parseQuantity(*in.Quantity)
		if err != nil {
			return Validation("Quantity must be a non-negative integer")
		}
		updates["quantity"] = quantity
	}
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			updates["category_id"] = nil
		} else {
			cid, err := s.ownedCategoryID(userID, *in.CategoryID)
			if err != nil {
				return err
			}
			updates["category_id"] = *cid
		}
	}

	var removedPaths []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", in.ProductID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		if len(in.RemoveImageIDs) > 0 {
			var links []models.ProductImage
			if err := tx.Where("product_id = ? AND image_id IN ?", in.ProductID, in.RemoveImageIDs).
				Find(&links).Error; err != nil {
				return err
			}
			if len(links) > 0 {
				imageIDs := make([]uint, 0, len(links))
				for _, link := range links {
					imageIDs = append(imageIDs, link.ImageID)
				}
				var images []models.Image
				if err := tx.Where("id IN ?", imageIDs).Find(&images).Error; err != nil {
					return err
				}
				for _, image := range images {
					removedPaths = append(removedPaths, image.Image)
				}
				if err := tx.Where("product_id = ? AND image_id IN ?", in.ProductID, imageIDs).
					Delete(&models.ProductImage{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", imageIDs).Delete(&models.Image{}).Error; err != nil {
					return err
				}
			}
		}

		if err := linkImages(tx, in.ProductID, in.NewImages); err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.ProductImage{}).
			Where("product_id = ?", in.ProductID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return errNoImages
		}
		return nil
	})
	if errors.Is(err, errNoImages) {
		return Validation("Product must have at least one image")
	}
	if err != nil {
		return Internal("Failed to update product", err)
	}

	for _, path := range removedPaths {
		s.removeFile(path)
	}
	return nil
}

// Delete removes an owned product together with its Image and ProductImage
// rows in one transaction, then deletes the backing files. A DB failure
// leaves every file untouched; stray files are the accepted failure mode,
// dangling references are not.
func (s *ProductService) Delete(userID string, productID uint) error {
	if userID == "" {
		return MissingField("userId is required")
	}
	var product models.Product
	err := s.db.Where("user_id = ?", userID).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Product not found")
	}
	if err != nil {
		return Internal("Failed to fetch product", err)
	}

	var paths []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var links []models.ProductImage
		if err := tx.Where("product_id = ?", productID).Find(&links).Error; err != nil {
			return err
		}
		if len(links) > 0 {
			imageIDs := make([]uint, 0, len(links))
			for _, link := range links {
				imageIDs = append(imageIDs, link.ImageID)
			}
			var images []models.Image
			if err := tx.Where("id IN ?", imageIDs).Find(&images).Error; err != nil {
				return err
			}
			for _, image := range images {
				paths = append(paths, image.Image)
			}
			if err := tx.Where("product_id = ?", productID).
				Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", imageIDs).Delete(&models.Image{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Product{}, productID).Error
	})
	if err != nil {
		return Internal("Failed to delete product", err)
	}

	for _, path := range paths {
		s.removeFile(path)
	}
	return nil
}

// ownedCategoryID parses a raw category id and checks the category exists
// and belongs to the caller. Another user's category is indistinguishable
// from a missing one.
func (s *ProductService) ownedCategoryID(userID, raw string) (*uint, error) {
	id64, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, Validation("Invalid categoryId")
	}
	cid := uint(id64)
	var category models.Category
	err = s.db.Where("user_id = ?", userID).First(&category, cid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Category not found")
	}
	if err != nil {
		return nil, Internal("Failed to fetch category", err)
	}
	return &cid, nil
}

func linkImages(tx *gorm.DB, productID uint, staged []media.StagedFile) error {
	for _, file := range staged {
		image := models.Image{Image: file.URL}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		link := models.ProductImage{ProductID: productID, ImageID: image.ID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

func parsePrice(raw string) (string, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return "", fmt.Errorf("invalid price %q", raw)
	}
	return fmt.Sprintf("%.2f", value), nil
}

func parseQuantity(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("negative quantity %d", value)
	}
	return value, nil
}

func (s *ProductService) removeFile(urlPath string) {
	if err := s.media.Remove(urlPath); err != nil {
		log.Printf("Failed to remove file %s: %v", urlPath, err)
	}
}
