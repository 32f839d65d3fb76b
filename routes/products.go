package routes

import (
	"strconv"
	"strings"
	"time"

	"prodify/middleware"
	"prodify/models"
	"prodify/services"

	"github.com/gofiber/fiber/v2"
)

// ProductResponse is the wire shape of a product: image paths are flattened
// for direct rendering, with their row ids alongside so clients can name
// them in removeImageIds.
type ProductResponse struct {
	ID          uint             `json:"id"`
	UserID      string           `json:"userId"`
	CategoryID  *uint            `json:"categoryId"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Price       string           `json:"price"`
	Quantity    int              `json:"quantity"`
	Image       string           `json:"image,omitempty"`
	Images      []string         `json:"images"`
	ImageIDs    []uint           `json:"imageIds"`
	Category    *models.Category `json:"category,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newProductResponse(product models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID,
		UserID:      product.UserID,
		CategoryID:  product.CategoryID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Images:      make([]string, 0, len(product.Images)),
		ImageIDs:    make([]uint, 0, len(product.Images)),
		Category:    product.Category,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	for _, image := range product.Images {
		resp.Images = append(resp.Images, image.Image)
		resp.ImageIDs = append(resp.ImageIDs, image.ID)
	}
	if len(resp.Images) > 0 {
		resp.Image = resp.Images[0]
	}
	return resp
}

func listProducts(svc *services.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.List(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		userProducts := make([]ProductResponse, 0, len(products))
		for _, product := range products {
			userProducts = append(userProducts, newProductResponse(product))
		}
		return c.JSON(fiber.Map{"userProducts": userProducts})
	}
}

func getProduct(svc *services.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requestID(c, "productId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "productId is required",
			})
		}
		product, err := svc.Get(middleware.UserID(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"product": newProductResponse(*product)})
	}
}

func createProduct(svc *services.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := services.CreateProductInput{
			Title:       c.FormValue("title"),
			Price:       c.FormValue("price"),
			Description: c.FormValue("description"),
			Quantity:    c.FormValue("quantity"),
			CategoryID:  c.FormValue("categoryId"),
			Images:      middleware.StagedArray(c),
		}
		product, err := svc.Create(middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"product": newProductResponse(*product),
		})
	}
}

func editProduct(svc *services.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requestID(c, "productId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "productId is required",
			})
		}
		in := services.UpdateProductInput{
			ProductID: id,
			NewImages: middleware.StagedArray(c),
		}
		if form, err := c.MultipartForm(); err == nil {
			in.Title = formString(form, "title")
			in.Description = formString(form, "description")
			in.Price = formString(form, "price")
			in.Quantity = formString(form, "quantity")
			in.CategoryID = formString(form, "categoryId")

			removeIDs, ok := parseIDList(form.Value["removeImageIds"])
			if !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Invalid removeImageIds format",
				})
			}
			in.RemoveImageIDs = removeIDs
		}
		if err := svc.Update(middleware.UserID(c), in); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Product updated successfully"})
	}
}

func deleteProduct(svc *services.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requestID(c, "productId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "productId is required",
			})
		}
		if err := svc.Delete(middleware.UserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Product deleted successfully"})
	}
}

// parseIDList accepts repeated form fields as well as comma-separated
// values within a field.
func parseIDList(values []string) ([]uint, bool) {
	var ids []uint
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			id64, err := strconv.ParseUint(token, 10, 32)
			if err != nil {
				return nil, false
			}
			ids = append(ids, uint(id64))
		}
	}
	return ids, true
}
