package routes

import (
	"encoding/json"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"prodify/config"
	"prodify/media"
	"prodify/middleware"
	"prodify/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxProductImages = 10

func SetupRoutes(app *fiber.App, database *gorm.DB, store *media.Store, cfg *config.Config) {
	categoryService := services.NewCategoryService(database, store)
	productService := services.NewProductService(database, store)

	auth := middleware.Authenticate(cfg.JWTSecret)

	// Category routes
	categories := app.Group("/categories", auth)
	categories.Get("/", listCategories(categoryService))
	categories.Get("/category", getCategory(categoryService))
	categories.Post("/", middleware.SingleImage(store, "image"), createCategory(categoryService))
	categories.Put("/", middleware.SingleImage(store, "image"), editCategory(categoryService))
	categories.Delete("/", deleteCategory(categoryService))

	// Product routes
	products := app.Group("/products", auth)
	products.Get("/", listProducts(productService))
	products.Get("/product", getProduct(productService))
	products.Post("/", middleware.ImageArray(store, "images", maxProductImages), createProduct(productService))
	products.Put("/", middleware.ImageArray(store, "images", maxProductImages), editProduct(productService))
	products.Delete("/", deleteProduct(productService))
}

// respondError maps a service failure onto the wire. Internal causes are
// logged here, at the outermost handler, and never reach the client.
func respondError(c *fiber.Ctx, err error) error {
	if serr, ok := services.AsError(err); ok {
		if serr.Code == services.CodeInternal {
			log.Printf("%s %s: %v", c.Method(), c.Path(), serr)
		}
		return c.Status(serr.Status()).JSON(fiber.Map{"message": serr.Message})
	}
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

// requestID extracts a numeric resource id named key from the query string,
// a form value, or a JSON body (the mobile client sends ids as JSON numbers
// on GET and DELETE).
func requestID(c *fiber.Ctx, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		raw = strings.TrimSpace(c.FormValue(key))
	}
	if raw == "" {
		var body map[string]interface{}
		if err := json.Unmarshal(c.Body(), &body); err == nil {
			switch v := body[key].(type) {
			case string:
				raw = strings.TrimSpace(v)
			case float64:
				raw = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	id64, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// formString reports field presence, not truthiness: an empty submitted
// value comes back as a pointer to "", an absent field as nil.
func formString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}
