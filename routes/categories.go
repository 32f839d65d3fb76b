package routes

import (
	"prodify/middleware"
	"prodify/services"

	"github.com/gofiber/fiber/v2"
)

func listCategories(svc *services.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := svc.List(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"categories": categories})
	}
}

func getCategory(svc *services.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requestID(c, "categoryId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "categoryId is required",
			})
		}
		category, err := svc.Get(middleware.UserID(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"category": category})
	}
}

func createCategory(svc *services.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := services.CreateCategoryInput{
			Name:  c.FormValue("category"),
			Image: middleware.StagedSingle(c),
		}
		category, err := svc.Create(middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"category": category})
	}
}

func editCategory(svc *services.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requestID(c, "categoryId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "categoryId is required",
			})
		}
		in := services.UpdateCategoryInput{
			CategoryID: id,
			Image:      middleware.StagedSingle(c),
		}
		if form, err := c.MultipartForm(); err == nil {
			in.Name = formString(form, "category")
		}
		if err := svc.Update(middleware.UserID(c), in); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Category updated successfully"})
	}
}

func deleteCategory(svc *services.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requestID(c, "categoryId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "categoryId is required",
			})
		}
		if err := svc.Delete(middleware.UserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Category deleted successfully"})
	}
}
