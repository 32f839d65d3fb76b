package middleware

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"prodify/media"

	"github.com/gofiber/fiber/v2"
)

// Locals keys under which staged uploads are handed to the handlers.
const (
	LocalStagedFile  = "stagedFile"
	LocalStagedFiles = "stagedFiles"
)

const maxImageSize = 5 * 1024 * 1024 // 5 MB per image

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// SingleImage stages at most one image from the named multipart field.
// An absent file passes through untouched; whether the image is required
// is the service's decision.
func SingleImage(store *media.Store, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(field)
		if err != nil {
			return c.Next()
		}
		if msg := checkImage(fh); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
		}
		staged, err := stageImage(c, store, fh)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to save uploaded file",
			})
		}
		c.Locals(LocalStagedFile, staged)
		return c.Next()
	}
}

// ImageArray stages up to max images from the named multipart field,
// preserving submission order. All parts are validated before any file is
// written, so a rejected request stages nothing.
func ImageArray(store *media.Store, field string, max int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Next()
		}
		files := form.File[field]
		if len(files) == 0 {
			return c.Next()
		}
		if len(files) > max {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Too many images uploaded",
			})
		}
		for _, fh := range files {
			if msg := checkImage(fh); msg != "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
			}
		}

		staged := make([]media.StagedFile, 0, len(files))
		for _, fh := range files {
			s, err := stageImage(c, store, fh)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Failed to save uploaded file",
				})
			}
			staged = append(staged, *s)
		}
		c.Locals(LocalStagedFiles, staged)
		return c.Next()
	}
}

func checkImage(fh *multipart.FileHeader) string {
	if fh.Filename == "" {
		return "Uploaded file has no filename"
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return "Only images are allowed (jpeg, jpg, png, gif)"
	}
	if fh.Size > maxImageSize {
		return "Image exceeds the 5 MB size limit"
	}
	return ""
}

func stageImage(c *fiber.Ctx, store *media.Store, fh *multipart.FileHeader) (*media.StagedFile, error) {
	name := store.Filename(filepath.Ext(fh.Filename))
	path := store.DiskPath(name)
	if err := c.SaveFile(fh, path); err != nil {
		return nil, err
	}
	return &media.StagedFile{Name: name, Path: path, URL: store.URLPath(name)}, nil
}

// StagedSingle returns the file staged by SingleImage, if any.
func StagedSingle(c *fiber.Ctx) *media.StagedFile {
	staged, _ := c.Locals(LocalStagedFile).(*media.StagedFile)
	return staged
}

// StagedArray returns the files staged by ImageArray, if any.
func StagedArray(c *fiber.Ctx) []media.StagedFile {
	staged, _ := c.Locals(LocalStagedFiles).([]media.StagedFile)
	return staged
}
