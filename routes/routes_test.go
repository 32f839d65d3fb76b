package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"prodify/config"
	"prodify/db"
	"prodify/media"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(database) })

	store, err := media.New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New(fiber.Config{BodyLimit: 64 * 1024 * 1024})
	SetupRoutes(app, database, store, cfg)
	return app
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

type formFile struct {
	field    string
	filename string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files []formFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request, auth string) (*http.Response, map[string]interface{}) {
	t.Helper()
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func createCategoryReq(t *testing.T, app *fiber.App, auth, name string) map[string]interface{} {
	t.Helper()
	req := multipartRequest(t, http.MethodPost, "/categories",
		map[string]string{"category": name},
		[]formFile{{"image", "cat.jpg"}})
	resp, body := do(t, app, req, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body["category"].(map[string]interface{})
}

func createProductReq(t *testing.T, app *fiber.App, auth string, fields map[string]string, imageCount int) map[string]interface{} {
	t.Helper()
	files := make([]formFile, imageCount)
	for i := range files {
		files[i] = formFile{"images", fmt.Sprintf("img%d.png", i)}
	}
	req := multipartRequest(t, http.MethodPost, "/products", fields, files)
	resp, body := do(t, app, req, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body["product"].(map[string]interface{})
}

func TestRoutesRequireAuthentication(t *testing.T) {
	app := newTestApp(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/categories"},
		{http.MethodGet, "/categories/category"},
		{http.MethodPost, "/categories"},
		{http.MethodPut, "/categories"},
		{http.MethodDelete, "/categories"},
		{http.MethodGet, "/products"},
		{http.MethodGet, "/products/product"},
		{http.MethodPost, "/products"},
		{http.MethodPut, "/products"},
		{http.MethodDelete, "/products"},
	}
	for _, r := range routes {
		req := httptest.NewRequest(r.method, r.path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", r.method, r.path)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	app := newTestApp(t)
	auth := token(t, "user_a")

	created := createCategoryReq(t, app, auth, "Tools")
	assert.Equal(t, "Tools", created["category"])
	assert.True(t, strings.HasPrefix(created["image"].(string), "/uploads/"))
	id := created["id"].(float64)

	// list
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["categories"], 1)

	// get one
	resp, body = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/categories/category?categoryId=%.0f", id), nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := body["category"].(map[string]interface{})
	assert.Equal(t, "Tools", got["category"])

	// rename
	req := multipartRequest(t, http.MethodPut, "/categories",
		map[string]string{"categoryId": fmt.Sprintf("%.0f", id), "category": "Hardware"}, nil)
	resp, body = do(t, app, req, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/categories/category?categoryId=%.0f", id), nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hardware", body["category"].(map[string]interface{})["category"])

	// delete, id carried as a JSON number like the mobile client sends it
	resp, _ = do(t, app, jsonRequest(t, http.MethodDelete, "/categories",
		map[string]interface{}{"categoryId": id}), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/categories/category?categoryId=%.0f", id), nil), auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCategoryWithoutImage(t *testing.T) {
	app := newTestApp(t)

	req := multipartRequest(t, http.MethodPost, "/categories",
		map[string]string{"category": "Tools"}, nil)
	resp, _ := do(t, app, req, token(t, "user_a"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadGateRejectsBeforeService(t *testing.T) {
	app := newTestApp(t)
	auth := token(t, "user_a")

	req := multipartRequest(t, http.MethodPost, "/categories",
		map[string]string{"category": "Tools"},
		[]formFile{{"image", "malware.exe"}})
	resp, body := do(t, app, req, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "Only images are allowed")

	// the service never ran
	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["categories"], 0)
}

func TestProductLifecycle(t *testing.T) {
	app := newTestApp(t)
	auth := token(t, "user_a")

	created := createProductReq(t, app, auth,
		map[string]string{"title": "Hammer", "price": "10.5", "quantity": "3", "description": "heavy"}, 2)
	assert.Equal(t, "10.50", created["price"])
	assert.Equal(t, float64(3), created["quantity"])
	assert.Len(t, created["images"], 2)
	assert.Len(t, created["imageIds"], 2)
	assert.Equal(t, created["images"].([]interface{})[0], created["image"])
	id := created["id"].(float64)

	// list
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products", nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["userProducts"], 1)

	// get one
	resp, body = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/products/product?productId=%.0f", id), nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hammer", body["product"].(map[string]interface{})["title"])

	// zero-value update is applied
	req := multipartRequest(t, http.MethodPut, "/products",
		map[string]string{"productId": fmt.Sprintf("%.0f", id), "quantity": "0"}, nil)
	resp, body = do(t, app, req, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/products/product?productId=%.0f", id), nil), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	product := body["product"].(map[string]interface{})
	assert.Equal(t, float64(0), product["quantity"])

	// removing every image is rejected
	imageIDs := product["imageIds"].([]interface{})
	removeAll := fmt.Sprintf("%.0f,%.0f", imageIDs[0].(float64), imageIDs[1].(float64))
	req = multipartRequest(t, http.MethodPut, "/products",
		map[string]string{"productId": fmt.Sprintf("%.0f", id), "removeImageIds": removeAll}, nil)
	resp, body = do(t, app, req, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "at least one image")

	// delete
	resp, _ = do(t, app, jsonRequest(t, http.MethodDelete, "/products",
		map[string]interface{}{"productId": id}), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/products/product?productId=%.0f", id), nil), auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductValidationErrors(t *testing.T) {
	app := newTestApp(t)
	auth := token(t, "user_a")

	// non-numeric price
	req := multipartRequest(t, http.MethodPost, "/products",
		map[string]string{"title": "Hammer", "price": "abc"},
		[]formFile{{"images", "img.png"}})
	resp, _ := do(t, app, req, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// no images
	req = multipartRequest(t, http.MethodPost, "/products",
		map[string]string{"title": "Hammer", "price": "10"}, nil)
	resp, _ = do(t, app, req, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCrossUserVisibility(t *testing.T) {
	app := newTestApp(t)
	authA := token(t, "user_a")
	authB := token(t, "user_b")

	created := createProductReq(t, app, authA, map[string]string{"title": "Hammer", "price": "10"}, 1)
	id := created["id"].(float64)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products", nil), authB)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["userProducts"], 0)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/products/product?productId=%.0f", id), nil), authB)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, jsonRequest(t, http.MethodDelete, "/products",
		map[string]interface{}{"productId": id}), authB)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// still there for its owner
	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/products/product?productId=%.0f", id), nil), authA)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
