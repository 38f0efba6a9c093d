// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate input, delegate to the
// application services, and translate service errors into HTTP responses
// through the shared envelope helpers in response.go.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/utils"
)

// defaultPageSize applies when the client sends no page_size parameter.
const defaultPageSize = 20

// maxPageSize caps page_size to keep single responses bounded.
const maxPageSize = 100

// Handlers groups the HTTP endpoints for the catalog, stories, contacts,
// and accounts.
type Handlers struct {
	products *services.ProductService
	recipes  *services.RecipeService
	stories  *services.StoryService
	contacts *services.ContactService
	auth     *services.AuthService
	store    FileStore
}

// New constructs a Handlers instance bound to the given services and file
// store.
func New(
	products *services.ProductService,
	recipes *services.RecipeService,
	stories *services.StoryService,
	contacts *services.ContactService,
	auth *services.AuthService,
	store FileStore,
) *Handlers {
	return &Handlers{
		products: products,
		recipes:  recipes,
		stories:  stories,
		contacts: contacts,
		auth:     auth,
		store:    store,
	}
}

// idParam parses the numeric :id path segment. A non-numeric id is
// reported as not found, matching the lookup semantics of the routes.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusNotFound, "resource not found", nil)
		return 0, false
	}
	return uint(id), true
}

// pageParams extracts page/page_size query values with defaults and caps.
func pageParams(c *gin.Context) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// collectUploads stores every file under the multipart "images" field and
// returns the media rows to attach. A request without multipart content
// yields (nil, true): nil media means "leave attachments untouched" on
// update paths.
func (h *Handlers) collectUploads(c *gin.Context, ownerKind string) ([]domain.Media, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, true
	}
	files := form.File["images"]
	if len(files) == 0 {
		return nil, true
	}

	media := make([]domain.Media, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, "could not read uploaded file",
				map[string]string{"images": err.Error()})
			return nil, false
		}
		key, err := h.store.Save(c.Request.Context(), ownerKind, fh.Filename, f)
		f.Close()
		if err != nil {
			fail(c, http.StatusBadRequest, "could not store uploaded file",
				map[string]string{"images": err.Error()})
			return nil, false
		}
		media = append(media, domain.Media{
			File:             key,
			MediaType:        "image",
			OriginalFilename: fh.Filename,
			UploadedBy:       c.GetString("username"),
		})
	}
	return media, true
}
