// Contact HTTP handlers.
//
// Plain CRUD over the contact channel directory:
//   - GET    /contact/       (paginated listing, newest first)
//   - POST   /contact/       (create)
//   - GET    /contact/:id/   (detail)
//   - PUT    /contact/:id/   (update)
//   - PATCH  /contact/:id/   (partial update)
//   - DELETE /contact/:id/   (hard delete)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/utils"
)

// CreateContactRequest is the payload for creating a contact entry.
type CreateContactRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// UpdateContactRequest is the partial-update payload; absent fields stay
// untouched.
type UpdateContactRequest struct {
	Type  *string `json:"type"`
	Title *string `json:"title"`
	Value *string `json:"value"`
}

// ListContacts godoc
// @ID          listContacts
// @Summary     List contact entries
// @Description Returns one page of contact entries, newest first.
// @Tags        Contacts
// @Produce     json
// @Param       page      query int false "Page number (1-based)"
// @Param       page_size query int false "Items per page"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /contact/ [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	page, pageSize := pageParams(c)

	contacts, total, err := h.contacts.List(c.Request.Context(), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	paged(c, "contacts retrieved", contacts,
		utils.NewPageMeta(c.Request.URL.Path, page, pageSize, total))
}

// CreateContact godoc
// @ID          createContact
// @Summary     Create a contact entry
// @Description Stores a contact channel entry. The type must be one of the known channels.
// @Tags        Contacts
// @Accept      json
// @Produce     json
// @Param       body body handlers.CreateContactRequest true "Contact payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /contact/ [post]
func (h *Handlers) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	entry, err := h.contacts.Create(c.Request.Context(), services.ContactInput{
		Type:  strings.ToLower(req.Type),
		Title: req.Title,
		Value: req.Value,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "contact created", entry)
}

// GetContact godoc
// @ID          getContact
// @Summary     Retrieve a contact entry
// @Tags        Contacts
// @Produce     json
// @Param       id path int true "Contact ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /contact/{id}/ [get]
func (h *Handlers) GetContact(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	entry, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "contact retrieved", entry)
}

// UpdateContact godoc
// @ID          updateContact
// @Summary     Update a contact entry
// @Description Applies a partial update and revalidates the merged entry.
// @Tags        Contacts
// @Accept      json
// @Produce     json
// @Param       id   path int true "Contact ID"
// @Param       body body handlers.UpdateContactRequest true "Partial payload"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /contact/{id}/ [put]
func (h *Handlers) UpdateContact(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}
	if req.Type != nil {
		lower := strings.ToLower(*req.Type)
		req.Type = &lower
	}

	entry, err := h.contacts.Update(c.Request.Context(), id, services.ContactUpdate{
		Type:  req.Type,
		Title: req.Title,
		Value: req.Value,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "contact updated", entry)
}

// DeleteContact godoc
// @ID          deleteContact
// @Summary     Delete a contact entry
// @Tags        Contacts
// @Produce     json
// @Param       id path int true "Contact ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /contact/{id}/ [delete]
func (h *Handlers) DeleteContact(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "contact deleted", nil)
}
