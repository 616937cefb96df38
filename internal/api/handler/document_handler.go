package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/docvault/document-system/internal/api/metrics"
	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

// DocumentHandler handles HTTP requests for document operations.
type DocumentHandler struct {
	service ports.DocumentService
}

func NewDocumentHandler(service ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Create handles POST /documents.
//
// @Summary      Create a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDocumentRequest  true  "Document"
// @Success      201   {object}  documentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /documents [post]
func (h *DocumentHandler) Create(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	var req createDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	doc, err := h.service.Create(c.Request().Context(), viewer, ports.CreateDocumentInput{
		Title:   req.Title,
		Content: req.Content,
		Access:  domain.Access(req.Access),
	})
	if err != nil {
		return err
	}

	metrics.DocumentsCreatedTotal.WithLabelValues(string(doc.Access)).Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/documents/"+doc.ID)
	return c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

// List handles GET /documents.
//
// @Summary      List visible documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        owner   query     string  false  "Owner user ID"
// @Param        q       query     string  false  "Case-insensitive title search"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  listDocumentsResponse
// @Failure      400     {object}  errorResponse
// @Router       /documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListDocumentsInput{
		Viewer:  viewer,
		OwnerID: c.QueryParam("owner"),
		Search:  c.QueryParam("q"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	items := make([]documentResponse, 0, len(res.Items))
	for _, d := range res.Items {
		items = append(items, toDocumentResponse(d))
	}
	return c.JSON(http.StatusOK, listDocumentsResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /documents/:id.
//
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  documentResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Get(c.Request().Context(), viewer, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDocumentResponse(doc))
}

// Update handles PUT /documents/:id.
//
// @Summary      Update a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Document ID"
// @Param        body  body      updateDocumentRequest  true  "Fields to change"
// @Success      200   {object}  documentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /documents/{id} [put]
func (h *DocumentHandler) Update(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	var req updateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.UpdateDocumentInput{Title: req.Title, Content: req.Content}
	if req.Access != nil {
		access := domain.Access(*req.Access)
		in.Access = &access
	}

	doc, err := h.service.Update(c.Request().Context(), viewer, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDocumentResponse(doc))
}

// Delete handles DELETE /documents/:id.
//
// @Summary      Delete a document
// @Tags         documents
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), viewer, c.Param("id")); err != nil {
		return err
	}
	metrics.DocumentsDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// intQuery parses an optional integer query parameter. Missing means 0.
func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
