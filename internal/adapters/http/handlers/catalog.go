package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// CatalogHandler serves the book catalog.
type CatalogHandler struct {
	catalog *app.CatalogService
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(catalog *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListBooks handles GET /api/v1/books.
//
// @Summary List the catalog
// @Tags books
// @Produce json
// @Success 200 {array} dto.BookResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	books, err := h.catalog.ListBooks(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// PageBooks handles GET /api/v1/catalog?limit=&cursor=, the catalog in
// ID order one page at a time.
//
// @Summary Page through the catalog
// @Tags books
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/catalog [get]
func (h *CatalogHandler) PageBooks(c *gin.Context) {
	var req dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	books, err := h.catalog.ListBooks(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	page, err := dto.NewBookPage(books, &req)
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateBook handles POST /api/v1/books.
//
// @Summary Add a book to the catalog
// @Tags books
// @Accept json
// @Produce json
// @Param book body dto.CreateBookRequest true "New book"
// @Success 201 {object} dto.CreatedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/books [post]
func (h *CatalogHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	id, err := h.catalog.AddBook(c.Request.Context(), req.ToInput())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatedResponse{
		ID:      id,
		Message: "Book '" + strings.TrimSpace(req.Title) + "' has been successfully added to the catalog.",
	})
}

// GetBook handles GET /api/v1/books/:id.
//
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} dto.BookResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/books/{id} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	book, err := h.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookResponse(book))
}

// Search handles GET /api/v1/search?q=&type=. Type defaults to title;
// an unknown type yields an empty list.
//
// @Summary Search the catalog
// @Tags books
// @Produce json
// @Param q query string true "Search term"
// @Param type query string false "title, author or isbn"
// @Success 200 {array} dto.BookResponse
// @Router /api/v1/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	kind := domain.SearchKind(strings.ToLower(strings.TrimSpace(req.Type)))
	if kind == "" {
		kind = domain.SearchByTitle
	}

	books, err := h.catalog.SearchBooks(c.Request.Context(), req.Query, kind)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// RegisterRoutes registers catalog routes on rg.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books", h.ListBooks)
	rg.POST("/books", h.CreateBook)
	rg.GET("/books/:id", h.GetBook)
	rg.GET("/search", h.Search)
	rg.GET("/catalog", h.PageBooks)
}
