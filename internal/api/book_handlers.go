package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
	domainerrors "github.com/scriptoriumapp/scriptorium-server/internal/errors"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns all books, optionally filtered by status, shelf, or a text query",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a book to the library",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Merges the provided fields over the book",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgress",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Update reading progress",
		Description: "Sets pagesRead, clamped to the book's page count",
		Tags:        []string{"Books"},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "incrementProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/progress/increment",
		Summary:     "Increment reading progress",
		Tags:        []string{"Books"},
	}, s.handleIncrementProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToCollection",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/collections/{name}",
		Summary:     "Add book to collection",
		Tags:        []string{"Books"},
	}, s.handleAddBookToCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromCollection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/collections/{name}",
		Summary:     "Remove book from collection",
		Tags:        []string{"Books"},
	}, s.handleRemoveBookFromCollection)
}

// === DTOs ===

type ListBooksInput struct {
	Status string `query:"status" doc:"Filter by reading status"`
	Shelf  string `query:"shelf" doc:"Filter by primary shelf (library or wishlist)"`
	Query  string `query:"q" doc:"Case-insensitive substring match over title, author, and ISBN"`
}

type BookListResponse struct {
	Books []*domain.Book `json:"books"`
	Total int            `json:"total"`
}

type BookListOutput struct {
	Body BookListResponse
}

type CreateBookInput struct {
	CheckDuplicate bool `query:"check_duplicate" doc:"Reject with 409 when a likely duplicate exists"`
	Body           domain.BookDraft
}

type BookOutput struct {
	Body domain.Book
}

type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body domain.BookUpdate
}

type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type UpdateProgressRequest struct {
	PagesRead int `json:"pagesRead" doc:"Pages read so far"`
}

type UpdateProgressInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateProgressRequest
}

type IncrementProgressRequest struct {
	Delta int `json:"delta" doc:"Pages to add to the current progress"`
}

type IncrementProgressInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body IncrementProgressRequest
}

type BookCollectionInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Name string `path:"name" doc:"Collection name"`
}

// === Handlers ===

func (s *Server) handleListBooks(_ context.Context, input *ListBooksInput) (*BookListOutput, error) {
	var books []*domain.Book
	switch {
	case input.Query != "":
		books = s.books.Search(input.Query)
	case input.Status != "":
		status := domain.Status(input.Status)
		if !status.IsValid() {
			return nil, domainerrors.Validation("unknown status: " + input.Status)
		}
		books = s.books.ListByStatus(status)
	case input.Shelf != "":
		books = s.books.ListByShelf(domain.Shelf(input.Shelf))
	default:
		books = s.books.List()
	}

	return &BookListOutput{Body: BookListResponse{Books: books, Total: len(books)}}, nil
}

func (s *Server) handleCreateBook(_ context.Context, input *CreateBookInput) (*BookOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if input.CheckDuplicate {
		if dup := s.books.FindDuplicate(input.Body.Title, input.Body.Author, input.Body.ISBN); dup != nil {
			conflict := domainerrors.Conflict("a matching book already exists")
			conflict.Details = dup
			return nil, conflict
		}
	}

	book := s.books.Add(input.Body)
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleGetBook(_ context.Context, input *GetBookInput) (*BookOutput, error) {
	book := s.books.GetByID(input.ID)
	if book == nil {
		return nil, domainerrors.NotFound("book not found")
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleUpdateBook(_ context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	// The repository treats an unknown id as a silent no-op; the edge turns
	// the read-back miss into a 404.
	if s.books.GetByID(input.ID) == nil {
		return nil, domainerrors.NotFound("book not found")
	}

	s.books.Update(input.ID, input.Body)
	return &BookOutput{Body: *s.books.GetByID(input.ID)}, nil
}

func (s *Server) handleDeleteBook(_ context.Context, input *DeleteBookInput) (*struct{}, error) {
	// Deleting an absent book is still a 204.
	s.books.Delete(input.ID)
	return nil, nil
}

func (s *Server) handleUpdateProgress(_ context.Context, input *UpdateProgressInput) (*BookOutput, error) {
	if s.books.GetByID(input.ID) == nil {
		return nil, domainerrors.NotFound("book not found")
	}

	s.books.UpdateProgress(input.ID, input.Body.PagesRead)
	return &BookOutput{Body: *s.books.GetByID(input.ID)}, nil
}

func (s *Server) handleIncrementProgress(_ context.Context, input *IncrementProgressInput) (*BookOutput, error) {
	if s.books.GetByID(input.ID) == nil {
		return nil, domainerrors.NotFound("book not found")
	}

	s.books.IncrementPages(input.ID, input.Body.Delta)
	return &BookOutput{Body: *s.books.GetByID(input.ID)}, nil
}

func (s *Server) handleAddBookToCollection(_ context.Context, input *BookCollectionInput) (*BookOutput, error) {
	if !s.collections.Contains(input.Name) {
		return nil, domainerrors.NotFound("collection not found")
	}
	if s.books.GetByID(input.ID) == nil {
		return nil, domainerrors.NotFound("book not found")
	}

	s.books.AddToCollection(input.ID, input.Name)
	return &BookOutput{Body: *s.books.GetByID(input.ID)}, nil
}

func (s *Server) handleRemoveBookFromCollection(_ context.Context, input *BookCollectionInput) (*BookOutput, error) {
	if s.books.GetByID(input.ID) == nil {
		return nil, domainerrors.NotFound("book not found")
	}

	s.books.RemoveFromCollection(input.ID, input.Name)
	return &BookOutput{Body: *s.books.GetByID(input.ID)}, nil
}
