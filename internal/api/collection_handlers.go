package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
	domainerrors "github.com/scriptoriumapp/scriptorium-server/internal/errors"
)

func (s *Server) registerCollectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCollections",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections",
		Summary:     "List collections",
		Description: "Returns all collections with derived member counts",
		Tags:        []string{"Collections"},
	}, s.handleListCollections)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCollection",
		Method:        http.MethodPost,
		Path:          "/api/v1/collections",
		Summary:       "Create collection",
		Tags:          []string{"Collections"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCollection",
		Method:        http.MethodDelete,
		Path:          "/api/v1/collections/{name}",
		Summary:       "Delete collection",
		Description:   "Removes the collection from the registry and strips it from every book",
		Tags:          []string{"Collections"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameCollection",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections/rename",
		Summary:     "Rename collection",
		Description: "Renames a collection and rewrites every book referencing it",
		Tags:        []string{"Collections"},
	}, s.handleRenameCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCollectionBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{name}/books",
		Summary:     "Get collection books",
		Tags:        []string{"Collections"},
	}, s.handleGetCollectionBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCollectionBooks",
		Method:      http.MethodPut,
		Path:        "/api/v1/collections/{name}/books",
		Summary:     "Set collection membership",
		Description: "Replaces the collection's membership with exactly the given book IDs",
		Tags:        []string{"Collections"},
	}, s.handleSetCollectionBooks)
}

// === DTOs ===

type CollectionResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count" doc:"Number of books in the collection"`
}

type ListCollectionsResponse struct {
	Collections []CollectionResponse `json:"collections"`
}

type ListCollectionsOutput struct {
	Body ListCollectionsResponse
}

type CreateCollectionRequest struct {
	Name string `json:"name" validate:"required,max=30" doc:"Collection name"`
}

type CreateCollectionInput struct {
	Body CreateCollectionRequest
}

type CollectionOutput struct {
	Body CollectionResponse
}

type DeleteCollectionInput struct {
	Name string `path:"name" doc:"Collection name"`
}

type RenameCollectionRequest struct {
	Old string `json:"old" validate:"required" doc:"Current name"`
	New string `json:"new" validate:"required,max=30" doc:"New name"`
}

type RenameCollectionInput struct {
	Body RenameCollectionRequest
}

type RenameCollectionResponse struct {
	Name         string `json:"name"`
	BooksChanged int    `json:"booksChanged"`
}

type RenameCollectionOutput struct {
	Body RenameCollectionResponse
}

type CollectionBooksInput struct {
	Name string `path:"name" doc:"Collection name"`
}

type SetCollectionBooksRequest struct {
	BookIDs []string `json:"bookIds" doc:"Exact member set; books not listed are removed"`
}

type SetCollectionBooksInput struct {
	Name string `path:"name" doc:"Collection name"`
	Body SetCollectionBooksRequest
}

type SetCollectionBooksResponse struct {
	BooksChanged int `json:"booksChanged"`
}

type SetCollectionBooksOutput struct {
	Body SetCollectionBooksResponse
}

// === Handlers ===

func (s *Server) handleListCollections(_ context.Context, _ *struct{}) (*ListCollectionsOutput, error) {
	names := s.collections.List()
	books := s.books.List()

	resp := make([]CollectionResponse, len(names))
	for i, name := range names {
		count := 0
		for _, b := range books {
			if b.InCollection(name) {
				count++
			}
		}
		resp[i] = CollectionResponse{Name: name, Count: count}
	}

	return &ListCollectionsOutput{Body: ListCollectionsResponse{Collections: resp}}, nil
}

func (s *Server) handleCreateCollection(_ context.Context, input *CreateCollectionInput) (*CollectionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if !s.collections.Add(input.Body.Name) {
		return nil, domainerrors.AlreadyExists("collection already exists")
	}

	return &CollectionOutput{Body: CollectionResponse{Name: input.Body.Name}}, nil
}

func (s *Server) handleDeleteCollection(_ context.Context, input *DeleteCollectionInput) (*struct{}, error) {
	// Membership first, then the registry entry; the stores are not
	// transactionally linked.
	s.books.SetCollectionMembership(input.Name, nil)
	s.collections.Delete(input.Name)
	return nil, nil
}

func (s *Server) handleRenameCollection(_ context.Context, input *RenameCollectionInput) (*RenameCollectionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if !s.collections.Rename(input.Body.Old, input.Body.New) {
		return nil, domainerrors.Conflict("a collection with that name already exists")
	}

	changed := s.books.RenameCollectionReferences(input.Body.Old, input.Body.New)
	return &RenameCollectionOutput{Body: RenameCollectionResponse{
		Name:         input.Body.New,
		BooksChanged: changed,
	}}, nil
}

func (s *Server) handleGetCollectionBooks(_ context.Context, input *CollectionBooksInput) (*BookListOutput, error) {
	if !s.collections.Contains(input.Name) {
		return nil, domainerrors.NotFound("collection not found")
	}

	var books []*domain.Book
	for _, b := range s.books.List() {
		if b.InCollection(input.Name) {
			books = append(books, b)
		}
	}

	return &BookListOutput{Body: BookListResponse{Books: books, Total: len(books)}}, nil
}

func (s *Server) handleSetCollectionBooks(_ context.Context, input *SetCollectionBooksInput) (*SetCollectionBooksOutput, error) {
	if !s.collections.Contains(input.Name) {
		return nil, domainerrors.NotFound("collection not found")
	}

	changed := s.books.SetCollectionMembership(input.Name, input.Body.BookIDs)
	return &SetCollectionBooksOutput{Body: SetCollectionBooksResponse{BooksChanged: changed}}, nil
}
