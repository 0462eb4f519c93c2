package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/macontouch/notebook/internal/domain"
	"github.com/macontouch/notebook/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Add category",
		Description:   "Adds a category. Name and code must both be unused",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPinnedCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/pinned",
		Summary:     "List pinned categories",
		Description: "Returns the categories shown on the home screen",
		Tags:        []string{"Categories"},
	}, s.handleListPinnedCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPut,
		Path:        "/api/v1/categories/{name}",
		Summary:     "Update category",
		Description: "Replaces a category. Changing the code moves its entries to the new code",
		Tags:        []string{"Categories"},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCategory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/categories/{name}",
		Summary:       "Delete category",
		Description:   "Removes a category. Entries keep their code",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoriesResponse contains a list of categories.
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories" doc:"Categories in stored order"`
}

// CategoriesOutput wraps the category list for Huma.
type CategoriesOutput struct {
	Body CategoriesResponse
}

// CategoryOutput wraps a category for Huma.
type CategoryOutput struct {
	Body domain.Category
}

// AddCategoryInput wraps the add category request for Huma.
type AddCategoryInput struct {
	Body service.CategoryRequest
}

// UpdateCategoryInput wraps the update category request for Huma.
type UpdateCategoryInput struct {
	Name string `path:"name" doc:"Current category name"`
	Body service.CategoryRequest
}

// CategoryNameInput identifies a category by name.
type CategoryNameInput struct {
	Name string `path:"name" doc:"Category name"`
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoriesOutput, error) {
	cats, err := s.services.Category.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoriesOutput{Body: CategoriesResponse{Categories: cats}}, nil
}

func (s *Server) handleListPinnedCategories(ctx context.Context, _ *struct{}) (*CategoriesOutput, error) {
	cats, err := s.services.Category.Pinned(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoriesOutput{Body: CategoriesResponse{Categories: cats}}, nil
}

func (s *Server) handleAddCategory(ctx context.Context, input *AddCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.Add(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: *c}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.Update(ctx, pathName(ctx, input.Name), input.Body)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: *c}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *CategoryNameInput) (*struct{}, error) {
	if err := s.services.Category.Delete(ctx, pathName(ctx, input.Name)); err != nil {
		return nil, err
	}
	return nil, nil
}
