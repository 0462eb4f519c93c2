package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/macontouch/notebook/internal/domain"
	"github.com/macontouch/notebook/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get profile",
		Description: "Returns the registered user",
		Tags:        []string{"Profile"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID:   "registerProfile",
		Method:        http.MethodPost,
		Path:          "/api/v1/profile",
		Summary:       "Register",
		Description:   "Stores the local user profile, replacing any previous one",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegisterProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStartupRoute",
		Method:      http.MethodGet,
		Path:        "/api/v1/startup",
		Summary:     "Startup route",
		Description: "Names the first screen to show: auth, categories or home",
		Tags:        []string{"Profile"},
	}, s.handleStartupRoute)
}

// === DTOs ===

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body domain.UserProfile
}

// RegisterProfileInput wraps the register request for Huma.
type RegisterProfileInput struct {
	Body service.RegisterRequest
}

// StartupResponse names the first screen.
type StartupResponse struct {
	Route domain.StartupRoute `json:"route" enum:"auth,categories,home" doc:"First screen"`
}

// StartupOutput wraps the startup response for Huma.
type StartupOutput struct {
	Body StartupResponse
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	p, err := s.services.Profile.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: *p}, nil
}

func (s *Server) handleRegisterProfile(ctx context.Context, input *RegisterProfileInput) (*ProfileOutput, error) {
	p, err := s.services.Profile.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: *p}, nil
}

func (s *Server) handleStartupRoute(ctx context.Context, _ *struct{}) (*StartupOutput, error) {
	route, err := s.services.Profile.StartupRoute(ctx)
	if err != nil {
		return nil, err
	}
	return &StartupOutput{Body: StartupResponse{Route: route}}, nil
}
