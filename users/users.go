// Package users reads and updates the signed-in student's profile.
package users

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/uniassist/api"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/sessions"
)

// Group numbers are exactly six digits.
const (
	GroupNumberMin = 100000
	GroupNumberMax = 999999
)

// API is the authenticated backend transport.
type API interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
}

type Service struct {
	api      API
	sessions *sessions.Store
}

func NewService(api API, store *sessions.Store) *Service {
	return &Service{api: api, sessions: store}
}

// ValidateGroupNumber accepts nil, which clears the group, or a 6-digit
// positive number.
func ValidateGroupNumber(group *int) error {
	if group == nil {
		return nil
	}
	if *group < GroupNumberMin || *group > GroupNumberMax {
		return fmt.Errorf("%w: group number must have 6 digits, got %d", apperrors.ErrInvalidInput, *group)
	}
	return nil
}

// ParseGroupNumber parses and validates a group number typed by the user.
func ParseGroupNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || len(s) != 6 {
		return 0, fmt.Errorf("%w: group number must have 6 digits, got %q", apperrors.ErrInvalidInput, s)
	}
	return n, ValidateGroupNumber(&n)
}

// Me fetches the profile from the backend and stores it with the session.
func (s *Service) Me(ctx context.Context) (*sessions.UserProfile, error) {
	var user sessions.UserProfile
	if err := s.api.DoJSON(ctx, http.MethodGet, api.RouteUserMe, nil, &user); err != nil {
		return nil, apperrors.Wrapf(err, "get profile")
	}
	if err := s.sessions.SetUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateGroup sets or, with nil, clears the group number. Invalid numbers are
// rejected before any network call.
func (s *Service) UpdateGroup(ctx context.Context, group *int) (*sessions.UserProfile, error) {
	if err := ValidateGroupNumber(group); err != nil {
		return nil, err
	}

	var user sessions.UserProfile
	if err := s.api.DoJSON(ctx, http.MethodPut, api.RouteUserMeGroup, api.GroupUpdate{GroupNumber: group}, &user); err != nil {
		return nil, apperrors.Wrapf(err, "update group")
	}
	if err := s.sessions.SetUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
