package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/models"
	"junkmart/web/internal/storage"
	"junkmart/web/internal/validate"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store persists the session token and the last-known user snapshot. It holds
// no reactive state; see Session for that.
type Store struct {
	storage storage.Store
	api     *apiclient.Client
	log     zerolog.Logger

	// writeMu serializes session writes and clears so a refresh can never
	// write back a session that Logout already removed.
	writeMu sync.Mutex
}

func NewStore(s storage.Store, api *apiclient.Client, log zerolog.Logger) *Store {
	return &Store{
		storage: s,
		api:     api,
		log:     log,
	}
}

// Token returns the stored token, or "" when there is none.
func (s *Store) Token(ctx context.Context) (string, error) {
	var token string
	if err := storage.GetJSON(ctx, s.storage, KeyToken, &token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// IsAuthenticated reports whether a token is stored. No round trip is made.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("read token failed")
		return false
	}
	return token != ""
}

// StoredUser returns the last-known user snapshot, or nil when it is absent
// or unreadable.
func (s *Store) StoredUser(ctx context.Context) *models.UserRecord {
	var user models.UserRecord
	if err := storage.GetJSON(ctx, s.storage, KeyUser, &user); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Msg("stored user unreadable")
		}
		return nil
	}
	return &user
}

// Client returns an API client authorized with the stored token, or an
// anonymous one when no token is stored.
func (s *Store) Client(ctx context.Context) *apiclient.Client {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return s.api
	}
	return s.api.WithToken(token)
}

func (s *Store) LoginAs(ctx context.Context, role models.UserRole, email, password string) (*models.UserRecord, error) {
	if !role.Valid() {
		return nil, ErrRoleNotSupported
	}
	creds := apiclient.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, role, creds)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, resp.Token, resp.User); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("role", string(role)).
		Str("user_id", resp.User.ID).
		Str("user", resp.User.DisplayName()).
		Msg("logged in")
	return resp.User, nil
}

type RegisterResult struct {
	User *models.UserRecord
	// Pending is set when the backend withheld a token: the account exists
	// but waits for admin review and no session was stored.
	Pending bool
}

func (s *Store) RegisterAs(ctx context.Context, role models.UserRole, req apiclient.RegisterRequest) (RegisterResult, error) {
	if !role.CanRegister() {
		return RegisterResult{}, ErrRoleNotSupported
	}
	if err := validateRegistration(role, &req); err != nil {
		return RegisterResult{}, err
	}

	resp, err := s.api.Register(ctx, role, req)
	if err != nil {
		return RegisterResult{}, err
	}

	if resp.Token == "" {
		s.log.Info().
			Str("role", string(role)).
			Str("user_id", resp.User.ID).
			Str("user", resp.User.DisplayName()).
			Msg("registered, awaiting approval")
		return RegisterResult{User: resp.User, Pending: true}, nil
	}

	if err := s.persist(ctx, resp.Token, resp.User); err != nil {
		return RegisterResult{}, err
	}
	s.log.Info().
		Str("role", string(role)).
		Str("user_id", resp.User.ID).
		Str("user", resp.User.DisplayName()).
		Msg("registered")
	return RegisterResult{User: resp.User}, nil
}

// Logout tells the backend on a best-effort basis, then always clears the
// stored session. Only storage failures are returned.
func (s *Store) Logout(ctx context.Context) error {
	token, err := s.Token(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("read token before logout failed")
	}
	if token != "" {
		if err := s.api.WithToken(token).Logout(ctx); err != nil {
			s.log.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var errs []error
	if err := s.storage.Clear(ctx, KeyToken); err != nil {
		errs = append(errs, err)
	}
	if err := s.storage.Clear(ctx, KeyUser); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetCurrentUser fetches the fresh profile with the stored token. A success
// proves the token is still accepted and refreshes the stored session, token
// and snapshot together so both keys share one expiry. If the token was
// replaced or cleared while the call was in flight, nothing is written and
// ErrSessionChanged is returned.
func (s *Store) GetCurrentUser(ctx context.Context) (*models.UserRecord, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}

	user, err := s.api.WithToken(token).Me(ctx)
	if err != nil {
		return nil, err
	}
	if user.Role == "" {
		if stored := s.StoredUser(ctx); stored != nil {
			user.Role = stored.Role
		} else if info, err := InspectToken(token); err == nil {
			user.Role = models.UserRole(info.Role)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if current != token {
		return nil, ErrSessionChanged
	}
	if err := s.write(ctx, token, user); err != nil {
		s.log.Warn().Err(err).Msg("refresh stored session failed")
	}
	return user, nil
}

func (s *Store) persist(ctx context.Context, token string, user *models.UserRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write(ctx, token, user)
}

// write stores token and user; the caller holds writeMu.
func (s *Store) write(ctx context.Context, token string, user *models.UserRecord) error {
	if err := storage.SetJSON(ctx, s.storage, KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := storage.SetJSON(ctx, s.storage, KeyUser, user); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func validateRegistration(role models.UserRole, req *apiclient.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.BusinessName = strings.TrimSpace(req.BusinessName)

	if role == models.UserRoleOwner {
		return validate.StructExcept(*req, "Name")
	}
	return validate.StructExcept(*req, "BusinessName", "Address")
}
