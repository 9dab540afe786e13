package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/repos"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

// ErrInvalidToken covers every credential failure: missing, malformed,
// expired, or rejected by Google. Handlers map it to 401.
var ErrInvalidToken = errors.New("invalid or expired token")

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleClaims are the tokeninfo fields this system cares about.
type GoogleClaims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
}

type AuthService interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleClaims, error)
	ResolveUser(ctx context.Context, claims *GoogleClaims) (*types.User, error)
}

type googleAuthService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	oauth        *oauth2.Config
	httpClient   *http.Client
	tokenInfoURL string
}

func NewGoogleAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, clientID, clientSecret, callbackURL string) AuthService {
	serviceLog := baseLog.With("service", "GoogleAuthService")
	oauthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
	return &googleAuthService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		oauth:        oauthConfig,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tokenInfoURL: googleTokenInfoURL,
	}
}

func (gs *googleAuthService) AuthCodeURL(state string) string {
	return gs.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the ID token
// carried in the token response extras.
func (gs *googleAuthService) Exchange(ctx context.Context, code string) (string, error) {
	token, err := gs.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("token response carried no id_token")
	}
	return idToken, nil
}

// VerifyIDToken checks the credential against Google's tokeninfo endpoint.
// A locally-parseable expiry in the past short-circuits the network call.
func (gs *googleAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleClaims, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gs.tokenInfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}
	resp, err := gs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var verified GoogleClaims
	if err := json.NewDecoder(resp.Body).Decode(&verified); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}
	if verified.Sub == "" {
		return nil, ErrInvalidToken
	}
	return &verified, nil
}

// ResolveUser provisions the user row on first sight and refreshes profile
// fields on later logins.
func (gs *googleAuthService) ResolveUser(ctx context.Context, claims *GoogleClaims) (*types.User, error) {
	user := &types.User{
		GoogleID:  claims.Sub,
		Email:     claims.Email,
		FirstName: claims.GivenName,
	}
	if err := gs.userRepo.Upsert(ctx, nil, user); err != nil {
		gs.log.Error("Failed to upsert user", "google_id", claims.Sub, "error", err)
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}
