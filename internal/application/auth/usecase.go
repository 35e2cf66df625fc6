package auth

import (
	"fmt"

	"github.com/smartup/onec-supply-sync/internal/domain"
	pkgjwt "github.com/smartup/onec-supply-sync/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Config credentials and token settings for the integration user.
type Config struct {
	Username     string
	PasswordHash string // bcrypt
	JWTSecret    string
	Issuer       string
	ExpMinutes   int
}

// UseCase issues bearer tokens for the 1C side. There is exactly one
// integration user, configured by ops; end-user accounts live elsewhere.
type UseCase struct {
	cfg Config
}

// NewUseCase wires the use case.
func NewUseCase(cfg Config) *UseCase {
	return &UseCase{cfg: cfg}
}

// IssueToken exchanges the integration credentials for a signed JWT.
func (uc *UseCase) IssueToken(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrBadRequest)
	}
	if username != uc.cfg.Username || uc.cfg.PasswordHash == "" {
		return "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.cfg.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}
	return pkgjwt.Generate(uc.cfg.JWTSecret, username, uc.cfg.Issuer, uc.cfg.ExpMinutes)
}
