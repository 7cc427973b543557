package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// identityCacheSize bounds the token-to-identity cache. Entries are evicted
// LRU; a token never outlives its own expiry because Resolve re-validates
// the signature and claims before trusting a cache hit's doctor lookup.
const identityCacheSize = 1024

// Claims carried in issued tokens.
type Claims struct {
	DoctorID string `json:"doctor_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 bearer tokens and resolves them to the
// acting clinician.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	doctors domain.DoctorRepository
	cache   *lru.Cache[string, domain.Identity]
	nowFunc func() time.Time
	log     *logrus.Logger
}

// NewManager builds the token manager. ttl defaults to 24h, matching the
// issued-token lifetime clients expect.
func NewManager(secret string, ttl time.Duration, doctors domain.DoctorRepository, logger *logrus.Logger) (*Manager, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cache, err := lru.New[string, domain.Identity](identityCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating identity cache: %w", err)
	}
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		doctors: doctors,
		cache:   cache,
		nowFunc: time.Now,
		log:     logger,
	}, nil
}

// Issue signs a token for the doctor.
func (m *Manager) Issue(doctor *domain.Doctor) (string, error) {
	now := m.nowFunc()
	claims := Claims{
		DoctorID: doctor.ID,
		Email:    doctor.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   doctor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Resolve validates a bearer token and resolves the acting clinician. The
// doctor lookup behind a valid token is cached; signature and expiry are
// checked on every call.
func (m *Manager) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := m.verify(token)
	if err != nil {
		return nil, err
	}

	if identity, ok := m.cache.Get(token); ok {
		return &identity, nil
	}

	doctor, err := m.doctors.GetByID(ctx, claims.DoctorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("token subject unknown: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	identity := domain.Identity{
		DoctorID: doctor.ID,
		Name:     doctor.Name,
		Email:    doctor.Email,
	}
	m.cache.Add(token, identity)
	return &identity, nil
}

// verify parses the token and maps failures to the identity error kinds.
func (m *Manager) verify(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token: %w", domain.ErrUnauthorized)
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.nowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	if !parsed.Valid || claims.DoctorID == "" {
		return nil, fmt.Errorf("malformed claims: %w", domain.ErrUnauthorized)
	}
	return &claims, nil
}
