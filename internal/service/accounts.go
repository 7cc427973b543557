package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/auth"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// TokenIssuer signs a bearer token for a clinician account.
type TokenIssuer interface {
	Issue(doctor *domain.Doctor) (string, error)
}

// AccountService registers clinicians and authenticates logins.
type AccountService struct {
	doctors domain.DoctorRepository
	tokens  TokenIssuer
	log     *logrus.Logger
}

// NewAccountService creates the account service.
func NewAccountService(doctors domain.DoctorRepository, tokens TokenIssuer, logger *logrus.Logger) *AccountService {
	return &AccountService{doctors: doctors, tokens: tokens, log: logger}
}

// Session is a successful authentication outcome.
type Session struct {
	Token  string          `json:"token"`
	Doctor domain.Identity `json:"doctor"`
}

// Signup creates an account with a hashed credential and signs the caller in.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	doctor := &domain.Doctor{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           strings.TrimSpace(name),
		CredentialHash: hash,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.doctors.Insert(ctx, doctor); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"doctor_id": doctor.ID,
		"email":     doctor.Email,
	}).Info("Clinician registered")
	return s.startSession(doctor)
}

// Login verifies credentials and signs the caller in. A wrong password and an
// unknown email both surface as unauthorized so the response does not reveal
// which accounts exist.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		s.log.WithField("email", email).Warn("Login attempt for unknown account")
		return nil, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
	}
	if !auth.CheckPassword(doctor.CredentialHash, password) {
		s.log.WithField("email", email).Warn("Login attempt with wrong password")
		return nil, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
	}
	return s.startSession(doctor)
}

func (s *AccountService) startSession(doctor *domain.Doctor) (*Session, error) {
	token, err := s.tokens.Issue(doctor)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}
	return &Session{
		Token: token,
		Doctor: domain.Identity{
			DoctorID: doctor.ID,
			Name:     doctor.Name,
			Email:    doctor.Email,
		},
	}, nil
}
