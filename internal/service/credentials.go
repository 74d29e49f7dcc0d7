package service

import (
	"context"

	"github.com/zyvex/zyvex-go/internal/auth"
	"github.com/zyvex/zyvex-go/internal/validation"
)

// CredentialsResult is the secret-free view of a creator's gateway keys.
// The secret never leaves the store through any read path.
type CredentialsResult struct {
	UserID string `json:"userId"`
	KeyID  string `json:"keyId"`
}

// SaveCredentials upserts the caller's gateway key pair. Submitting twice
// overwrites, never duplicates.
func (s *Service) SaveCredentials(ctx context.Context, user *auth.User, req validation.CredentialsRequest) (*CredentialsResult, *Error) {
	if user == nil || user.ID == "" {
		return nil, &Error{Code: CodeAuth, Message: "User not authenticated"}
	}
	if req.KeyID == "" || req.KeySecret == "" {
		return nil, &Error{Code: CodeValidation, Message: "Key ID and Key Secret are required"}
	}

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	saved, err := s.creds.Upsert(cctx, user.ID, req.KeyID, req.KeySecret)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Error saving credentials")
	}

	return &CredentialsResult{UserID: saved.UserID, KeyID: saved.KeyID}, nil
}

// GetCredentials returns the caller's configured key id, without the secret.
func (s *Service) GetCredentials(ctx context.Context, user *auth.User) (*CredentialsResult, *Error) {
	if user == nil || user.ID == "" {
		return nil, &Error{Code: CodeAuth, Message: "User not authenticated"}
	}

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	creds, err := s.creds.Get(cctx, user.ID)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Database connection failed")
	}
	if creds == nil {
		return nil, &Error{Code: CodeNotFound, Message: "No Razorpay credentials found"}
	}

	return &CredentialsResult{UserID: creds.UserID, KeyID: creds.KeyID}, nil
}
