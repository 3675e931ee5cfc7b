package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/middleware"
	"github.com/jackc/pgx/v5"
)

// BaseService provides common functionality for all services
type BaseService struct {
	AccountAuthorizer portssvc.AccountAuthorizerSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeAccount returns the account when the user owns it.
func (s *BaseService) AuthorizeAccount(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	if s.AccountAuthorizer == nil {
		return nil, fmt.Errorf("no account authorizer configured")
	}
	return s.AccountAuthorizer.AuthorizeAccountAccess(ctx, userID, accountID)
}

// logUnlessNotFound logs unexpected repository errors; missing rows are an expected outcome.
func (s *BaseService) logUnlessNotFound(ctx context.Context, err error, msg string, keyvals ...any) {
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, msg, keyvals...)
	}
}

// withTx runs fn inside one database transaction and commits when fn succeeds.
// Any error rolls the whole unit back.
func withTx(ctx context.Context, tm portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	// Ignored once committed.
	defer tm.Rollback(ctx, tx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tm.Commit(ctx, tx)
}

func defaultNow() time.Time {
	return time.Now().UTC()
}
