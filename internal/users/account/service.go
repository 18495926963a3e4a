// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/auth"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// # Service Layer

// Service orchestrates profile reads and mutations.
type Service struct {
	accountRepository AccountRepository
	snapshots         SnapshotStore
	images            imagehost.Host
	sessionTTL        time.Duration
}

// NewService constructs a new [Service]. sessionTTL is the window used when
// a missing snapshot is re-cached by [Service.GetProfile].
func NewService(accountRepo AccountRepository, snapshots SnapshotStore, images imagehost.Host, sessionTTL time.Duration) *Service {
	return &Service{
		accountRepository: accountRepo,
		snapshots:         snapshots,
		images:            images,
		sessionTTL:        sessionTTL,
	}
}

// # Profile Read

/*
GetProfile returns the cached snapshot of the user.

Description: Falls back to the store when the snapshot is missing or the
cache fails, and re-caches a missing snapshot.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *identity.User: The profile without password hash
  - error: NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*identity.User, error) {
	snapshot, cacheErr := service.snapshots.Get(context, userID)
	if cacheErr == nil {
		return snapshot, nil
	}

	logger := ctxutil.GetLogger(context)
	missing := errors.Is(cacheErr, identity.ErrSessionNotFound)
	if !missing {
		logger.WarnContext(context, "account_snapshot_read_failed", slog.Any("error", cacheErr))
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	if missing {
		if err := service.snapshots.Save(context, user, service.sessionTTL); err != nil {
			logger.WarnContext(context, "account_snapshot_recache_failed", slog.Any("error", err))
		}
	}

	return user.Public(), nil
}

// # Profile Mutations

// UpdateInfoInput carries the optional name and email changes.
type UpdateInfoInput struct {
	Name  *string
	Email *string
}

/*
UpdateInfo applies name and email changes.

Description: Re-submitting the current email is not a conflict.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInfoInput

Returns:
  - *identity.User: The updated profile
  - error: Conflict, NotFound or storage failures
*/
func (service *Service) UpdateInfo(context context.Context, userID string, input UpdateInfoInput) (*identity.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_info_lookup_failed: %w", err)
	}

	if input.Email != nil {
		email := auth.NormalizeEmail(*input.Email)
		if email != "" && email != auth.NormalizeEmail(user.Email) {
			exists, err := service.accountRepository.ExistsByEmail(context, email)
			if err != nil {
				return nil, fmt.Errorf("account_service_update_info_lookup_failed: %w", err)
			}
			if exists {
				return nil, apperr.Conflict(auth.MsgEmailExists).WithCode(auth.CodeEmailExists)
			}
			user.Email = email
		}
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			user.Name = name
		}
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_info_failed: %w", err)
	}

	if err := service.rewriteSnapshot(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_info_updated", slog.String("user_id", user.ID))
	return user.Public(), nil
}

/*
UpdatePassword replaces the password after re-verifying the old one.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - error: Validation (no password or wrong old password) or storage failures
*/
func (service *Service) UpdatePassword(context context.Context, userID, oldPassword, newPassword string) error {
	user, err := service.accountRepository.FindByIDWithPassword(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_update_password_lookup_failed: %w", err)
	}

	if !user.HasPassword() {
		return apperr.ValidationError(MsgInvalidUser).WithCode(CodeInvalidUser)
	}
	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.ValidationError(MsgInvalidOldPassword).WithCode(CodeInvalidOldPassword)
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	if err := service.accountRepository.UpdatePassword(context, userID, newHash); err != nil {
		return fmt.Errorf("account_service_update_password_failed: %w", err)
	}

	user.UpdatedAt = time.Now()
	if err := service.rewriteSnapshot(context, user); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_password_updated", slog.String("user_id", userID))
	return nil
}

/*
UpdateAvatar uploads a new avatar and removes the previous one.

Description: The old image is deleted only after the store references the
new one. A failed deletion is logged, not returned.

Parameters:
  - context: context.Context
  - userID: string
  - payload: string (base64 data URI or bare base64)

Returns:
  - *identity.User: The updated profile
  - error: Validation (bad payload), Upstream (image host) or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID, payload string) (*identity.User, error) {
	logger := ctxutil.GetLogger(context)

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_avatar_lookup_failed: %w", err)
	}

	image, err := service.images.Upload(context, constants.FolderAvatars, payload)
	if err != nil {
		if errors.Is(err, imagehost.ErrInvalidPayload) {
			return nil, apperr.ValidationError(MsgInvalidImage).WithCause(err)
		}
		return nil, apperr.Upstream(MsgAvatarUploadFailed, fmt.Errorf("account_service_avatar_upload_failed: %w", err))
	}

	previous := user.Avatar
	user.Avatar = &image

	if err := service.accountRepository.Update(context, user); err != nil {
		if deleteErr := service.images.Delete(context, image.PublicID); deleteErr != nil {
			logger.WarnContext(context, "avatar_orphaned", slog.String("public_id", image.PublicID), slog.Any("error", deleteErr))
		}
		return nil, fmt.Errorf("account_service_update_avatar_failed: %w", err)
	}

	if previous != nil && previous.PublicID != "" {
		if err := service.images.Delete(context, previous.PublicID); err != nil {
			logger.WarnContext(context, "avatar_cleanup_failed", slog.String("public_id", previous.PublicID), slog.Any("error", err))
		}
	}

	if err := service.rewriteSnapshot(context, user); err != nil {
		return nil, err
	}

	logger.InfoContext(context, "user_avatar_updated", slog.String("user_id", user.ID))
	return user.Public(), nil
}

// rewriteSnapshot overwrites the live session. A user without a session has
// nothing to refresh.
func (service *Service) rewriteSnapshot(context context.Context, user *identity.User) error {
	err := service.snapshots.Replace(context, user)
	if err == nil || errors.Is(err, identity.ErrSessionNotFound) {
		return nil
	}
	return apperr.Upstream(auth.MsgSessionCacheUnavailable, fmt.Errorf("account_service_snapshot_rewrite_failed: %w", err))
}
