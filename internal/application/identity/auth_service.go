package identity

import (
	"context"
	"errors"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/identity"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	memberRepo agency.MemberRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	memberRepo agency.MemberRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates a user account
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email uniqueness", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to register user", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	user, err := identity.NewUser(email, input.Password, input.FullName)
	if err != nil {
		return nil, err
	}
	if input.Phone != "" {
		phone := input.Phone
		if err := user.UpdateProfile(nil, &phone, nil); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to register user", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// Login authenticates a user and returns tokens scoped to one membership
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, shared.ErrInvalidCredentials
		}
		s.logger.Error("Failed to load user for login", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to log in", err)
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.Active {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewForbiddenError("Account has been deactivated")
	}

	member, err := s.resolveMembership(ctx, user.ID, input.AgencyID)
	if err != nil {
		return nil, err
	}

	result, err := s.issue(user, member)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// login still succeeds
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return result, nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
// The membership is looked up again so role changes take effect.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to refresh token", err)
	}
	if !user.Active {
		return nil, shared.NewForbiddenError("Account has been deactivated")
	}

	var member *agency.Member
	agencyID, err := claims.GetAgencyUUID()
	if err == nil && agencyID != uuid.Nil {
		member, err = s.resolveMembership(ctx, user.ID, &agencyID)
		if err != nil && errors.Is(err, shared.ErrForbidden) {
			// membership was revoked since login
			member, err = s.resolveMembership(ctx, user.ID, nil)
		}
	} else {
		member, err = s.resolveMembership(ctx, user.ID, nil)
	}
	if err != nil {
		return nil, err
	}

	result, err := s.issue(user, member)
	if err != nil {
		return nil, err
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed", zap.String("user_id", user.ID.String()))
	return result, nil
}

// Logout revokes the current access token until it expires
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist access token", zap.Error(err))
			return shared.WrapDomainError("INTERNAL_ERROR", "Failed to log out", err)
		}
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.UserID == input.UserID.String() {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to blacklist refresh token", zap.Error(err))
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the user and all their memberships
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID, currentMemberID uuid.UUID) (*CurrentUserResult, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load memberships", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load memberships", err)
	}

	result := &CurrentUserResult{
		User:        ToUserInfo(user),
		Memberships: make([]MembershipInfo, 0, len(members)),
	}
	for i := range members {
		result.Memberships = append(result.Memberships, ToMembershipInfo(&members[i]))
	}
	if currentMemberID != uuid.Nil {
		result.CurrentMemberID = &currentMemberID
	}
	return result, nil
}

// UpdateProfile changes name, phone and Telegram chat id
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.FullName, input.Phone, input.TelegramChatID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to update profile", err)
	}

	info := ToUserInfo(user)
	return &info, nil
}

// ChangePassword sets a new password and revokes every token issued so far
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to update password", err)
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
	}

	s.logger.Info("User password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load user", err)
	}
	return user, nil
}

// resolveMembership picks the membership for agencyID, or the first active one when nil.
// A user without memberships gets nil.
func (s *AuthService) resolveMembership(ctx context.Context, userID uuid.UUID, agencyID *uuid.UUID) (*agency.Member, error) {
	members, err := s.memberRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load memberships", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load memberships", err)
	}

	for i := range members {
		m := &members[i]
		if !m.Active {
			continue
		}
		if agencyID == nil || m.AgencyID == *agencyID {
			return m, nil
		}
	}
	if agencyID != nil {
		return nil, shared.NewForbiddenError("You are not a member of this agency")
	}
	return nil, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to validate token", err)
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Failed to check user token invalidation", zap.Error(err))
			return shared.WrapDomainError("INTERNAL_ERROR", "Failed to validate token", err)
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func (s *AuthService) issue(user *identity.User, member *agency.Member) (*AuthResult, error) {
	input := auth.GenerateTokenInput{UserID: user.ID, Email: user.Email}
	if member != nil {
		input.AgencyID = member.AgencyID
		input.MemberID = member.ID
		input.Role = string(member.Role)
	}

	pair, err := s.jwtService.GenerateTokenPair(input)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens", err)
	}

	result := &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}
	if member != nil {
		info := ToMembershipInfo(member)
		result.Membership = &info
	}
	return result, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingUserID):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
