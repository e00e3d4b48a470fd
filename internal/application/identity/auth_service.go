package identity

import (
	"context"
	"errors"
	"time"

	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/auth"
	"github.com/mfgops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var (
	ErrTokenExpired    = shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	ErrTokenInvalid    = shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	ErrTokenRevoked    = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrTokenMaxRefresh = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please sign in again")
	ErrTenantInactive  = shared.NewDomainError("TENANT_INACTIVE", "This workspace has been deactivated")
)

// AuthService signs users in with one-time passcodes and manages their tokens
type AuthService struct {
	userRepo   identity.UserRepository
	tenantRepo identity.TenantRepository
	otpStore   identity.OTPStore
	otpSender  identity.OTPSender
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     config.OTPConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tenantRepo identity.TenantRepository,
	otpStore identity.OTPStore,
	otpSender identity.OTPSender,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	cfg config.OTPConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		otpStore:   otpStore,
		otpSender:  otpSender,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestOTP sends a fresh code to the phone. A new code replaces the
// pending one, but not before the resend interval has passed.
func (s *AuthService) RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResponse, error) {
	phone, err := identity.NormalizePhone(req.Phone, s.config.DefaultCountryCode)
	if err != nil {
		return nil, err
	}
	now := s.now()

	pending, err := s.otpStore.Get(ctx, phone)
	switch {
	case err == nil:
		if now.Before(pending.CreatedAt.Add(s.config.ResendInterval)) {
			return nil, identity.ErrOTPTooSoon
		}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	code, err := identity.GenerateOTPCode(s.config.Length)
	if err != nil {
		return nil, err
	}
	challenge, err := identity.NewOTPChallenge(phone, code, s.config.TTL, s.config.MaxAttempts, now)
	if err != nil {
		return nil, err
	}
	if err := s.otpStore.Save(ctx, challenge, s.config.TTL); err != nil {
		return nil, err
	}
	if err := s.otpSender.Send(ctx, phone, code); err != nil {
		s.logger.Error("Failed to send OTP", zap.String("phone", phone), zap.Error(err))
		_ = s.otpStore.Delete(ctx, phone)
		return nil, shared.WrapDomainError("OTP_SEND_FAILED", "Could not send the code, try again", err)
	}

	s.logger.Info("OTP requested", zap.String("phone", phone))
	return &RequestOTPResponse{
		Phone:       phone,
		ExpiresAt:   challenge.ExpiresAt,
		ResendAfter: now.Add(s.config.ResendInterval),
	}, nil
}

// VerifyOTP checks the code and signs the user in. A phone with no user yet
// gets a new tenant with itself as owner.
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResponse, error) {
	phone, err := identity.NormalizePhone(req.Phone, s.config.DefaultCountryCode)
	if err != nil {
		return nil, err
	}
	now := s.now()

	challenge, err := s.otpStore.CountAttempt(ctx, phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrOTPExpired
		}
		return nil, err
	}

	if err := challenge.Verify(req.Code, now); err != nil {
		s.logger.Warn("OTP verification failed",
			zap.String("phone", phone),
			zap.Int("remaining_attempts", challenge.Remaining()),
			zap.Error(err),
		)
		if !errors.Is(err, identity.ErrOTPInvalid) {
			_, _ = s.otpStore.Consume(ctx, phone, challenge.CodeHash)
		}
		return nil, err
	}
	// Two requests with the right code may both get here; one takes it.
	consumed, err := s.otpStore.Consume(ctx, phone, challenge.CodeHash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, identity.ErrOTPExpired
	}

	user, created, err := s.findOrProvision(ctx, phone, req.WorkspaceName, now)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(now)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Phone:    user.Phone,
		Role:     user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, shared.WrapDomainError("TOKEN_ERROR", "Failed to generate tokens", err)
	}

	s.logger.Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.Bool("new_tenant", created),
	)
	return &LoginResponse{
		Token:     toTokenResponse(pair),
		User:      ToUserResponse(user),
		NewTenant: created,
	}, nil
}

func (s *AuthService) findOrProvision(ctx context.Context, phone, workspaceName string, now time.Time) (*identity.User, bool, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err == nil {
		tenant, err := s.tenantRepo.FindByID(ctx, user.TenantID)
		if err != nil {
			return nil, false, err
		}
		if !tenant.IsActive() {
			return nil, false, ErrTenantInactive
		}
		return user, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	if workspaceName == "" {
		workspaceName = phone
	}
	tenant, err := identity.NewTenant(workspaceName, now)
	if err != nil {
		return nil, false, err
	}
	owner, err := identity.NewUser(tenant.ID, phone, identity.RoleOwner, now)
	if err != nil {
		return nil, false, err
	}
	if err := s.tenantRepo.CreateWithOwner(ctx, tenant, owner); err != nil {
		return nil, false, err
	}
	owner.ClearDomainEvents()

	s.logger.Info("Tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("owner_id", owner.ID.String()),
	)
	return owner, true, nil
}

// Refresh rotates a refresh token. The old one is revoked so it can only be used once.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	pair, _, err := s.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return nil, err
	}

	resp := toTokenResponse(pair)
	return &resp, nil
}

// Logout revokes the caller's access token and, when given, its refresh token
func (s *AuthService) Logout(ctx context.Context, session identity.Session, req LogoutRequest) error {
	if ttl := session.ExpiresAt.Sub(s.now()); ttl > 0 && session.TokenID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, session.TokenID, ttl); err != nil {
			return err
		}
	}

	if req.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
		switch {
		case err != nil:
			// An expired or invalid refresh token is already unusable.
			s.logger.Debug("Ignoring refresh token on logout", zap.Error(err))
		case claims.UserID != session.UserID.String():
			return shared.ErrForbidden
		default:
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", session.UserID.String()))
	return nil
}

// Authenticate turns a bearer access token into a session, rejecting revoked tokens
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (identity.Session, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return identity.Session{}, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims.ID); err != nil {
		return identity.Session{}, err
	}
	session, err := claims.Session()
	if err != nil {
		return identity.Session{}, ErrTokenInvalid
	}
	return session, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, jti string) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return ErrTokenRevoked
	default:
		return ErrTokenInvalid
	}
}
