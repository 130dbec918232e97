package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/model"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
	"github.com/docvault/docvault/internal/pkg/jwt"
	"github.com/docvault/docvault/internal/pkg/password"
	"github.com/docvault/docvault/internal/pkg/timeutil"
	"github.com/docvault/docvault/internal/repo"
)

const (
	otpPurposeRegister = "register"
	otpExpireMinutes   = 10
	otpCooldownSeconds = 60
)

var (
	emailRegex   = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)
	aadhaarRegex = regexp.MustCompile(`^\d{12}$`)
	phoneRegex   = regexp.MustCompile(`^\d{10}$`)
)

type AuthService struct {
	users     *repo.UserRepo
	otpCodes  *repo.OTPRepo
	otp       OTPProvider
	sender    EmailSender
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *repo.UserRepo, otpCodes *repo.OTPRepo, otp OTPProvider, sender EmailSender, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, otpCodes: otpCodes, otp: otp, sender: sender, jwtSecret: secret, jwtTTL: ttl}
}

type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	AadhaarNumber string
	Phone         string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if len(input.Name) < 2 || len(input.Password) < 6 {
		return nil, appErr.ErrInvalid
	}
	if !emailRegex.MatchString(input.Email) {
		return nil, appErr.ErrInvalid
	}
	if !aadhaarRegex.MatchString(input.AadhaarNumber) {
		return nil, appErr.ErrInvalid
	}
	if !phoneRegex.MatchString(input.Phone) {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.users.GetByEmailOrAadhaar(ctx, input.Email, input.AadhaarNumber); err == nil {
		return nil, appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:            newID(),
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  hash,
		AadhaarNumber: input.AadhaarNumber,
		Phone:         input.Phone,
		Verified:      0,
		Ctime:         now,
		Mtime:         now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.issueOTP(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, "", appErr.ErrInvalid
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user.Verified != 0 {
		return nil, "", appErr.ErrConflict
	}
	item, err := s.otpCodes.LatestByEmail(ctx, email, otpPurposeRegister)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", appErr.ErrInvalid
		}
		return nil, "", err
	}
	now := timeutil.NowUnix()
	if item.Used != 0 || item.ExpiresAt <= now {
		return nil, "", appErr.ErrInvalid
	}
	if err := password.Compare(item.CodeHash, code); err != nil {
		return nil, "", appErr.ErrInvalid
	}
	if err := s.otpCodes.MarkUsed(ctx, item.ID); err != nil {
		return nil, "", err
	}
	if err := s.users.MarkVerified(ctx, user.ID, now); err != nil {
		return nil, "", err
	}
	user.Verified = 1
	user.Mtime = now
	token, err := jwt.GenerateToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return appErr.ErrInvalid
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified != 0 {
		return appErr.ErrConflict
	}
	if err := s.ensureCooldown(ctx, email); err != nil {
		return err
	}
	return s.issueOTP(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if user.Verified == 0 {
		return nil, "", appErr.ErrNotVerified
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, phone string) (*model.User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if phone != "" && !phoneRegex.MatchString(phone) {
		return nil, appErr.ErrInvalid
	}
	if name != "" && len(name) < 2 {
		return nil, appErr.ErrInvalid
	}
	if err := s.users.UpdateProfile(ctx, userID, name, phone, timeutil.NowUnix()); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issueOTP(ctx context.Context, user *model.User) error {
	code := s.otp.Generate()
	hash, err := password.Hash(code)
	if err != nil {
		return err
	}
	now := timeutil.NowUnix()
	item := &model.OTPCode{
		ID:        newID(),
		Email:     user.Email,
		Purpose:   otpPurposeRegister,
		CodeHash:  hash,
		Used:      0,
		Ctime:     now,
		ExpiresAt: now + int64(otpExpireMinutes*60),
	}
	if err := s.otpCodes.Create(ctx, item); err != nil {
		return err
	}
	// Delivery is best effort; the code stays valid even if the mail
	// never arrives.
	if s.sender != nil {
		body := fmt.Sprintf("Hello %s,\n\nYour verification code is **%s**. It expires in %d minutes.", user.Name, code, otpExpireMinutes)
		if err := s.sender.Send(user.Email, "Verify your account", body); err != nil {
			logutil.GetLogger(ctx).Error("send otp mail failed",
				zap.String("email", user.Email), zap.Error(err))
		}
	}
	return nil
}

func (s *AuthService) ensureCooldown(ctx context.Context, email string) error {
	item, err := s.otpCodes.LatestByEmail(ctx, email, otpPurposeRegister)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if item.Ctime+otpCooldownSeconds > timeutil.NowUnix() {
		return appErr.ErrTooMany
	}
	return nil
}
