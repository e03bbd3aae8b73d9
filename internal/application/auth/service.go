package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/constants"
	"ecocommute-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	DB     *gorm.DB
	Tokens *Tokens
}

// RegisterInput for register request body.
type RegisterInput struct {
	Company  string `json:"company" validate:"required"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// LoginInput for login request body. Company is ignored for admins.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Company  string `json:"company"`
	Role     string `json:"role"`
}

// LoginResult is the token plus the public user shape.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      PublicUser `json:"user"`
}

// PublicUser is what /me and login return about an account.
type PublicUser struct {
	UserID    uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
}

// AccountStatus reports the caller's approval state and their company's.
type AccountStatus struct {
	Status          string `json:"status"`
	CompanyApproved bool   `json:"company_approved"`
}

func toPublic(u *domain.User) PublicUser {
	return PublicUser{UserID: u.UserID, Username: u.Username, Role: u.Role, Status: u.Status, CompanyID: u.CompanyID}
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Register creates a pending employer or employee. Employers bring their company
// into existence (unapproved) if it is new; employees must join an approved one.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Role == constants.Admin {
		return nil, domain.ErrAdminRegistration
	}
	if !constants.CanSelfRegister(in.Role) {
		return nil, domain.ErrInvalidRole
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, domain.ErrWeakPassword
	}
	companyName := strings.TrimSpace(in.Company)

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&domain.User{}).Where("username = ?", in.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return domain.ErrUsernameTaken
		}

		var company domain.Company
		err := tx.Where("name = ?", companyName).First(&company).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch in.Role {
		case constants.Employer:
			if !found {
				company = domain.Company{Name: companyName}
				if err := tx.Create(&company).Error; err != nil {
					return err
				}
			}
		case constants.Employee:
			if !found || !company.Approved {
				return domain.ErrCompanyNotReady
			}
		}

		user = &domain.User{
			Username:     in.Username,
			PasswordHash: hash,
			Role:         in.Role,
			CompanyID:    &company.CompanyID,
			Status:       domain.UserStatusPending,
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrUsernameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.UserID.String()).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a token. Non-admins must name their company
// and be approved.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Username == "" || in.Password == "" || in.Role == "" {
		return nil, domain.ErrMissingLogin
	}
	db := s.DB.WithContext(ctx)

	var u domain.User
	err := db.Where("username = ? AND role = ?", in.Username, in.Role).First(&u).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	notFound := errors.Is(err, gorm.ErrRecordNotFound)

	if in.Role == constants.Admin {
		if notFound {
			return nil, domain.ErrAdminNotFound
		}
	} else {
		if notFound || u.CompanyID == nil {
			return nil, domain.ErrLoginNotFound
		}
		var company domain.Company
		if err := db.Where("company_id = ?", *u.CompanyID).First(&company).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrLoginNotFound
			}
			return nil, err
		}
		if company.Name != in.Company {
			return nil, domain.ErrLoginNotFound
		}
		if u.Status != domain.UserStatusApproved {
			return nil, domain.ErrAccountNotApproved
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidPassword
	}

	token, exp, err := s.Tokens.Issue(&u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: toPublic(&u)}, nil
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.Tokens.Revoke(ctx, claims)
}

// Me loads the account behind a token.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*PublicUser, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := toPublic(u)
	return &p, nil
}

// Status reports the caller's approval and whether their company is approved.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*AccountStatus, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &AccountStatus{Status: u.Status}
	if u.CompanyID != nil {
		var c domain.Company
		err := s.DB.WithContext(ctx).Where("company_id = ?", *u.CompanyID).First(&c).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		out.CompanyApproved = err == nil && c.Approved
	}
	return out, nil
}

func (s *Service) findUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateAdmin inserts an approved admin account. Used by cmd/createadmin.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         constants.Admin,
		Status:       domain.UserStatusApproved,
	}
	db := s.DB.WithContext(ctx)
	var taken int64
	if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, domain.ErrUsernameTaken
	}
	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns the accounts visible to the caller: every user for admins, the
// company's employees for employers. Employees see nobody.
func (s *Service) ListUsers(ctx context.Context, role string, companyID *uuid.UUID) ([]PublicUser, error) {
	q := s.DB.WithContext(ctx).Order("created_at ASC")
	switch {
	case role == constants.Admin:
	case role == constants.Employer && companyID != nil:
		q = q.Where("role = ? AND company_id = ?", constants.Employee, *companyID)
	default:
		return nil, domain.ErrUsersForbidden
	}
	var rows []domain.User
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]PublicUser, 0, len(rows))
	for i := range rows {
		out = append(out, toPublic(&rows[i]))
	}
	return out, nil
}
