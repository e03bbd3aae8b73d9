package companies

import (
	"context"
	"errors"
	"strings"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// BulkEntry is one company in a bulk onboarding request.
type BulkEntry struct {
	Name    string `json:"name"`
	Credits int64  `json:"credits"`
}

// BulkResult reports what happened to one BulkEntry.
type BulkResult struct {
	Name    string          `json:"name"`
	Status  string          `json:"status"`
	Company *domain.Company `json:"company,omitempty"`
}

// Grouped is every company split by approval.
type Grouped struct {
	Total    int              `json:"total"`
	Approved []domain.Company `json:"approved"`
	Pending  []domain.Company `json:"pending"`
}

// EmployerStatus is the employer dashboard header.
type EmployerStatus struct {
	EmployerStatus   string `json:"employer_status"`
	EmployerUsername string `json:"employer_username"`
	CompanyName      string `json:"company_name"`
	CompanyApproved  bool   `json:"company_approved"`
}

// Create onboards one company with an opening credit balance.
func (s *Service) Create(ctx context.Context, name string, approved bool, credits int64) (*domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" || credits < 0 {
		return nil, domain.ErrInvalidCompany
	}
	c := &domain.Company{Name: name, Approved: approved, Credits: credits}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := nameTaken(tx, name)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrCompanyExists
		}
		return createCompany(tx, c)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("company_id", c.CompanyID.String()).Str("name", c.Name).Msg("company created")
	return c, nil
}

// BulkCreate creates approved companies, skipping blank names and reporting existing ones.
func (s *Service) BulkCreate(ctx context.Context, entries []BulkEntry) ([]BulkResult, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCompanies
	}
	results := make([]BulkResult, 0, len(entries))
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			name := strings.TrimSpace(e.Name)
			if name == "" || e.Credits < 0 {
				continue
			}
			exists, err := nameTaken(tx, name)
			if err != nil {
				return err
			}
			if exists {
				results = append(results, BulkResult{Name: name, Status: "already exists"})
				continue
			}
			c := &domain.Company{Name: name, Approved: true, Credits: e.Credits}
			if err := createCompany(tx, c); err != nil {
				return err
			}
			results = append(results, BulkResult{Name: name, Status: "created", Company: c})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func nameTaken(tx *gorm.DB, name string) (bool, error) {
	var n int64
	if err := tx.Model(&domain.Company{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func createCompany(tx *gorm.DB, c *domain.Company) error {
	if err := tx.Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCompanyExists
		}
		return err
	}
	return nil
}

// Approve marks a company approved and approves its pending employers. Returns how
// many employers were approved.
func (s *Service) Approve(ctx context.Context, companyID uuid.UUID) (*domain.Company, int64, error) {
	var c domain.Company
	var employers int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", companyID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCompanyNotFound
			}
			return err
		}
		if err := tx.Model(&c).Update("approved", true).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.User{}).
			Where("company_id = ? AND role = ? AND status = ?", companyID, constants.Employer, domain.UserStatusPending).
			Update("status", domain.UserStatusApproved)
		if res.Error != nil {
			return res.Error
		}
		employers = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	log.Info().Str("company_id", companyID.String()).Int64("employers", employers).Msg("company approved")
	return &c, employers, nil
}

// ListByApproval returns companies with the given approval flag, by name.
func (s *Service) ListByApproval(ctx context.Context, approved bool) ([]domain.Company, error) {
	var rows []domain.Company
	if err := s.DB.WithContext(ctx).Where("approved = ?", approved).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListGrouped returns all companies split into approved and pending.
func (s *Service) ListGrouped(ctx context.Context) (*Grouped, error) {
	var rows []domain.Company
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	g := &Grouped{Total: len(rows), Approved: []domain.Company{}, Pending: []domain.Company{}}
	for _, c := range rows {
		if c.Approved {
			g.Approved = append(g.Approved, c)
		} else {
			g.Pending = append(g.Pending, c)
		}
	}
	return g, nil
}

// Get loads one company.
func (s *Service) Get(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	var c domain.Company
	if err := s.DB.WithContext(ctx).Where("company_id = ?", companyID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

// IsApproved reports whether the company exists and has been approved by an admin.
func (s *Service) IsApproved(ctx context.Context, companyID uuid.UUID) (bool, error) {
	c, err := s.Get(ctx, companyID)
	if errors.Is(err, domain.ErrCompanyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.Approved, nil
}

// Employees lists the company's employees, optionally filtered by status.
func (s *Service) Employees(ctx context.Context, companyID uuid.UUID, status string) ([]domain.User, error) {
	q := s.DB.WithContext(ctx).Where("company_id = ? AND role = ?", companyID, constants.Employee)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []domain.User
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ApproveEmployee approves a pending employee of companyID.
func (s *Service) ApproveEmployee(ctx context.Context, companyID, employeeID uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("user_id = ? AND company_id = ? AND role = ? AND status = ?", employeeID, companyID, constants.Employee, domain.UserStatusPending).
			Update("status", domain.UserStatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrEmployeeNotFound
		}
		return tx.Where("user_id = ?", employeeID).First(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ApproveEmployer lets an admin approve an employer account directly.
func (s *Service) ApproveEmployer(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInvalidEmployer
			}
			return err
		}
		if u.Role != constants.Employer {
			return domain.ErrInvalidEmployer
		}
		u.Status = domain.UserStatusApproved
		return tx.Model(&u).Update("status", u.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmployerStatusFor reports the employer's approval state. An employer of an approved
// company is approved on the spot.
func (s *Service) EmployerStatusFor(ctx context.Context, userID uuid.UUID) (*EmployerStatus, error) {
	db := s.DB.WithContext(ctx)
	var u domain.User
	if err := db.Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	out := &EmployerStatus{EmployerStatus: u.Status, EmployerUsername: u.Username, CompanyName: "Unknown"}
	if u.CompanyID == nil {
		return out, nil
	}
	var c domain.Company
	err := db.Where("company_id = ?", *u.CompanyID).First(&c).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		out.CompanyName = c.Name
		out.CompanyApproved = c.Approved
	}
	if out.CompanyApproved && u.Status != domain.UserStatusApproved {
		if err := db.Model(&u).Update("status", domain.UserStatusApproved).Error; err != nil {
			return nil, err
		}
		out.EmployerStatus = domain.UserStatusApproved
	}
	return out, nil
}
