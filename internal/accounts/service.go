// Package accounts manages users and their single trading account.
package accounts

import (
	"context" // Cancellation of DB work
	"errors"  // Error classification
	"fmt"     // Error wrapping
	"strings" // Input normalisation

	"coinx_trading/internal/domain" // Domain models and errors

	"github.com/go-playground/validator/v10" // Field validation
	"github.com/sirupsen/logrus"             // Logrus for structured logging
	"gorm.io/gorm"                           // GORM ORM library
)

// Demo user created by EnsureDemoUser
const (
	DemoEmail = "trader@example.com" // Login of the demo trader
	DemoName  = "Trader Principal"   // Display name of the demo trader
)

var validate = validator.New() // Shared, safe for concurrent use

// Summary is a user with its balances and trade history, newest first.
type Summary struct {
	User         domain.User          // Profile
	Account      domain.Account       // Balances
	Transactions []domain.Transaction // Ledger, newest first
}

// Service implements the account lifecycle. Balances are never written here
// except when an account is created.
type Service struct {
	db *gorm.DB // Database handle
}

// NewService creates an account service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates a user and its account with the initial balances.
func (s *Service) Register(ctx context.Context, email, name string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	user := domain.User{Email: email, Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrDuplicateEmail // Email already taken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(domain.NewAccount(user.ID)).Error
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
	default:
		return nil, fmt.Errorf("%w: register: %w", domain.ErrPersistence, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")
	return &user, nil
}

// Login resolves a user by email.
func (s *Service) Login(ctx context.Context, email string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user "+email)
	}
	return &user, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("user %d", userID))
	}
	return &user, nil
}

// GetAccount loads the account owned by userID.
func (s *Service) GetAccount(ctx context.Context, userID uint) (*domain.Account, error) {
	var account domain.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("account for user %d", userID))
	}
	return &account, nil
}

// Summary returns the user, balances and full ledger, most recent first.
func (s *Service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	db := s.db.WithContext(ctx)
	var sum Summary
	if err := db.First(&sum.User, userID).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("user %d", userID))
	}
	if err := db.Where("user_id = ?", userID).First(&sum.Account).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("account for user %d", userID))
	}
	if err := db.Where("account_id = ?", sum.Account.ID).
		Order("created_at desc").
		Order("id desc").
		Find(&sum.Transactions).Error; err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", domain.ErrPersistence, err)
	}
	return &sum, nil
}

// Rename changes the display name of a user.
func (s *Service) Rename(ctx context.Context, userID uint, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Only the name column is written; balances live on Account.
	if err := s.db.WithContext(ctx).Model(user).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("%w: rename: %w", domain.ErrPersistence, err)
	}
	user.Name = name
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"name":    name,
	}).Info("User renamed")
	return user, nil
}

// Delete removes the user, its account and every ledger entry. Irreversible.
func (s *Service) Delete(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accountIDs := tx.Model(&domain.Account{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("account_id IN (?)", accountIDs).Delete(&domain.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Account{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	} else if err != nil {
		return fmt.Errorf("%w: delete user: %w", domain.ErrPersistence, err)
	}
	logrus.WithField("user_id", userID).Info("User deleted")
	return nil
}

// EnsureDemoUser creates the demo trader and its account when missing.
func (s *Service) EnsureDemoUser(ctx context.Context) (*domain.User, *domain.Account, error) {
	user, err := s.Login(ctx, DemoEmail)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.Register(ctx, DemoEmail, DemoName)
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// Lost a race with another initializer.
			user, err = s.Login(ctx, DemoEmail)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	account, err := s.GetAccount(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		account = domain.NewAccount(user.ID)
		if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
			return nil, nil, fmt.Errorf("%w: create demo account: %w", domain.ErrPersistence, err)
		}
	} else if err != nil {
		return nil, nil, err
	}
	return user, account, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	return email, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, what, err)
}
