package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

type userUpserter interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, user *models.User) error
}

type catalogWriter interface {
	FindBrandByName(ctx context.Context, exec sqlx.ExtContext, name string) (*models.Brand, error)
	CreateBrand(ctx context.Context, exec sqlx.ExtContext, brand *models.Brand) error
	FindEdition(ctx context.Context, exec sqlx.ExtContext, brandID, name string) (*models.Edition, error)
	CreateEdition(ctx context.Context, exec sqlx.ExtContext, edition *models.Edition) error
}

// Result reports what a run wrote.
type Result struct {
	Users           []models.User
	BrandsCreated   int
	BrandsKept      int
	EditionsCreated int
	EditionsKept    int
}

// Seeder writes a fixture in a single transaction. Users are upserted by email; brands and
// editions that already exist are left untouched.
type Seeder struct {
	users   userUpserter
	catalog catalogWriter
	tx      txRunner
	hash    func(string) (string, error)
	logger  *zap.Logger
}

// NewSeeder constructs a Seeder hashing passwords with bcrypt.
func NewSeeder(users userUpserter, catalog catalogWriter, tx txRunner, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, catalog: catalog, tx: tx, hash: bcryptHash, logger: logger}
}

func bcryptHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Run applies the fixture.
func (s *Seeder) Run(ctx context.Context, fx *Fixture) (*Result, error) {
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		for _, uf := range fx.Users {
			user, err := s.buildUser(uf)
			if err != nil {
				return err
			}
			if err := s.users.Upsert(ctx, exec, user); err != nil {
				return fmt.Errorf("seed user %s: %w", uf.Email, err)
			}
			res.Users = append(res.Users, *user)
		}
		for _, bf := range fx.Brands {
			if err := s.seedBrand(ctx, exec, bf, res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("seed applied",
		zap.Int("users", len(res.Users)),
		zap.Int("brands_created", res.BrandsCreated),
		zap.Int("editions_created", res.EditionsCreated),
	)
	return res, nil
}

func (s *Seeder) buildUser(uf UserFixture) (*models.User, error) {
	hashed, err := s.hash(uf.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", uf.Email, err)
	}
	user := &models.User{
		Username:     strings.TrimSpace(uf.Username),
		Email:        strings.ToLower(strings.TrimSpace(uf.Email)),
		PasswordHash: hashed,
		Role:         models.UserRole(uf.Role),
		IsManager:    uf.Manager || uf.Role == string(models.RoleManager),
	}
	if uf.Department != "" {
		dept := models.Department(uf.Department)
		user.Department = &dept
	}
	return user, nil
}

func (s *Seeder) seedBrand(ctx context.Context, exec sqlx.ExtContext, bf BrandFixture, res *Result) error {
	brand, err := s.catalog.FindBrandByName(ctx, exec, bf.Name)
	if err != nil {
		return err
	}
	if brand == nil {
		brand = &models.Brand{Name: strings.TrimSpace(bf.Name)}
		if bf.Description != "" {
			desc := bf.Description
			brand.Description = &desc
		}
		if err := s.catalog.CreateBrand(ctx, exec, brand); err != nil {
			return fmt.Errorf("seed brand %s: %w", bf.Name, err)
		}
		res.BrandsCreated++
	} else {
		res.BrandsKept++
	}

	for _, ef := range bf.Editions {
		existing, err := s.catalog.FindEdition(ctx, exec, brand.ID, ef.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			res.EditionsKept++
			continue
		}
		edition := &models.Edition{BrandID: brand.ID, Name: strings.TrimSpace(ef.Name), Status: models.EditionStatus(ef.Status)}
		if ef.Year > 0 {
			year := ef.Year
			edition.Year = &year
		}
		if ef.Month > 0 {
			month := ef.Month
			edition.Month = &month
		}
		if err := s.catalog.CreateEdition(ctx, exec, edition); err != nil {
			return fmt.Errorf("seed edition %s/%s: %w", bf.Name, ef.Name, err)
		}
		res.EditionsCreated++
	}
	return nil
}
