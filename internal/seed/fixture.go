package seed

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

// Fixture is the YAML document loaded by the seed command.
type Fixture struct {
	Users  []UserFixture  `yaml:"users"`
	Brands []BrandFixture `yaml:"brands"`
}

type UserFixture struct {
	Username   string `yaml:"username"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Department string `yaml:"department"`
	Manager    bool   `yaml:"manager"`
}

type BrandFixture struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Editions    []EditionFixture `yaml:"editions"`
}

type EditionFixture struct {
	Name   string `yaml:"name"`
	Year   int    `yaml:"year"`
	Month  int    `yaml:"month"`
	Status string `yaml:"status"`
}

// LoadFixture decodes and validates a fixture. Unknown keys are rejected.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("fixture is empty")
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks every record before anything touches the database.
func (f *Fixture) Validate() error {
	emails := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Email) == "" {
			return fmt.Errorf("users[%d]: username and email are required", i)
		}
		if len(u.Password) < 8 {
			return fmt.Errorf("users[%d] %s: password must be at least 8 characters", i, u.Email)
		}
		if !models.UserRole(u.Role).Valid() {
			return fmt.Errorf("users[%d] %s: unknown role %q", i, u.Email, u.Role)
		}
		if u.Department != "" {
			if _, ok := models.ParseDepartment(u.Department); !ok {
				return fmt.Errorf("users[%d] %s: unknown department %q", i, u.Email, u.Department)
			}
		} else if u.Role != string(models.RoleSuperAdmin) && u.Role != string(models.RoleCXO) {
			return fmt.Errorf("users[%d] %s: department is required for role %s", i, u.Email, u.Role)
		}
		key := strings.ToLower(u.Email)
		if _, dup := emails[key]; dup {
			return fmt.Errorf("users[%d]: duplicate email %s", i, u.Email)
		}
		emails[key] = struct{}{}
	}

	brands := make(map[string]struct{}, len(f.Brands))
	for i, b := range f.Brands {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("brands[%d]: name is required", i)
		}
		key := strings.ToLower(b.Name)
		if _, dup := brands[key]; dup {
			return fmt.Errorf("brands[%d]: duplicate brand %s", i, b.Name)
		}
		brands[key] = struct{}{}
		for j, e := range b.Editions {
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("brands[%d].editions[%d]: name is required", i, j)
			}
			if e.Month < 0 || e.Month > 12 {
				return fmt.Errorf("brands[%d].editions[%d]: month %d out of range", i, j, e.Month)
			}
			if e.Status != "" && !models.EditionStatus(e.Status).Valid() {
				return fmt.Errorf("brands[%d].editions[%d]: unknown status %q", i, j, e.Status)
			}
		}
	}
	return nil
}
