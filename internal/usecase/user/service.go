package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bereal1995/jotrends-server/domain"
)

var (
	usernameFormat = regexp.MustCompile(`^[a-z0-9]{5,20}$`)

	passwordRules = []*regexp.Regexp{
		regexp.MustCompile(`[a-zA-Z]`),
		regexp.MustCompile(`[0-9]`),
		regexp.MustCompile(`[^A-Za-z0-9]`),
	}
)

type Service struct {
	userRepo  domain.UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
}

var _ domain.UserUsecase = (*Service)(nil)

func NewService(userRepo domain.UserRepository, jwtSecret []byte, jwtTTL time.Duration) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// validUsername: 5-20 lowercase letters or digits.
func validUsername(username string) bool {
	return usernameFormat.MatchString(username)
}

// validPassword: at least 8 chars covering two of the three classes
// letter / digit / symbol.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	matched := 0
	for _, rule := range passwordRules {
		if rule.MatchString(password) {
			matched++
		}
	}
	return matched > 1
}

func (s *Service) Register(ctx context.Context, username, password string) (domain.User, string, error) {
	if !validUsername(username) || !validPassword(password) {
		return domain.User{}, "", fmt.Errorf("%w: invalid username or password", domain.ErrBadParamInput)
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return domain.User{}, "", domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	user := domain.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Insert(ctx, &user); err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrUnauthorized
		}
		return domain.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", domain.ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *Service) issueToken(user domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.jwtTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
