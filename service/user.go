package service

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"drawchat/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	DB     *gorm.DB
	Tokens *TokenService
}

// ValidationErrors 按字段归集的校验错误
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	return "validation failed"
}

func (v ValidationErrors) add(field, message string) {
	v[field] = append(v[field], message)
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// isValidPassword 密码至少 8 位，且同时包含字母和数字
func isValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Register 校验全部通过后才写库；字段级错误通过 ValidationErrors 返回
func (service *UserService) Register(input *RegisterInput) error {
	errs := ValidationErrors{}
	if strings.TrimSpace(input.Username) == "" {
		errs.add("username", "username is required")
	}
	if !isValidEmail(input.Email) {
		errs.add("email", "invalid email address")
	}
	if !isValidPassword(input.Password) {
		errs.add("password", "password must be at least 8 characters and contain a letter and a digit")
	}
	if input.Password != input.ConfirmPassword {
		errs.add("confirm_password", "passwords do not match")
	}
	if len(errs) > 0 {
		return errs
	}

	// 唯一性检查
	usernameTaken, err := model.UsernameExists(service.DB, input.Username)
	if err != nil {
		return errors.New("internal server error")
	}
	if usernameTaken {
		errs.add("username", "username already taken")
	}
	emailTaken, err := model.EmailExists(service.DB, input.Email)
	if err != nil {
		return errors.New("internal server error")
	}
	if emailTaken {
		errs.add("email", "email already registered")
	}
	if len(errs) > 0 {
		return errs
	}

	// 密码加密
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("internal server error")
	}

	newUser := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
	}
	if err := model.CreateUser(service.DB, newUser); err != nil {
		return errors.New("internal server error")
	}
	return nil
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// Login identifier 可以是用户名或邮箱
func (service *UserService) Login(identifier, password string) (*model.User, string, error) {
	registeredUser, err := model.GetUserByIdentifier(service.DB, identifier)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(registeredUser.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	td, err := service.Tokens.CreateToken(registeredUser.ID, registeredUser.Username)
	if err != nil {
		logger.Warnf("failed to generate token for user %s: %s", registeredUser.Username, err)
		return nil, "", errors.New("failed to generate token")
	}
	return registeredUser, td.AccessToken, nil
}

// Logout 把令牌拉黑，后续请求携带该令牌会被拒绝
func (service *UserService) Logout(token string) error {
	if _, err := service.Tokens.ParseToken(token); err != nil {
		return ErrInvalidCredentials
	}
	return model.BlacklistToken(service.DB, token)
}
