package service

import (
	"context"
	"errors"
	"time"

	"marknotes-be/internal/dto"
	"marknotes-be/internal/entity"
	"marknotes-be/internal/pkg/logger"
	"marknotes-be/internal/repository/specification"
	"marknotes-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory  unitofwork.RepositoryFactory
	noteService INoteService
	jwtSecret   string
	tokenTTL    time.Duration
	bcryptCost  int
	log         logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	noteService INoteService,
	jwtSecret string,
	tokenTTL time.Duration,
	bcryptCost int,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:  uowFactory,
		noteService: noteService,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		bcryptCost:  bcryptCost,
		log:         log,
	}
}

func (c *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByLogin{Login: req.Login})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), c.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := entity.User{
		Id:        uuid.New(),
		Login:     req.Login,
		Username:  req.Username,
		Password:  string(hash),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, &user); err != nil {
		return nil, err
	}

	// Every fresh account starts with one example note. Seeding is
	// auxiliary: a failure must not lose the registration.
	_, err = c.noteService.Create(ctx, user.Id, &dto.CreateNoteRequest{
		Title: demoNoteTitle,
		Text:  demoNoteText,
	})
	if err != nil {
		c.log.Warn("auth", "failed to seed demo note", map[string]interface{}{
			"user_id": user.Id,
			"error":   err.Error(),
		})
	}

	return &dto.RegisterResponse{
		Id: user.Id,
	}, nil
}

func (c *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByLogin{Login: req.Login})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.Id.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(c.tokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(c.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:    signed,
		Username: user.Username,
	}, nil
}
