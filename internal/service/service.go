// Package service реализует бизнес-логику сервиса начисления баллов за чеки.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/mmeshcher/receipt-loyalty-system/internal/consensus"
	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
	"github.com/mmeshcher/receipt-loyalty-system/internal/repository"
	"github.com/mmeshcher/receipt-loyalty-system/internal/validation"
	"github.com/mmeshcher/receipt-loyalty-system/internal/vision"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	HasDuplicateReceipt(ctx context.Context, orderNumber, orderDate, orderTime string) (bool, error)
	CreateReceiptAndAward(ctx context.Context, userID int64, receipt *model.ValidatedReceipt, points int64) (int64, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	GetReceiptsByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

// ConsensusValidator описывает согласованное извлечение полей чека из изображения.
type ConsensusValidator interface {
	Validate(ctx context.Context, image []byte, mimeType string) (*model.ReceiptFields, error)
}

// Service содержит бизнес-логику сервиса начисления баллов.
type Service struct {
	repo      Repository
	consensus ConsensusValidator
	now       func() time.Time
}

// NewService создаёт новый сервис с указанным репозиторием и валидатором извлечений.
func NewService(repo Repository, consensusValidator ConsensusValidator) *Service {
	return &Service{
		repo:      repo,
		consensus: consensusValidator,
		now:       time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, repository.ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}

	hashed := hashPassword(login, password)
	if hex.EncodeToString(hashed) != hex.EncodeToString(u.PasswordHash) {
		return 0, errors.New("invalid credentials")
	}

	return u.ID, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// SubmitReceipt прогоняет фотографию чека через конвейер проверки:
// согласованное извлечение → детерминированная валидация → проверка на
// дубликат → начисление. Останавливается на первой ошибке; каждый отказ
// возвращается как *model.Rejection. Долговременный эффект имеет только
// последний шаг, поэтому отказ на любом более раннем шаге отката не требует.
func (s *Service) SubmitReceipt(ctx context.Context, userID int64, image []byte, mimeType string) (*model.AwardOutcome, error) {
	fields, err := s.consensus.Validate(ctx, image, mimeType)
	if err != nil {
		return nil, &model.Rejection{
			Reason:  model.RejectUnclear,
			Message: unclearMessage(err),
		}
	}

	validated, err := validation.Validate(*fields, s.now())
	if err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			return nil, &model.Rejection{
				Reason:  model.RejectInvalidFormat,
				Kind:    string(vErr.Kind),
				Message: vErr.Message,
			}
		}
		return nil, err
	}

	duplicate, err := s.repo.HasDuplicateReceipt(ctx, validated.OrderNumber, validated.OrderDate, validated.OrderTime)
	if err != nil {
		return nil, &model.Rejection{
			Reason:  model.RejectTransientUnavailable,
			Message: "could not verify the receipt, please try again later",
		}
	}
	if duplicate {
		return nil, &model.Rejection{
			Reason:  model.RejectDuplicate,
			Message: "this receipt has already been submitted",
		}
	}

	points := pointsForTotal(validated.TotalCents)

	newBalance, err := s.repo.CreateReceiptAndAward(ctx, userID, validated, points)
	if err != nil {
		return nil, &model.Rejection{
			Reason:  model.RejectTransientUnavailable,
			Message: "could not record the award, please try again later",
		}
	}

	return &model.AwardOutcome{
		PointsAwarded: points,
		NewBalance:    newBalance,
	}, nil
}

// pointsForTotal начисляет 5 баллов за единицу суммы чека с округлением вниз.
// Сумма в копейках, поэтому floor(total*5) — целочисленное деление.
func pointsForTotal(totalCents int64) int64 {
	return totalCents * 5 / 100
}

func unclearMessage(err error) string {
	switch {
	case errors.Is(err, vision.ErrNotThisVendor):
		return "this does not look like one of our receipts, please retake the photo"
	case errors.Is(err, vision.ErrObstructed):
		return "part of the receipt is covered, please retake the photo"
	case errors.Is(err, vision.ErrIllegible):
		return "the photo is too hard to read, please retake it"
	case errors.Is(err, vision.ErrNoValidOrderNumber):
		return "could not find the order number, please retake the photo"
	case errors.Is(err, consensus.ErrMismatch):
		return "the receipt is unclear, please retake the photo"
	case errors.Is(err, vision.ErrTimeout):
		return "reading the receipt took too long, please try again"
	default:
		return "could not read the receipt, please try again"
	}
}

// GetBalance возвращает баланс пользователя в виде структуры model.Balance.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*model.Balance, error) {
	current, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Balance{Current: current}, nil
}

// GetReceiptsByUser возвращает принятые чеки пользователя.
func (s *Service) GetReceiptsByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return s.repo.GetReceiptsByUser(ctx, userID)
}
