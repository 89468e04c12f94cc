package usecase

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/iho/txledger/internal/domain"
)

// ValidateResult counts the records of a fully parsed stream.
type ValidateResult struct {
	Records int
	ByKind  map[domain.TransactionKind]int
}

// ValidateUseCase parses a stream without applying it.
type ValidateUseCase struct {
	logger zerolog.Logger
}

func NewValidateUseCase(logger zerolog.Logger) *ValidateUseCase {
	return &ValidateUseCase{logger: logger}
}

func (uc *ValidateUseCase) Validate(source TransactionSource) (*ValidateResult, error) {
	result := &ValidateResult{ByKind: make(map[domain.TransactionKind]int, len(domain.Kinds))}

	for {
		tx, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			uc.logger.Error().Err(err).Int("records", result.Records).Msg("validation failed")
			return nil, fmt.Errorf("read transactions: %w", err)
		}

		result.Records++
		result.ByKind[tx.Kind]++
	}

	uc.logger.Info().Int("records", result.Records).Msg("validation passed")

	return result, nil
}
