package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/entity"
)

// Accepted registration ranges
const (
	MinAge    = 5
	MaxAge    = 120
	MinWeight = 20.0
	MaxWeight = 300.0
	MinHeight = 100
	MaxHeight = 250
)

// Validator validates user input collected by the bot
type Validator struct {
	cfg        config.IntakeConfig
	formSchema formSchema
}

func NewValidator(cfg config.IntakeConfig) *Validator {
	return &Validator{
		cfg:        cfg,
		formSchema: mustFormSchema(),
	}
}

// ValidateAge accepts a whole number of years written with digits only
func (v *Validator) ValidateAge(text string) (int, error) {
	return parseBoundedInt(text, "age", MinAge, MaxAge)
}

// ValidateHeight accepts a whole number of centimetres written with digits only
func (v *Validator) ValidateHeight(text string) (int, error) {
	return parseBoundedInt(text, "height", MinHeight, MaxHeight)
}

// ValidateWeight accepts a decimal number of kilograms, comma or dot separated
func (v *Validator) ValidateWeight(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: weight", entity.ErrMissingField)
	}

	w, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("%w: weight %q", entity.ErrInvalidFormat, text)
	}
	if w < MinWeight || w > MaxWeight {
		return 0, fmt.Errorf("%w: weight %.1f not in [%.0f, %.0f]", entity.ErrOutOfRange, w, MinWeight, MaxWeight)
	}

	return w, nil
}

func parseBoundedInt(text, field string, lo, hi int) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: %s", entity.ErrMissingField, field)
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s %q", entity.ErrInvalidFormat, field, text)
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", entity.ErrInvalidFormat, field, text)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s %d not in [%d, %d]", entity.ErrOutOfRange, field, n, lo, hi)
	}

	return n, nil
}
