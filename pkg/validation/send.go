package validation

import (
	"errors"
	"fmt"
	"strings"
)

// SendRequestValidator validates chat dispatch requests
type SendRequestValidator struct{}

// NewSendRequestValidator creates a new SendRequestValidator
func NewSendRequestValidator() *SendRequestValidator {
	return &SendRequestValidator{}
}

// ValidatePrompt validates the system prompt text
func (v *SendRequestValidator) ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("prompt cannot be empty")
	}
	return nil
}

// ValidateInputText validates the user input text
func (v *SendRequestValidator) ValidateInputText(inputText string) error {
	if strings.TrimSpace(inputText) == "" {
		return errors.New("inputText cannot be empty")
	}
	return nil
}

// ValidateTemperature validates the temperature parameter
func (v *SendRequestValidator) ValidateTemperature(temperature *float64) error {
	if temperature == nil {
		return nil // Temperature is optional
	}

	if *temperature < 0 || *temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %.2f", *temperature)
	}
	return nil
}

// ValidateMaxTokens validates the maxTokens parameter
func (v *SendRequestValidator) ValidateMaxTokens(maxTokens *int) error {
	if maxTokens == nil {
		return nil // MaxTokens is optional
	}

	if *maxTokens < 1 {
		return fmt.Errorf("maxTokens must be at least 1, got %d", *maxTokens)
	}

	if *maxTokens > 32768 {
		return fmt.Errorf("maxTokens must be at most 32768, got %d", *maxTokens)
	}
	return nil
}

// ValidateSendRequest validates the required and optional dispatch fields together
func (v *SendRequestValidator) ValidateSendRequest(prompt, inputText string, temperature *float64, maxTokens *int) error {
	if err := v.ValidatePrompt(prompt); err != nil {
		return err
	}
	if err := v.ValidateInputText(inputText); err != nil {
		return err
	}
	if err := v.ValidateTemperature(temperature); err != nil {
		return err
	}
	return v.ValidateMaxTokens(maxTokens)
}
