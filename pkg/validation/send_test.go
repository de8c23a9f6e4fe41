package validation

import (
	"testing"
)

func TestSendRequestValidator_ValidatePrompt(t *testing.T) {
	validator := NewSendRequestValidator()

	tests := []struct {
		name    string
		prompt  string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid prompt",
			prompt:  "You are a helpful assistant",
			wantErr: false,
		},
		{
			name:    "empty prompt",
			prompt:  "",
			wantErr: true,
			errMsg:  "prompt cannot be empty",
		},
		{
			name:    "whitespace only prompt",
			prompt:  "   \n\t",
			wantErr: true,
			errMsg:  "prompt cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePrompt(tt.prompt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrompt() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && tt.errMsg != "" {
				if err.Error() != tt.errMsg {
					t.Errorf("ValidatePrompt() error message = %v, want %v", err.Error(), tt.errMsg)
				}
			}
		})
	}
}

func TestSendRequestValidator_ValidateTemperature(t *testing.T) {
	validator := NewSendRequestValidator()
	valid := 0.7
	zero := 0.0
	max := 2.0
	tooLow := -0.1
	tooHigh := 2.1

	tests := []struct {
		name        string
		temperature *float64
		wantErr     bool
	}{
		{"nil temperature is optional", nil, false},
		{"valid temperature", &valid, false},
		{"zero is valid", &zero, false},
		{"two is valid", &max, false},
		{"negative temperature", &tooLow, true},
		{"temperature above two", &tooHigh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTemperature(tt.temperature)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTemperature() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSendRequestValidator_ValidateMaxTokens(t *testing.T) {
	validator := NewSendRequestValidator()
	valid := 1024
	one := 1
	limit := 32768
	zero := 0
	tooHigh := 32769

	tests := []struct {
		name      string
		maxTokens *int
		wantErr   bool
	}{
		{"nil maxTokens is optional", nil, false},
		{"valid maxTokens", &valid, false},
		{"one is valid", &one, false},
		{"upper bound is valid", &limit, false},
		{"zero maxTokens", &zero, true},
		{"above upper bound", &tooHigh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateMaxTokens(tt.maxTokens)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaxTokens() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSendRequestValidator_ValidateSendRequest(t *testing.T) {
	validator := NewSendRequestValidator()
	temp := 0.5
	badTemp := 3.0
	tokens := 512

	tests := []struct {
		name        string
		prompt      string
		inputText   string
		temperature *float64
		maxTokens   *int
		wantErr     bool
	}{
		{"all valid", "prompt", "text", &temp, &tokens, false},
		{"optionals omitted", "prompt", "text", nil, nil, false},
		{"missing prompt", "", "text", nil, nil, true},
		{"missing inputText", "prompt", "", nil, nil, true},
		{"bad temperature", "prompt", "text", &badTemp, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateSendRequest(tt.prompt, tt.inputText, tt.temperature, tt.maxTokens)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSendRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
