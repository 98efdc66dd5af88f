package config

import (
	"os"
	"testing"
)

func TestNewGateConfig(t *testing.T) {
	tests := []struct {
		name         string
		bcryptCost   string
		password     string
		wantCost     int
		wantPassword string
		wantErr      bool
		description  string
	}{
		{
			name:         "defaults",
			wantCost:     12,
			wantPassword: DefaultDemoPassword,
			description:  "should use default cost and demo password when nothing is set",
		},
		{
			name:         "custom password",
			bcryptCost:   "10",
			password:     "open-sesame",
			wantCost:     10,
			wantPassword: "open-sesame",
			description:  "should read POC_PASSWORD",
		},
		{
			name:        "cost too low",
			bcryptCost:  "9",
			wantErr:     true,
			description: "should reject cost below 10",
		},
		{
			name:        "cost too high",
			bcryptCost:  "15",
			wantErr:     true,
			description: "should reject cost above 14",
		},
		{
			name:        "invalid cost",
			bcryptCost:  "invalid",
			wantErr:     true,
			description: "should reject non-numeric cost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalCost := os.Getenv("BCRYPT_COST")
			originalPassword := os.Getenv("POC_PASSWORD")
			originalHash := os.Getenv("POC_PASSWORD_HASH")
			defer func() {
				os.Setenv("BCRYPT_COST", originalCost)
				os.Setenv("POC_PASSWORD", originalPassword)
				os.Setenv("POC_PASSWORD_HASH", originalHash)
			}()

			os.Unsetenv("POC_PASSWORD_HASH")
			if tt.bcryptCost != "" {
				os.Setenv("BCRYPT_COST", tt.bcryptCost)
			} else {
				os.Unsetenv("BCRYPT_COST")
			}
			if tt.password != "" {
				os.Setenv("POC_PASSWORD", tt.password)
			} else {
				os.Unsetenv("POC_PASSWORD")
			}

			config, err := NewGateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGateConfig() error = %v, wantErr %v (%s)", err, tt.wantErr, tt.description)
				return
			}

			if !tt.wantErr {
				if config.BcryptCost != tt.wantCost {
					t.Errorf("NewGateConfig() BcryptCost = %v, want %v", config.BcryptCost, tt.wantCost)
				}
				if config.Password != tt.wantPassword {
					t.Errorf("NewGateConfig() Password = %v, want %v", config.Password, tt.wantPassword)
				}
			}
		})
	}
}

func TestNewGateConfig_InvalidHash(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("POC_PASSWORD_HASH", "not-a-bcrypt-hash")

	if _, err := NewGateConfig(); err == nil {
		t.Error("NewGateConfig() should reject a malformed POC_PASSWORD_HASH")
	}
}

func TestGateConfig_CheckLiteral(t *testing.T) {
	config := &GateConfig{Password: "open-sesame", BcryptCost: 10}

	if !config.Check("open-sesame") {
		t.Error("Check() should accept the exact password")
	}
	if config.Check("Open-Sesame") {
		t.Error("Check() should be case sensitive")
	}
	if config.Check("") {
		t.Error("Check() should reject an empty password")
	}
}

func TestGateConfig_CheckHash(t *testing.T) {
	config := &GateConfig{Password: DefaultDemoPassword, BcryptCost: 10}

	hash, err := config.HashPassword("hashed-secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hashed-secret" {
		t.Fatal("HashPassword() should not return the plaintext")
	}

	config.PasswordHash = hash
	if !config.Check("hashed-secret") {
		t.Error("Check() should accept the password matching the hash")
	}
	if config.Check(DefaultDemoPassword) {
		t.Error("Check() should ignore the literal password once a hash is configured")
	}
}
