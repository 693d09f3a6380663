package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected defaulted config to validate, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "Level") {
		t.Errorf("Expected error to name the Level field, got: %v", err)
	}
}

func TestValidate_MissingLogOutput(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Output = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for empty log output, got nil")
	}
}

func TestValidate_InvalidStoreType(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Type = "postgres"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for unknown store type, got nil")
	}
}

func TestValidate_BadgerWithoutPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Type = "badger"
	cfg.Store.Badger["path"] = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for badger store without a path, got nil")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("Expected error to mention path, got: %v", err)
	}
}

func TestValidate_S3RequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Type = "s3"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for s3 store without a bucket, got nil")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected error to mention bucket, got: %v", err)
	}

	cfg.Store.S3["bucket"] = "my-bucket"

	err = Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for s3 store without a region, got nil")
	}
	if !strings.Contains(err.Error(), "region") {
		t.Errorf("Expected error to mention region, got: %v", err)
	}

	cfg.Store.S3["region"] = "eu-west-1"

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected s3 config with bucket and region to validate, got: %v", err)
	}
}
