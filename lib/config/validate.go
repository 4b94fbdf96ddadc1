// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var structValidator = newValidator()

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML key so errors match the file.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("duration", func(level validator.FieldLevel) bool {
		_, err := time.ParseDuration(level.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("config: registering duration validator: %v", err))
	}
	return validate
}

// Validate checks the configuration for errors. Every problem is
// reported, joined into one error.
func (c *Config) Validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var errs []error
	for _, fieldError := range validationErrors {
		errs = append(errs, describe(fieldError))
	}
	return errors.Join(errs...)
}

// describe renders one field error using the dotted YAML path, without
// the root struct name.
func describe(fieldError validator.FieldError) error {
	path := fieldError.Namespace()
	if _, rest, found := strings.Cut(path, "."); found {
		path = rest
	}

	switch fieldError.Tag() {
	case "required":
		return fmt.Errorf("%s is required", path)
	case "required_without":
		return fmt.Errorf("%s is required unless login_token_file is set", path)
	case "http_url":
		return fmt.Errorf("%s must be an http or https URL, got %q", path, fieldError.Value())
	case "gte":
		return fmt.Errorf("%s must be >= %s, got %v", path, fieldError.Param(), fieldError.Value())
	case "duration":
		return fmt.Errorf("%s must be a duration like 30s or 2m, got %q", path, fieldError.Value())
	case "hostname_port|hostname":
		return fmt.Errorf("%s must be a server name, got %q", path, fieldError.Value())
	default:
		return fmt.Errorf("%s failed %s validation", path, fieldError.Tag())
	}
}
