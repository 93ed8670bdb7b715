package models

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator"
)

var (
	linkPattern = regexp.MustCompile(`^(ftp|http|https)://[^ "]+$`)
	tagPattern  = regexp.MustCompile(`^[a-zA-Z0-9-_]{1,32}$`)
)

// bcrypt rejects inputs longer than this many bytes; min/max count runes.
const bcryptMaxBytes = 72

// ValidationError carries one message per offending field, keyed by the
// field's JSON path (e.g. "title", "tags[1]", "socialLinks.XLink").
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration can only fail on an empty tag name
	_ = v.RegisterValidation("link", func(fl validator.FieldLevel) bool {
		return linkPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("tag", func(fl validator.FieldLevel) bool {
		return tagPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= bcryptMaxBytes
	})
	return &Validator{validate: v}
}

// Struct validates i and converts validator failures into a *ValidationError.
func (v *Validator) Struct(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldPath(fe.Namespace())] = message(fe)
	}
	return out
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("should be at least %s chars", fe.Param())
	case "max":
		return fmt.Sprintf("should be at most %s chars", fe.Param())
	case "oneof":
		return fmt.Sprintf("should be one of: %s", fe.Param())
	case "link", "url":
		return "please enter a valid URL"
	case "tag":
		return "invalid tag format"
	case "bcryptlen":
		return fmt.Sprintf("should be at most %d bytes", bcryptMaxBytes)
	default:
		return "is invalid"
	}
}
