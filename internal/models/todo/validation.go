package todo

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Violations []Violation

func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, violation := range v {
		fields = append(fields, violation.Field)
	}
	return fields
}

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		parts = append(parts, violation.Field+": "+violation.Reason)
	}
	return strings.Join(parts, "; ")
}

// ValidateCreate returns every violated field of a create payload, nil if it is acceptable.
func ValidateCreate(in CreateInput) Violations {
	var v Violations
	v = checkTitle(v, in.Title)
	v = checkDescription(v, in.Description)
	if in.Priority == "" {
		v = append(v, Violation{Field: "priority", Reason: "is required"})
	} else {
		v = checkPriority(v, in.Priority)
	}
	return v
}

// ValidateUpdate checks only the fields that are present.
func ValidateUpdate(in UpdateInput) Violations {
	var v Violations
	if in.Title != nil {
		v = checkTitle(v, *in.Title)
	}
	v = checkDescription(v, in.Description)
	if in.Priority != nil {
		v = checkPriority(v, *in.Priority)
	}
	return v
}

func checkTitle(v Violations, title string) Violations {
	if strings.TrimSpace(title) == "" {
		return append(v, Violation{Field: "title", Reason: "must not be empty"})
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return append(v, Violation{
			Field:  "title",
			Reason: fmt.Sprintf("must be at most %d characters", MaxTitleLength),
		})
	}
	return v
}

func checkDescription(v Violations, description *string) Violations {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return append(v, Violation{
			Field:  "description",
			Reason: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength),
		})
	}
	return v
}

func checkPriority(v Violations, p Priority) Violations {
	if !p.Valid() {
		return append(v, Violation{Field: "priority", Reason: "must be Low, Medium, or High"})
	}
	return v
}
