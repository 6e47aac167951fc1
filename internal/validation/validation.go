package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"becomebetter/internal/models"
	"becomebetter/internal/streak"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	reminderTimeRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Limits enforced on user input.
const (
	MinPasswordLength = 8
	MaxTitleLength    = 200
	MinAge            = 1
	MaxAge            = 150
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// ValidateName checks that a required name field is present
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateAge checks that an age is within a plausible range
func ValidateAge(age int) error {
	if age < MinAge || age > MaxAge {
		return ValidationError{Field: "age", Message: fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge)}
	}
	return nil
}

// ValidateGoalTitle checks that a goal title is present and not too long
func ValidateGoalTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

// ValidateCategory checks that a category is one of the known values
func ValidateCategory(category models.Category) error {
	if !category.Valid() {
		return ValidationError{Field: "category", Message: "invalid category"}
	}
	return nil
}

// ValidateDifficulty checks that a difficulty is easy, medium or hard
func ValidateDifficulty(difficulty models.Difficulty) error {
	if !difficulty.Valid() {
		return ValidationError{Field: "difficulty", Message: "difficulty must be easy, medium or hard"}
	}
	return nil
}

// ValidateReminderTime checks a 24-hour HH:MM time
func ValidateReminderTime(value string) error {
	if !reminderTimeRegex.MatchString(value) {
		return ValidationError{Field: "reminderTime", Message: "reminder time must be in HH:MM format"}
	}
	return nil
}

// ValidateTimezone checks that value names a loadable IANA timezone
func ValidateTimezone(value string) error {
	if value == "" {
		return ValidationError{Field: "timezone", Message: "timezone is required"}
	}
	if _, err := streak.LoadLocation(value); err != nil {
		return ValidationError{Field: "timezone", Message: "unknown timezone"}
	}
	return nil
}
