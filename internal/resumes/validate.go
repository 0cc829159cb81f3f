package resumes

import (
	"strings"
	"unicode/utf8"
)

const (
	minResumeLen = 50
	maxResumeLen = 5000
)

// ValidateResumeText trims the submission and enforces the length bounds.
// Any UTF-8 text within bounds passes; there is no further normalization.
func ValidateResumeText(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Kind: ValidationMissing, Message: "자소서 텍스트를 입력해주세요"}
	}
	length := utf8.RuneCountInString(trimmed)
	if length < minResumeLen {
		return "", &ValidationError{Kind: ValidationTooShort, Message: "자소서는 최소 50자 이상 입력해주세요"}
	}
	if length > maxResumeLen {
		return "", &ValidationError{Kind: ValidationTooLong, Message: "자소서는 최대 5000자까지 입력 가능합니다"}
	}
	return trimmed, nil
}
