package services

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed common_passwords.txt
var commonPasswordsList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordsList, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			set[strings.ToLower(p)] = struct{}{}
		}
	}
	return set
}()

const (
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordBytes = 72
	maxSimilarity    = 0.7
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// PasswordAttribute is a user attribute the password must not resemble.
type PasswordAttribute struct {
	Label string
	Value string
}

// UserPasswordAttributes lists the attributes checked for similarity.
func UserPasswordAttributes(email, firstName, lastName string) []PasswordAttribute {
	return []PasswordAttribute{
		{Label: "email", Value: email},
		{Label: "имя", Value: firstName},
		{Label: "фамилия", Value: lastName},
	}
}

// ValidatePassword applies every password rule and returns all the failed
// ones, or nil.
func ValidatePassword(password string, attrs []PasswordAttribute) []string {
	var problems []string

	if label, ok := similarTo(password, attrs); ok {
		problems = append(problems, fmt.Sprintf("Введённый пароль слишком похож на %s.", label))
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"Введённый пароль слишком короткий. Он должен содержать как минимум %d символов.", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf(
			"Введённый пароль слишком длинный. Он должен занимать не более %d байт.", maxPasswordBytes))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "Введённый пароль слишком широко распространён.")
	}
	if isNumeric(password) {
		problems = append(problems, "Введённый пароль состоит только из цифр.")
	}
	return problems
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func similarTo(password string, attrs []PasswordAttribute) (string, bool) {
	pwd := []rune(strings.ToLower(password))
	for _, attr := range attrs {
		value := strings.ToLower(attr.Value)
		if value == "" {
			continue
		}
		parts := append(nonWord.Split(value, -1), value)
		for _, part := range parts {
			p := []rune(part)
			if len(p) == 0 || tooShortToCompare(len(pwd), len(p)) {
				continue
			}
			if similarity(pwd, p) >= maxSimilarity {
				return attr.Label, true
			}
		}
	}
	return "", false
}

// tooShortToCompare skips attribute fragments that cannot reach the
// similarity bound against a much longer password.
func tooShortToCompare(pwdLen, valueLen int) bool {
	return pwdLen >= 10*valueLen && float64(valueLen) < maxSimilarity/2*float64(pwdLen)
}

// similarity is the Ratcliff/Obershelp ratio 2*M/T of two strings.
func similarity(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matching(a, b)) / float64(total)
}

// matching counts the characters in the longest common substring and,
// recursively, in the unmatched pieces on both sides of it.
func matching(a, b []rune) int {
	i, j, size := longestCommon(a, b)
	if size == 0 {
		return 0
	}
	return size + matching(a[:i], b[:j]) + matching(a[i+size:], b[j+size:])
}

func longestCommon(a, b []rune) (int, int, int) {
	bestI, bestJ, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
					bestI, bestJ = i-best, j-best
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, best
}
