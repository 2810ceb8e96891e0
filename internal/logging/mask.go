package logging

import (
	"net/url"
	"strings"
)

const (
	// MaskChar is the character used for masking.
	MaskChar = "*"
	// URLMaskLength is how many characters of an unparseable URL are shown.
	URLMaskLength = 30
	// DefaultMaskLength is how many mask characters to show.
	DefaultMaskLength = 3
)

// SensitiveFields contains names that mark a value as secret.
var SensitiveFields = map[string]bool{
	"token":         true,
	"secret":        true,
	"password":      true,
	"key":           true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"auth":          true,
	"authorization": true,
	"signature":     true,
	"sig":           true,
	"credential":    true,
}

// IsSensitiveField checks if a field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	if SensitiveFields[lower] {
		return true
	}
	for keyword := range SensitiveFields {
		if len(keyword) > 3 && strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// MaskValue masks a sensitive value completely.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(MaskChar, min(len(value), 8))
}

// MaskURL hides credentials in a URL: the userinfo password and the values
// of sensitive query parameters. URLs that do not parse are cut after
// URLMaskLength characters.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if len(raw) <= URLMaskLength {
			return raw
		}
		return raw[:URLMaskLength] + strings.Repeat(MaskChar, DefaultMaskLength)
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), MaskValue("password"))
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		for name, values := range q {
			if !IsSensitiveField(name) {
				continue
			}
			for i := range values {
				values[i] = MaskValue(values[i])
			}
		}
		u.RawQuery = q.Encode()
	}

	// Encoding would escape the mask characters.
	return strings.ReplaceAll(u.String(), "%2A", MaskChar)
}
