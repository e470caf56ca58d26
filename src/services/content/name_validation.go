package content

import (
	"strings"
	"unicode/utf8"

	"github.com/drive-clone/api/src/domain/files"
)

// MaxNameLength is the longest accepted entry name, in characters
const MaxNameLength = 255

const forbiddenNameChars = `<>:"/\|?*`

// ValidateName trims and checks an entry name. The trimmed name is returned.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", files.NewValidationError("Name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", files.NewValidationError("Name is too long (maximum %d characters)", MaxNameLength)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return "", files.NewValidationError(`Name contains invalid characters (< > : " / \ | ? *)`)
	}
	return name, nil
}
