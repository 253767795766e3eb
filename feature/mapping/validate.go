package mapping

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ddi-sync/core/ddi"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	urlPattern   = regexp.MustCompile(`^https?://[\w.-]+`)
)

// reservedNames cannot be used as extensible attribute names because the
// store uses them as record fields.
var reservedNames = map[string]struct{}{
	"network":      {},
	"network_view": {},
	"comment":      {},
	"_ref":         {},
}

// ValidateName rejects reserved or empty attribute names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("attribute name must not be empty")
	}
	if _, reserved := reservedNames[strings.ToLower(name)]; reserved {
		return fmt.Errorf("%s is a reserved attribute name", name)
	}
	return nil
}

// ValidateValue checks a value against the target store's attribute type.
// STRING and ENUM accept anything; ENUM membership is configured per
// attribute in the store and cannot be checked here.
func ValidateValue(value, attrType string) error {
	switch attrType {
	case ddi.AttrTypeInteger:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("value %q is not a valid integer", value)
		}
	case ddi.AttrTypeEmail:
		if !emailPattern.MatchString(value) {
			return fmt.Errorf("value %q is not a valid email address", value)
		}
	case ddi.AttrTypeURL:
		if !urlPattern.MatchString(value) {
			return fmt.Errorf("value %q is not a valid URL", value)
		}
	}
	return nil
}
