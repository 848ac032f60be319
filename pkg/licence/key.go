package licence

import (
	"strings"

	"github.com/licencecheck/licencecheck/pkg/util"
)

var keyReplacer = strings.NewReplacer("-", "", " ", "")

// NormalizeKey strips hyphens and spaces from a licence number so it can be
// used to join snapshots and the operator roster. It does not validate.
func NormalizeKey(raw string) string {
	return keyReplacer.Replace(raw)
}

// FormatLicenceNumber groups a raw licence number as 5-5-5 separated by
// hyphens. Short input gives short groups rather than an error.
func FormatLicenceNumber(raw string) string {
	return util.SliceString(raw, 0, 5) + "-" + util.SliceString(raw, 5, 10) + "-" + util.SliceString(raw, 10, len(raw))
}

// DisplayKey turns a normalized key back into its display form when it has
// the expected 15 characters, otherwise the fallback is returned.
func DisplayKey(key string, fallback string) string {
	if len(key) != 15 {
		return fallback
	}

	return FormatLicenceNumber(key)
}
