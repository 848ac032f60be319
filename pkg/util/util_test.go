package util_test

import (
	"testing"
	"time"

	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestSliceString(t *testing.T) {
	assert.Equal(t, "cde", util.SliceString("abcdefg", 2, 5))
	assert.Equal(t, "fg", util.SliceString("abcdefg", 5, 40))
	assert.Equal(t, "", util.SliceString("abc", 10, 20))
	assert.Equal(t, "", util.SliceString("", 0, 4))
	assert.Equal(t, "x", util.SliceTrimmed("  x  ", 0, 5))
}

func TestDuplicateStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, util.DuplicateStrings([]string{"a", "b", "b", "c", "a", "a"}))
	assert.Empty(t, util.DuplicateStrings([]string{"a", "b"}))
}

func TestIsDigits(t *testing.T) {
	assert.True(t, util.IsDigits("240131"))
	assert.False(t, util.IsDigits("24013A"))
	assert.False(t, util.IsDigits(""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a@x.ca", "b@x.ca", "c@x.ca"}, util.SplitList(" a@x.ca; b@x.ca ,c@x.ca;;"))
}

func TestDaysBetween(t *testing.T) {
	today := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, 7, util.DaysBetween(today, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -5, util.DaysBetween(today, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, util.DaysBetween(today, today))
}

func TestStorableText(t *testing.T) {
	assert.Equal(t, "LICENCED �CHU", util.StorableText("LICENCED \xc9CHU"))
	assert.Equal(t, "A�B\tC", util.StorableText("A\x01B\tC"))
	assert.Equal(t, "ÉCHU", util.StorableText("ÉCHU"))
}
