package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes  int64
		format string
		human  bool
		want   string
	}{
		{65536, "", false, "65536 B"},
		{0, "", false, "0 B"},
		{65536, "KB", false, "66 KB"},
		{65536, "kb", false, "64 KB"},
		{65536, "KiB", false, "64 KiB"},
		{1500000, "MB", false, "2 MB"},
		{1500000, "mb", false, "2 MB"},
		{1500000, "MiB", false, "2 MiB"},
		{3 * GB_IN_BYTES, "gb", false, "3 GB"},
		{3 * GB_IN_BYTES, "GiB", false, "3 GiB"},
		{2 * TB_IN_BYTES, "TiB", false, "2 TiB"},
		{2 * TB_IN_BYTES, "TB", false, "3 TB"},
		{512, "b", false, "512 B"},
		{65536, "", true, "66 KB"},
		{999, "", true, "999 B"},
		{1000, "", true, "1 KB"},
		{2500000, "", true, "3 MB"},
		{0, "", true, "0 B"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatSize(c.bytes, c.format, c.human), "%d %q %v", c.bytes, c.format, c.human)
	}
}

func TestDisplayUnit(t *testing.T) {
	assert.Equal(t, "MiB", DisplayUnit("MiB"))
	assert.Equal(t, "KiB", DisplayUnit("kib"))
	assert.Equal(t, "GB", DisplayUnit("gb"))
}

func TestSizeNumber(t *testing.T) {
	assert.Equal(t, "66", SizeNumber("66 KB"))
	assert.Equal(t, "12", SizeNumber("12"))
}
