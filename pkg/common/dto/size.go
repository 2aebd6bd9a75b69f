package dto

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	KB_IN_BYTES int64 = 1024
	MB_IN_BYTES       = 1024 * KB_IN_BYTES
	GB_IN_BYTES       = 1024 * MB_IN_BYTES
	TB_IN_BYTES       = 1024 * GB_IN_BYTES
)

// SizeFormats lists the units accepted by --size_format. Upper case ones are
// powers of 1000, lower case and the *iB ones powers of 1024.
var SizeFormats = []string{"B", "KB", "MB", "GB", "TB", "b", "kb", "mb", "gb", "tb", "KiB", "MiB", "GiB", "TiB"}

var binarySuffix = regexp.MustCompile(`IB$`)

// Divisor returns the number of bytes of one unit of format; unknown formats
// count in bytes.
func Divisor(format string) int64 {
	switch format {
	case "TB":
		return 1000 * 1000 * 1000 * 1000
	case "GB":
		return 1000 * 1000 * 1000
	case "MB":
		return 1000 * 1000
	case "KB":
		return 1000
	case "tb", "TiB":
		return TB_IN_BYTES
	case "gb", "GiB":
		return GB_IN_BYTES
	case "mb", "MiB":
		return MB_IN_BYTES
	case "kb", "KiB":
		return KB_IN_BYTES
	default:
		return 1
	}
}

// DisplayUnit is the label shown after a size in format, like "MB" or "MiB".
func DisplayUnit(format string) string {
	return binarySuffix.ReplaceAllString(strings.ToUpper(format), "iB")
}

// HumanUnit picks the largest decimal unit up to TB below bytes.
func HumanUnit(bytes int64) string {
	_, prefix := humanize.ComputeSI(float64(bytes))
	switch prefix {
	case "k":
		return "KB"
	case "M", "G", "T":
		return prefix + "B"
	default:
		return "B"
	}
}

// FormatSize renders bytes the way the size command prints it. Without a
// format the plain byte count is followed by " B". Sizes are rounded up.
func FormatSize(bytes int64, sizeFormat string, humanReadable bool) string {
	if sizeFormat == "" && !humanReadable {
		return fmt.Sprintf("%d B", bytes)
	}
	if humanReadable {
		sizeFormat = HumanUnit(bytes)
	}
	value := int64(math.Ceil(float64(bytes) / float64(Divisor(sizeFormat))))
	return strconv.FormatInt(value, 10) + " " + DisplayUnit(sizeFormat)
}

// SizeNumber strips the unit from a size rendered by FormatSize.
func SizeNumber(size string) string {
	number, _, _ := strings.Cut(size, " ")
	return number
}
