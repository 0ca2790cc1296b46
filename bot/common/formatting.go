package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PointsEmoji follows every points amount shown to users
const PointsEmoji = "🔸"

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	sign := ""
	str := strconv.FormatInt(balance, 10)
	if balance < 0 {
		sign, str = "-", str[1:]
	}

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// FormatPoints renders an amount with the points emoji
func FormatPoints(points int64) string {
	return FormatBalance(points) + PointsEmoji
}

// FormatRemaining renders a wait as "H hours M minutes"
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%d hours %d minutes", total/60, total%60)
}

// FormatDuration renders match length as "Mm Ss"
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp shown in the reader's timezone.
// Styles: "d" short date, "f" short date/time, "R" relative
func FormatDiscordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
