package leadintake

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// GenerateEstimate produces a stable ballpark price range for a project. It
// is a marketing hint, not a quote: the same category, description and postal
// code always hash to the same "$X,XXX - $Y,YYY" range so redisplays never
// flicker.
func GenerateEstimate(category, description, postalCode string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(category))))
	h.Write([]byte("|"))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(description))))
	h.Write([]byte("|"))
	h.Write([]byte(strings.ToUpper(strings.TrimSpace(postalCode))))
	sum := h.Sum32()

	low := 1000 + int(sum%76)*100
	spread := 500 + int((sum>>8)%10)*100
	high := low + spread

	return fmt.Sprintf("$%s - $%s", formatThousands(low), formatThousands(high))
}

func formatThousands(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d,%03d", n/1000, n%1000)
}
