package health

import (
	"fmt"
	"strings"
)

// FormatStatus renders a status summary for the log channel.
func FormatStatus(st Status, cacheStatus string) string {
	fields := []string{
		"`dex-vmt-service` " + st.Version.Version + " is " + st.State,
		"",
		"**System Status**",
		fmt.Sprintf("💻 CPU: `%.2f%%`", st.System.CPUPercent),
		fmt.Sprintf("🧠 Memory: `%.2f%%`", st.System.MemoryPercent),
		"",
		"**Service Status**",
		fmt.Sprintf("🤖 Discord: %s", st.Discord),
		fmt.Sprintf("🏠 Cache: %s", cacheStatus),
	}
	return strings.Join(fields, "\n")
}
