package notify

import (
	"fmt"
	"strings"
	"time"
)

// noteLimit caps release notes in any message. One constant for all modes.
const noteLimit = 150

// displayZone is the fixed offset release timestamps are rendered in.
var displayZone = time.FixedZone("UTC+8", 8*60*60)

const blockSeparator = "━━━━━━━━━━━━━━━"

// FormatReleaseTime renders an ISO-8601 timestamp (trailing Z accepted) as
// "YYYY-MM-DD HH:MM" in the fixed display offset. On parse failure it falls
// back to the first 16 characters of the raw string; empty input renders as
// "unknown".
func FormatReleaseTime(iso string) string {
	if iso == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		if len(iso) > 16 {
			return iso[:16]
		}
		return iso
	}
	return t.In(displayZone).Format("2006-01-02 15:04")
}

// TruncateNotes caps s at noteLimit characters (runes, not bytes) with an
// ellipsis marker. Empty notes get a placeholder.
func TruncateNotes(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No release notes."
	}
	r := []rune(s)
	if len(r) <= noteLimit {
		return s
	}
	return string(r[:noteLimit-3]) + "..."
}

func detailBlock(d AppDetail, versionPart string) string {
	return fmt.Sprintf("📱 %s %s 📱\nRegion: %s | Released: %s\n%s\n%s",
		d.Name, versionPart, d.Region, d.Release, blockSeparator, TruncateNotes(d.Notes))
}

func newAppBlock(a NewApp) string {
	return detailBlock(a.AppDetail, a.Version)
}

func updatedAppBlock(a UpdatedApp) string {
	versionPart := a.Version
	if a.OldVersion != "" {
		versionPart = fmt.Sprintf("(%s→%s)", a.OldVersion, a.Version)
	}
	return detailBlock(a.AppDetail, versionPart)
}

// FormatNewApps renders the batch message announcing newly watched apps.
// Returns ok=false when there is nothing to announce.
func FormatNewApps(apps []NewApp) (Message, bool) {
	if len(apps) == 0 {
		return Message{}, false
	}

	blocks := make([]string, 0, len(apps))
	for _, a := range apps {
		blocks = append(blocks, newAppBlock(a))
	}

	first := apps[0]
	return Message{
		Title:   fmt.Sprintf("📱 Now watching (%d apps)", len(apps)),
		Body:    "✅ Added to the watch list:\n\n" + strings.Join(blocks, "\n\n"),
		URL:     first.StoreURL,
		IconURL: first.IconURL,
	}, true
}

// FormatUpdatedApps renders the update notification. A single update gets a
// focused message naming the app; multiple updates are batched one block per
// app. Returns ok=false when there is nothing to announce.
func FormatUpdatedApps(apps []UpdatedApp) (Message, bool) {
	switch len(apps) {
	case 0:
		return Message{}, false
	case 1:
		a := apps[0]
		return Message{
			Title:   fmt.Sprintf("🔥 %s has a new version!", a.Name),
			Body:    updatedAppBlock(a),
			URL:     a.StoreURL,
			IconURL: a.IconURL,
		}, true
	default:
		blocks := make([]string, 0, len(apps))
		for _, a := range apps {
			blocks = append(blocks, updatedAppBlock(a))
		}
		first := apps[0]
		return Message{
			Title:   fmt.Sprintf("📱 App Store updates (%d apps)", len(apps)),
			Body:    "The following apps have updates:\n\n" + strings.Join(blocks, "\n\n"),
			URL:     first.StoreURL,
			IconURL: first.IconURL,
		}, true
	}
}
