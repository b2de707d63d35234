// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

import (
	"fmt"
	"strings"

	"github.com/platform-engineering-labs/skyfed"
)

func combineBanners(bannerBlue, bannerGold string) string {
	linesBlue := strings.Split(bannerBlue, "\n")
	linesGold := strings.Split(bannerGold, "\n")
	maxLines := max(len(linesGold), len(linesBlue))

	width := 0
	for _, l := range linesBlue {
		width = max(width, len(l))
	}

	var combinedLines []string
	for i := range maxLines {
		line1 := ""
		if i < len(linesBlue) {
			line1 = linesBlue[i]
		}
		line1 = LightBlue(fmt.Sprintf("%-*s", width, line1))

		line2 := ""
		if i < len(linesGold) {
			line2 = Gold(linesGold[i])
		}

		combinedLines = append(combinedLines, line1+line2)
	}

	return strings.Join(combinedLines, "\n")
}

func Banner() string {
	return strings.Replace(combineBanners(BannerBlue, BannerGold), "version", skyfed.Version, 1)
}

func PrintBanner() {
	fmt.Println(Banner())
}

func Success(msg string) {
	fmt.Print(Green(fmt.Sprintf("%s\n", msg)))
}

func Warning(msg string) {
	fmt.Print(Gold(fmt.Sprintf("Warning: %s\n", msg)))
}

func Error(msg string) {
	fmt.Print(Red(fmt.Sprintf("Error: %s\n", msg)))
}

// ConfigHint points at the configuration file a failed command read and at
// the built-in help.
func ConfigHint(path string) string {
	return "\n" + Gold("Configuration: ") + path +
		"\n" + Gold("Help: ") + Tool + " --help"
}
