// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

import (
	gkcolor "github.com/gookit/color"
)

var (
	gold = gkcolor.RGB(181, 181, 91)
	grey = gkcolor.RGB(138, 138, 138)
)

func Gold(s string) string { return gold.Sprint(s) }

func Goldf(format string, args ...any) string { return gold.Sprintf(format, args...) }

func Green(s string) string { return gkcolor.FgGreen.Sprint(s) }

func Greenf(format string, args ...any) string { return gkcolor.FgGreen.Sprintf(format, args...) }

func Grey(s string) string { return grey.Sprint(s) }

func Greyf(format string, args ...any) string { return grey.Sprintf(format, args...) }

func LightBlue(s string) string { return gkcolor.HiBlue.Sprint(s) }

func LightBluef(format string, args ...any) string { return gkcolor.HiBlue.Sprintf(format, args...) }

func Red(s string) string { return gkcolor.FgRed.Sprint(s) }

func Redf(format string, args ...any) string { return gkcolor.FgRed.Sprintf(format, args...) }

// Usage colors a used/total pair: red when nothing is left, gold when less
// than a fifth remains.
func Usage(available, total int) string {
	switch {
	case total > 0 && available <= 0:
		return Redf("%d", available)
	case total > 0 && available*5 < total:
		return Goldf("%d", available)
	default:
		return Greenf("%d", available)
	}
}

// DisableColors strips every color, for output to files and pipes.
func DisableColors() {
	gkcolor.Disable()
}
